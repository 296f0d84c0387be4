package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/admintable/internal/export"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ExportHandler serves spreadsheet downloads of the visible table page
type ExportHandler struct {
	store  SessionStore
	logger *slog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(store SessionStore, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{store: store, logger: logger}
}

// ExportXLSX writes the active table's current rows, in their current sort
// order, as an xlsx workbook.
//
// @Router /sessions/{id}/export.xlsx [get]
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to export table")
		return
	}

	name, data, err := sess.Export()
	if err != nil {
		h.logger.Error("failed to build workbook", slog.String("session_id", sess.ID()), slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Failed to export table")
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", name, time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
