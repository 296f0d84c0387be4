package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/admintable/internal/models"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
)

// writeServiceError maps domain errors to the JSON error envelope. Anything
// unrecognised is an upstream failure and is reported with upstreamMessage.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, upstreamMessage string) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		pkghttp.WriteNotFound(w, "Session not found")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrInvalidTitle),
		errors.Is(err, models.ErrInvalidTab),
		errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrConfirmationNotFound):
		pkghttp.WriteConflict(w, "No pending confirmation with that id")
	default:
		logger.Error("upstream request failed", slog.Any("error", err))
		pkghttp.WriteUpstreamError(w, upstreamMessage)
	}
}
