package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/internal/services"
	"github.com/BradenHooton/admintable/internal/table"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
	"github.com/go-chi/chi/v5"
)

// SessionStore defines the interface for table session lifecycle
type SessionStore interface {
	Create(ctx context.Context) (*services.Session, error)
	Get(id string) (*services.Session, error)
	Delete(id string) error
}

// SessionHandler handles table session HTTP requests
type SessionHandler struct {
	store  SessionStore
	logger *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(store SessionStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

// Request DTOs

// TabRequest selects the active tab
type TabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=Users Posts users posts"`
}

// SearchRequest carries the raw search box value
type SearchRequest struct {
	Value string `json:"value" validate:"max=200"`
}

// AgeRequest changes the age operator, the age value, or both
type AgeRequest struct {
	Operator *string          `json:"operator" validate:"omitempty,max=2"`
	Value    *models.AgeInput `json:"value"`
}

// SortingRequest replaces a tab's sort state
type SortingRequest struct {
	Tab     string              `json:"tab" validate:"required,oneof=Users Posts users posts"`
	Sorting models.SortingState `json:"sorting"`
}

// session resolves the {id} URL parameter. It writes the error response and
// returns nil when the session does not exist.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *services.Session {
	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load table")
		return nil
	}
	return sess
}

// respond writes the session view, or maps err when it is not a superseded
// load.
func (h *SessionHandler) respond(w http.ResponseWriter, sess *services.Session, err error) {
	if err != nil && !isSuperseded(err) {
		writeServiceError(w, h.logger, err, "Failed to load table")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, sess.View())
}

// CreateSession opens a new table session
//
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load table")
		return
	}
	pkghttp.WriteJSON(w, http.StatusCreated, sess.View())
}

// GetSession returns the current view of a session
//
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, sess.View())
}

// DeleteSession closes a session
//
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err, "Failed to close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchTab selects the Users or Posts tab and clears the filters
//
// @Router /sessions/{id}/tab [put]
func (h *SessionHandler) SwitchTab(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req TabRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tab, err := models.ParseTab(req.Tab)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	h.respond(w, sess, sess.SwitchTab(r.Context(), tab))
}

// SetSearch records search input. The table reloads after the debounce
// delay, so the response reflects the pending input only.
//
// @Router /sessions/{id}/search [put]
func (h *SessionHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sess.SetSearch(req.Value)
	pkghttp.WriteJSON(w, http.StatusAccepted, sess.View())
}

// SetAge changes the users age filter
//
// @Router /sessions/{id}/age [put]
func (h *SessionHandler) SetAge(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req AgeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Operator == nil && req.Value == nil {
		pkghttp.WriteBadRequest(w, "operator or value is required")
		return
	}

	if req.Operator != nil {
		if err := sess.SetAgeOperator(r.Context(), models.AgeOperator(*req.Operator)); err != nil && !isSuperseded(err) {
			writeServiceError(w, h.logger, err, "Failed to load table")
			return
		}
	}
	var err error
	if req.Value != nil {
		err = sess.SetAgeValue(r.Context(), string(*req.Value))
	}
	h.respond(w, sess, err)
}

// ResetFilters clears search and age inputs
//
// @Router /sessions/{id}/reset [post]
func (h *SessionHandler) ResetFilters(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	h.respond(w, sess, sess.ResetFilters(r.Context()))
}

// Navigate moves the active table to the first, previous, next or last page
//
// @Router /sessions/{id}/page/{action} [post]
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	action, err := table.ParsePageAction(chi.URLParam(r, "action"))
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	h.respond(w, sess, sess.Navigate(r.Context(), action))
}

// SetSorting replaces a tab's sort state
//
// @Router /sessions/{id}/sorting [put]
func (h *SessionHandler) SetSorting(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req SortingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	tab, err := models.ParseTab(req.Tab)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	h.respond(w, sess, sess.SetSorting(tab, req.Sorting))
}

// Refresh refetches the active table's current page
//
// @Router /sessions/{id}/refresh [post]
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	h.respond(w, sess, sess.Refresh(r.Context()))
}
