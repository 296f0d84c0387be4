package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/internal/services"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
	"github.com/go-chi/chi/v5"
)

// PostHandler handles post mutations issued from a table session
type PostHandler struct {
	store      SessionStore
	ipResolver *pkghttp.IPResolver
	logger     *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(store SessionStore, ipResolver *pkghttp.IPResolver, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		store:      store,
		ipResolver: ipResolver,
		logger:     logger,
	}
}

// PostRequest is the body of create and update requests
type PostRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"max=10000"`
}

// PostResponse wraps a mutated post with the session view after refetch
type PostResponse struct {
	Post    *models.Post         `json:"post"`
	Changed bool                 `json:"changed"`
	Session services.SessionView `json:"session"`
}

// ConfirmationResponse carries the id of a pending confirmation
type ConfirmationResponse struct {
	ConfirmationID string `json:"confirmation_id"`
	Message        string `json:"message"`
}

func (h *PostHandler) session(w http.ResponseWriter, r *http.Request) *services.Session {
	sess, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, services.NoticeFailedToSavePost)
		return nil
	}
	return sess
}

// writeMutationError reports validation problems as 400 and every other
// failure as a failed mutation. The session state is left as it was.
func (h *PostHandler) writeMutationError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrInvalidTitle), errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Post not found")
	case errors.Is(err, models.ErrConfirmationNotFound):
		pkghttp.WriteConflict(w, "No pending confirmation with that id")
	default:
		h.logger.Error("post mutation failed", slog.Any("error", err))
		pkghttp.WriteMutationFailed(w, message)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return v, nil
}

// CreatePost adds a post to a user
//
// @Router /sessions/{id}/users/{userID}/posts [post]
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	userID, err := intParam(r, "userID")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	var req PostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	post, err := sess.CreatePost(r.Context(), h.ipResolver.ClientIP(r), userID, req.Title, req.Content)
	if err != nil {
		h.writeMutationError(w, err, services.NoticeFailedToSavePost)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, PostResponse{
		Post:    post,
		Changed: true,
		Session: sess.View(),
	})
}

// UpdatePost saves an edited post. An unchanged draft is not sent upstream.
//
// @Router /sessions/{id}/posts/{postID} [put]
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	postID, err := intParam(r, "postID")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	var req PostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := sess.UpdatePost(r.Context(), h.ipResolver.ClientIP(r), postID, req.Title, req.Content)
	if err != nil {
		h.writeMutationError(w, err, services.NoticeFailedToSavePost)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, PostResponse{
		Post:    res.Post,
		Changed: res.Changed,
		Session: sess.View(),
	})
}

// RequestDelete asks for confirmation before deleting a post
//
// @Router /sessions/{id}/posts/{postID}/delete [post]
func (h *PostHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	postID, err := intParam(r, "postID")
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	id, err := sess.RequestDeletePost(h.ipResolver.ClientIP(r), postID)
	if err != nil {
		h.writeMutationError(w, err, services.NoticeFailedToDeletePost)
		return
	}

	pkghttp.WriteJSON(w, http.StatusAccepted, ConfirmationResponse{
		ConfirmationID: id,
		Message:        "Are you sure you want to delete this post?",
	})
}

// Confirm runs the pending confirmation. A failed delete keeps the
// confirmation so it can be retried.
//
// @Router /sessions/{id}/confirmation/{confirmationID} [post]
func (h *PostHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	if err := sess.ConfirmPending(r.Context(), chi.URLParam(r, "confirmationID")); err != nil {
		h.writeMutationError(w, err, services.NoticeFailedToDeletePost)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, sess.View())
}

// Dismiss drops the pending confirmation
//
// @Router /sessions/{id}/confirmation [delete]
func (h *PostHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sess.DismissConfirmation()
	w.WriteHeader(http.StatusNoContent)
}
