package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/services"
	pkghttp "github.com/BradenHooton/admintable/pkg/http"
	"github.com/BradenHooton/admintable/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// WithChiRouteContext adds chi URL parameters to request context for testing
//
// Example usage:
//
//	req := httptest.NewRequest("POST", "/sessions/abc/page/next", nil)
//	req = WithChiRouteContext(req, map[string]string{
//	    "id":     "abc",
//	    "action": "next",
//	})
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestStack is a session service over fixture data and a mock post
// repository, for handler tests.
type TestStack struct {
	Exec     *graphql.MockExecutor
	Repo     *services.MockPostRepository
	Sessions *services.SessionService
}

// NewTestStack builds a TestStack. The search debounce is long enough that
// no background load starts during a test.
func NewTestStack(t *testing.T, usersData, postsData string) *TestStack {
	log := slog.Default()
	st := &TestStack{
		Exec: services.FixtureExecutor(usersData, postsData),
		Repo: &services.MockPostRepository{},
	}
	posts := services.NewPostService(st.Repo, log, logger.NewAuditLogger(log), services.DefaultMaxTitleLength)
	st.Sessions = services.NewSessionService(st.Exec, posts, services.SessionConfig{
		SearchDebounce: time.Hour,
		UsersPageSize:  2,
		PostsPageSize:  2,
		LoadTimeout:    time.Second,
	}, time.Hour, log)
	t.Cleanup(st.Sessions.CloseAll)
	return st
}
