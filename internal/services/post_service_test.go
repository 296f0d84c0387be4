package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testActor = Actor{SessionID: "sess-1", IPAddress: "127.0.0.1"}

func newTestPostService(repo PostRepository) *PostService {
	log := slog.Default()
	return NewPostService(repo, log, logger.NewAuditLogger(log), 0)
}

func TestPostService_CreatePost_TrimsInput(t *testing.T) {
	var got models.CreatePostInput
	repo := &MockPostRepository{
		CreateFunc: func(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
			got = input
			return NewTestPost(40, input.Title, *input.Content), nil
		},
	}
	svc := newTestPostService(repo)

	post, err := svc.CreatePost(context.Background(), testActor, 3, "  Hello  ", " body ")

	require.NoError(t, err)
	assert.Equal(t, 40, post.ID)
	assert.Equal(t, 3, got.UserID)
	assert.Equal(t, "Hello", got.Title)
	require.NotNil(t, got.Content)
	assert.Equal(t, "body", *got.Content)
}

func TestPostService_CreatePost_InvalidTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"too long", strings.Repeat("x", DefaultMaxTitleLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockPostRepository{}
			svc := newTestPostService(repo)

			_, err := svc.CreatePost(context.Background(), testActor, 1, tt.title, "")

			assert.ErrorIs(t, err, models.ErrInvalidTitle)
			assert.Zero(t, repo.CallCount())
		})
	}
}

func TestPostService_CreatePost_TitleAtLimit(t *testing.T) {
	repo := &MockPostRepository{
		CreateFunc: func(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
			return NewTestPost(1, input.Title, ""), nil
		},
	}
	svc := newTestPostService(repo)

	_, err := svc.CreatePost(context.Background(), testActor, 1, strings.Repeat("é", DefaultMaxTitleLength), "")
	assert.NoError(t, err)
}

func TestPostService_CreatePost_InvalidUser(t *testing.T) {
	svc := newTestPostService(&MockPostRepository{})

	_, err := svc.CreatePost(context.Background(), testActor, 0, "title", "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestPostService_UpdatePost_UnchangedSkipsAPI(t *testing.T) {
	repo := &MockPostRepository{}
	svc := newTestPostService(repo)
	original := NewTestPost(5, "Title ", "Body")

	res, err := svc.UpdatePost(context.Background(), testActor, original, " Title", "Body  ")

	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Same(t, original, res.Post)
	assert.Zero(t, repo.CallCount())
}

func TestPostService_UpdatePost_SendsBothFields(t *testing.T) {
	var got models.UpdatePostInput
	repo := &MockPostRepository{
		UpdateFunc: func(ctx context.Context, input models.UpdatePostInput) (*models.Post, error) {
			got = input
			return NewTestPost(input.ID, *input.Title, *input.Content), nil
		},
	}
	svc := newTestPostService(repo)

	res, err := svc.UpdatePost(context.Background(), testActor, NewTestPost(5, "Old", "Body"), "New", "Body")

	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 5, got.ID)
	assert.Equal(t, "New", *got.Title)
	assert.Equal(t, "Body", *got.Content)
}

func TestPostService_UpdatePost_NilOriginal(t *testing.T) {
	svc := newTestPostService(&MockPostRepository{})

	_, err := svc.UpdatePost(context.Background(), testActor, nil, "x", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostService_UpdatePost_Failure(t *testing.T) {
	upstream := errors.New("boom")
	repo := &MockPostRepository{
		UpdateFunc: func(ctx context.Context, input models.UpdatePostInput) (*models.Post, error) {
			return nil, upstream
		},
	}
	svc := newTestPostService(repo)

	_, err := svc.UpdatePost(context.Background(), testActor, NewTestPost(5, "Old", ""), "New", "")
	assert.ErrorIs(t, err, upstream)
}

func TestPostService_DeletePost(t *testing.T) {
	var deleted int
	repo := &MockPostRepository{
		DeleteFunc: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	svc := newTestPostService(repo)

	require.NoError(t, svc.DeletePost(context.Background(), testActor, 9))
	assert.Equal(t, 9, deleted)
}

func TestPostService_DeletePost_NotFound(t *testing.T) {
	repo := &MockPostRepository{
		DeleteFunc: func(ctx context.Context, id int) error { return models.ErrNotFound },
	}
	svc := newTestPostService(repo)

	assert.ErrorIs(t, svc.DeletePost(context.Background(), testActor, 9), models.ErrNotFound)
}
