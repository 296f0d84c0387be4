package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/BradenHooton/admintable/pkg/logger"
)

// DefaultMaxTitleLength is the longest post title accepted.
const DefaultMaxTitleLength = 50

// PostRepository defines the interface for post mutations
type PostRepository interface {
	Create(ctx context.Context, input models.CreatePostInput) (*models.Post, error)
	Update(ctx context.Context, input models.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, id int) error
}

// Actor identifies who triggered a mutation, for the audit trail.
type Actor struct {
	SessionID string
	IPAddress string
}

// UpdateResult reports the outcome of UpdatePost. Changed is false when the
// draft matched the original and nothing was sent.
type UpdateResult struct {
	Post    *models.Post
	Changed bool
}

// PostService validates and executes post mutations
type PostService struct {
	repo        PostRepository
	logger      *slog.Logger
	auditLogger *logger.AuditLogger
	maxTitle    int
}

// NewPostService creates a new PostService
func NewPostService(repo PostRepository, log *slog.Logger, auditLogger *logger.AuditLogger, maxTitle int) *PostService {
	if maxTitle <= 0 {
		maxTitle = DefaultMaxTitleLength
	}
	return &PostService{
		repo:        repo,
		logger:      log,
		auditLogger: auditLogger,
		maxTitle:    maxTitle,
	}
}

func (s *PostService) validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidTitle)
	}
	if utf8.RuneCountInString(title) > s.maxTitle {
		return fmt.Errorf("%w: title must be at most %d characters", models.ErrInvalidTitle, s.maxTitle)
	}
	return nil
}

// CreatePost adds a post to a user's list.
func (s *PostService) CreatePost(ctx context.Context, actor Actor, userID int, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if userID <= 0 {
		return nil, fmt.Errorf("%w: invalid user id", models.ErrBadRequest)
	}
	if err := s.validateTitle(title); err != nil {
		return nil, err
	}

	post, err := s.repo.Create(ctx, models.CreatePostInput{
		UserID:  userID,
		Title:   title,
		Content: &content,
	})
	s.record(logger.EventPostCreate, actor, postID(post), userID, err)
	if err != nil {
		s.logger.Error("failed to create post", slog.Int("user_id", userID), slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("post created", slog.Int("post_id", post.ID), slog.Int("user_id", userID))
	return post, nil
}

// UpdatePost saves an edited draft of original. A draft identical to the
// original after trimming is not sent.
func (s *PostService) UpdatePost(ctx context.Context, actor Actor, original *models.Post, title, content string) (UpdateResult, error) {
	if original == nil {
		return UpdateResult{}, models.ErrNotFound
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if err := s.validateTitle(title); err != nil {
		return UpdateResult{}, err
	}

	if title == strings.TrimSpace(original.TitleOrEmpty()) &&
		content == strings.TrimSpace(original.ContentOrEmpty()) {
		return UpdateResult{Post: original, Changed: false}, nil
	}

	post, err := s.repo.Update(ctx, models.UpdatePostInput{
		ID:      original.ID,
		Title:   &title,
		Content: &content,
	})
	s.record(logger.EventPostUpdate, actor, original.ID, 0, err)
	if err != nil {
		s.logger.Error("failed to update post", slog.Int("post_id", original.ID), slog.Any("error", err))
		return UpdateResult{}, err
	}

	s.logger.Info("post updated", slog.Int("post_id", original.ID))
	return UpdateResult{Post: post, Changed: true}, nil
}

// DeletePost removes a post.
func (s *PostService) DeletePost(ctx context.Context, actor Actor, id int) error {
	err := s.repo.Delete(ctx, id)
	s.record(logger.EventPostDelete, actor, id, 0, err)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("post not found for delete", slog.Int("post_id", id))
			return err
		}
		s.logger.Error("failed to delete post", slog.Int("post_id", id), slog.Any("error", err))
		return err
	}

	s.logger.Info("post deleted", slog.Int("post_id", id))
	return nil
}

func (s *PostService) record(eventType string, actor Actor, postID, userID int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(eventType, outcome).Inc()

	if s.auditLogger == nil {
		return
	}
	event := logger.AuditEvent{
		EventType: eventType,
		SessionID: actor.SessionID,
		IPAddress: actor.IPAddress,
		PostID:    postID,
		UserID:    userID,
		Success:   err == nil,
	}
	if err != nil {
		event.FailureReason = err.Error()
	}
	s.auditLogger.LogMutation(event)
}

func postID(p *models.Post) int {
	if p == nil {
		return 0
	}
	return p.ID
}
