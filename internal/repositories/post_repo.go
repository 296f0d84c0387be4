package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
)

// PostRepository runs post mutations against the remote API.
type PostRepository struct {
	exec graphql.Executor
}

func NewPostRepository(exec graphql.Executor) *PostRepository {
	return &PostRepository{exec: exec}
}

// Create inserts a post for a user and returns the stored row.
func (r *PostRepository) Create(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
	var out struct {
		CreatePost *models.Post `json:"createPost"`
	}
	if err := r.exec.Execute(ctx, createPostMutation, graphql.Variables{"input": input}, &out); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	if out.CreatePost == nil {
		return nil, fmt.Errorf("create post: %w", models.ErrInternalServer)
	}
	return out.CreatePost, nil
}

// Update changes the title and/or content of a post.
func (r *PostRepository) Update(ctx context.Context, input models.UpdatePostInput) (*models.Post, error) {
	var out struct {
		UpdatePost *models.Post `json:"updatePost"`
	}
	if err := r.exec.Execute(ctx, updatePostMutation, graphql.Variables{"input": input}, &out); err != nil {
		return nil, fmt.Errorf("update post %d: %w", input.ID, err)
	}
	if out.UpdatePost == nil {
		return nil, models.ErrNotFound
	}
	return out.UpdatePost, nil
}

// Delete removes a post. A false result from the API means no row matched.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	var out struct {
		DeletePost bool `json:"deletePost"`
	}
	if err := r.exec.Execute(ctx, deletePostMutation, graphql.Variables{"id": id}, &out); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if !out.DeletePost {
		return models.ErrNotFound
	}
	return nil
}
