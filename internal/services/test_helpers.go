package services

import (
	"context"
	"strings"
	"sync"

	"github.com/BradenHooton/admintable/internal/graphql"
	"github.com/BradenHooton/admintable/internal/models"
)

// MockPostRepository implements PostRepository for testing
type MockPostRepository struct {
	CreateFunc func(ctx context.Context, input models.CreatePostInput) (*models.Post, error)
	UpdateFunc func(ctx context.Context, input models.UpdatePostInput) (*models.Post, error)
	DeleteFunc func(ctx context.Context, id int) error

	mu    sync.Mutex
	calls int
}

func (m *MockPostRepository) count() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

// CallCount returns how many mutations reached the repository.
func (m *MockPostRepository) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockPostRepository) Create(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
	m.count()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockPostRepository) Update(ctx context.Context, input models.UpdatePostInput) (*models.Post, error) {
	m.count()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *MockPostRepository) Delete(ctx context.Context, id int) error {
	m.count()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// NewTestPost creates a post with the given id, title and content
func NewTestPost(id int, title, content string) *models.Post {
	return &models.Post{ID: id, Title: &title, Content: &content}
}

// FixtureExecutor answers GetUsers and GetPosts with fixed JSON data and
// records every call.
func FixtureExecutor(usersData, postsData string) *graphql.MockExecutor {
	return &graphql.MockExecutor{
		ExecuteFunc: func(ctx context.Context, doc graphql.Document, vars graphql.Variables, out any) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch doc.Name {
			case "GetUsers":
				return graphql.DecodeInto(out, usersData)
			case "GetPosts":
				return graphql.DecodeInto(out, postsData)
			}
			return nil
		},
	}
}

// CallsTo counts recorded calls to the named document.
func CallsTo(exec *graphql.MockExecutor, name string) int {
	n := 0
	for _, c := range exec.Calls() {
		if strings.EqualFold(c.Document.Name, name) {
			n++
		}
	}
	return n
}
