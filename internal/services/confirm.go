package services

import (
	"context"
	"sync"

	"github.com/BradenHooton/admintable/internal/models"
	"github.com/google/uuid"
)

// ConfirmAction is the deferred work behind a confirmation prompt.
type ConfirmAction func(ctx context.Context) error

// ConfirmCoordinator holds at most one pending confirmation for a session.
// A new request replaces (dismisses) the previous one.
type ConfirmCoordinator struct {
	mu      sync.Mutex
	id      string
	action  ConfirmAction
	newUUID func() string
}

// NewConfirmCoordinator creates an empty coordinator.
func NewConfirmCoordinator() *ConfirmCoordinator {
	return &ConfirmCoordinator{newUUID: uuid.NewString}
}

// Request registers action as the pending confirmation and returns its id.
func (c *ConfirmCoordinator) Request(action ConfirmAction) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = c.newUUID()
	c.action = action
	return c.id
}

// Pending returns the id of the pending confirmation, or "".
func (c *ConfirmCoordinator) Pending() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Confirm runs the pending action if id is still current. The prompt is
// cleared before the action runs. When the action fails, the prompt is
// restored so it can be retried, unless a newer request replaced it.
func (c *ConfirmCoordinator) Confirm(ctx context.Context, id string) error {
	c.mu.Lock()
	if id == "" || id != c.id {
		c.mu.Unlock()
		return models.ErrConfirmationNotFound
	}
	action := c.action
	c.id, c.action = "", nil
	c.mu.Unlock()

	err := action(ctx)
	if err != nil {
		c.mu.Lock()
		if c.id == "" {
			c.id, c.action = id, action
		}
		c.mu.Unlock()
	}
	return err
}

// Dismiss drops the pending confirmation without running it.
func (c *ConfirmCoordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id, c.action = "", nil
}
