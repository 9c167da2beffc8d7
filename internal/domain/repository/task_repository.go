package repository

import (
	"context"
	"errors"

	"tasktrack/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when no task matches both the ID and the owner.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository persists tasks. Every lookup and mutation is scoped by owner so
// that another user's task is indistinguishable from a missing one.
type TaskRepository interface {
	// Create persists a new task and fills in its generated fields.
	Create(ctx context.Context, task *entity.Task) error

	// FindByIDAndOwner returns the task only if it belongs to ownerID.
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*entity.Task, error)

	// ListByOwner returns the owner's tasks, newest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Task, error)

	// Update writes title, description and status of a task matched by ID and owner.
	Update(ctx context.Context, task *entity.Task) error

	// Delete removes exactly one task matched by ID and owner.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}
