package usecase

import (
	"context"

	"tasktrack/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateTaskInput represents the input for creating a task
type CreateTaskInput struct {
	Title       string  `validate:"required,max=255"`
	Description *string `validate:"omitempty,max=5000"`
}

// UpdateTaskInput represents a partial update. Nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string            `validate:"omitempty,max=255"`
	Description *string            `validate:"omitempty,max=5000"`
	Status      *entity.TaskStatus `validate:"omitempty,oneof=TODO DONE"`
}

// TaskUsecase defines the owner-scoped task operations. The owner ID always
// comes from the authenticated identity.
type TaskUsecase interface {
	CreateTask(ctx context.Context, ownerID uuid.UUID, input *CreateTaskInput) (*entity.Task, error)
	ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*entity.Task, error)
	GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*entity.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input *UpdateTaskInput) (*entity.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error
}
