package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "tasktrack/internal/delivery/context"
	"tasktrack/internal/domain/entity"
	domainerrors "tasktrack/internal/domain/errors"
	"tasktrack/internal/domain/repository"
	"tasktrack/internal/errors"
	"tasktrack/internal/usecase"
	"tasktrack/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type taskService struct {
	txManager repository.TransactionManager
	taskRepo  repository.TaskRepository
	validator *validation.Validator
	logger    *slog.Logger
}

// TaskServiceParams holds dependencies for TaskService, injected by Fx.
type TaskServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	TaskRepo  repository.TaskRepository
	Logger    *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(params TaskServiceParams) usecase.TaskUsecase {
	return &taskService{
		txManager: params.TxManager,
		taskRepo:  params.TaskRepo,
		validator: validation.New(),
		logger:    params.Logger,
	}
}

func (srv *taskService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *taskService) CreateTask(ctx context.Context, ownerID uuid.UUID, input *usecase.CreateTaskInput) (*entity.Task, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	normalized := &usecase.CreateTaskInput{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
	}
	if err := srv.validator.Struct(normalized); err != nil {
		return nil, err
	}

	taskID, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate task id")
	}

	task := &entity.Task{
		ID:          taskID,
		OwnerID:     ownerID,
		Title:       normalized.Title,
		Description: normalized.Description,
		Status:      entity.TaskStatusTodo,
	}

	if err := srv.taskRepo.Create(ctx, task); err != nil {
		srv.log(ctx).Error("Failed to create task", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create task")
	}

	srv.log(ctx).Debug("Task created", slog.Any("taskID", task.ID))

	return task, nil
}

func (srv *taskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]*entity.Task, error) {
	tasks, err := srv.taskRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	return tasks, nil
}

func (srv *taskService) GetTask(ctx context.Context, ownerID, taskID uuid.UUID) (*entity.Task, error) {
	task, err := srv.taskRepo.FindByIDAndOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, mapTaskError(err, "failed to get task")
	}

	return task, nil
}

// UpdateTask applies the present fields of input. Looking up the task and
// writing it back happen in one transaction.
func (srv *taskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, input *usecase.UpdateTaskInput) (*entity.Task, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("request body is required")
	}

	patch, err := srv.buildPatch(input)
	if err != nil {
		return nil, err
	}

	var updated *entity.Task
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		taskRepo := repoFactory.TaskRepo()

		task, findErr := taskRepo.FindByIDAndOwner(ctx, taskID, ownerID)
		if findErr != nil {
			return findErr
		}

		if patch.IsEmpty() {
			updated = task

			return nil
		}

		task.Apply(patch)
		if updateErr := taskRepo.Update(ctx, task); updateErr != nil {
			return updateErr
		}
		updated = task

		return nil
	})
	if err != nil {
		return nil, mapTaskError(err, "failed to update task")
	}

	srv.log(ctx).Debug("Task updated", slog.Any("taskID", updated.ID), slog.String("status", string(updated.Status)))

	return updated, nil
}

func (srv *taskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	if err := srv.taskRepo.Delete(ctx, taskID, ownerID); err != nil {
		return mapTaskError(err, "failed to delete task")
	}

	srv.log(ctx).Debug("Task deleted", slog.Any("taskID", taskID))

	return nil
}

func (srv *taskService) buildPatch(input *usecase.UpdateTaskInput) (entity.TaskPatch, error) {
	normalized := &usecase.UpdateTaskInput{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
	}
	if normalized.Title != nil {
		title := strings.TrimSpace(*normalized.Title)
		if title == "" {
			return entity.TaskPatch{}, domainerrors.ErrValidationFailed.WithDetails("title must not be blank")
		}
		normalized.Title = &title
	}
	if normalized.Status != nil && !normalized.Status.IsValid() {
		return entity.TaskPatch{}, domainerrors.ErrValidationFailed.WithDetails("status must be one of [TODO DONE]")
	}
	if err := srv.validator.Struct(normalized); err != nil {
		return entity.TaskPatch{}, err
	}

	return entity.TaskPatch{
		Title:       normalized.Title,
		Description: normalized.Description,
		Status:      normalized.Status,
	}, nil
}

func mapTaskError(err error, message string) error {
	if errors.IsAny(err, repository.ErrTaskNotFound, domainerrors.ErrTaskNotFound) {
		return domainerrors.ErrTaskNotFound
	}

	return errors.Wrap(err, message)
}
