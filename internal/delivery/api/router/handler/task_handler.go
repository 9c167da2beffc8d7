package handler

import (
	"log/slog"
	"net/http"

	"tasktrack/internal/delivery/api/middleware"
	"tasktrack/internal/delivery/api/response"
	"tasktrack/internal/domain/entity"
	domainerrors "tasktrack/internal/domain/errors"
	"tasktrack/internal/errors"
	"tasktrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

var errInvalidTaskID = domainerrors.NewBaseError(http.StatusBadRequest, "INVALID_ID", "Invalid task id", "")

// TaskHandlerParams holds dependencies for TaskHandler, injected by Fx.
type TaskHandlerParams struct {
	fx.In

	TaskUC usecase.TaskUsecase
	Logger *slog.Logger
}

// TaskHandler holds dependencies for task handlers. Every route it serves sits
// behind AuthMiddleware.Authenticate.
type TaskHandler struct {
	taskUC usecase.TaskUsecase
	logger *slog.Logger
}

// NewTaskHandler is the constructor for TaskHandler
func NewTaskHandler(params TaskHandlerParams) *TaskHandler {
	return &TaskHandler{
		taskUC: params.TaskUC,
		logger: params.Logger,
	}
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
}

// UpdateTaskRequest represents the request body for updating a task.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=TODO DONE"`
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	var req CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskUC.CreateTask(c.Request().Context(), ownerID, &usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newTaskResponse(task))
}

// ListTasks returns the caller's tasks, newest first
func (h *TaskHandler) ListTasks(c echo.Context) error {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrUnauthenticated
	}

	tasks, err := h.taskUC.ListTasks(c.Request().Context(), ownerID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTaskResponses(tasks))
}

// GetTask returns one of the caller's tasks
func (h *TaskHandler) GetTask(c echo.Context) error {
	ownerID, taskID, err := h.ownerAndTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskUC.GetTask(c.Request().Context(), ownerID, taskID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTaskResponse(task))
}

// UpdateTask applies a partial update, typically a status toggle
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	ownerID, taskID, err := h.ownerAndTaskID(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := &usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := entity.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.taskUC.UpdateTask(c.Request().Context(), ownerID, taskID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newTaskResponse(task))
}

// DeleteTask removes one of the caller's tasks
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	ownerID, taskID, err := h.ownerAndTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskUC.DeleteTask(c.Request().Context(), ownerID, taskID); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusOK, "Task deleted")
}

func (h *TaskHandler) ownerAndTaskID(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, domainerrors.ErrUnauthenticated
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errInvalidTaskID
	}

	return ownerID, taskID, nil
}
