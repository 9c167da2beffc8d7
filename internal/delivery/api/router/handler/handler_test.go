package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apimiddleware "tasktrack/internal/delivery/api/middleware"
	"tasktrack/internal/delivery/api/response"
	"tasktrack/internal/delivery/api/validator"
	deliverycontext "tasktrack/internal/delivery/context"
	"tasktrack/internal/domain/entity"
	domainerrors "tasktrack/internal/domain/errors"
	mockUC "tasktrack/internal/mocks/usecase"
	"tasktrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type handlerFixtures struct {
	echo    *echo.Echo
	authUC  *mockUC.MockAuthUsecase
	taskUC  *mockUC.MockTaskUsecase
	ownerID uuid.UUID
}

// createTestHandlers wires both handlers on an echo instance whose protected
// routes see a fixed identity.
func createTestHandlers(t *testing.T) handlerFixtures {
	authUC := mockUC.NewMockAuthUsecase(t)
	taskUC := mockUC.NewMockTaskUsecase(t)
	ownerID := uuid.New()

	authHandler := NewAuthHandler(AuthHandlerParams{AuthUC: authUC, Logger: newDiscardLogger()})
	taskHandler := NewTaskHandler(TaskHandlerParams{TaskUC: taskUC, Logger: newDiscardLogger()})

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(newDiscardLogger()).HandleHTTPError

	withIdentity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deliverycontext.SetIdentity(c, deliverycontext.Identity{UserID: ownerID})

			return next(c)
		}
	}

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, withIdentity)
	e.GET("/anonymous/me", authHandler.Me)
	e.POST("/tasks", taskHandler.CreateTask, withIdentity)
	e.GET("/tasks", taskHandler.ListTasks, withIdentity)
	e.GET("/tasks/:id", taskHandler.GetTask, withIdentity)
	e.PUT("/tasks/:id", taskHandler.UpdateTask, withIdentity)
	e.DELETE("/tasks/:id", taskHandler.DeleteTask, withIdentity)

	return handlerFixtures{echo: e, authUC: authUC, taskUC: taskUC, ownerID: ownerID}
}

func (tc handlerFixtures) serve(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	tc.echo.ServeHTTP(rec, req)

	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *response.ErrorInfo {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.NotNil(t, body.Error)

	return body.Error
}

func sampleUser() *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$should-never-leak",
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func sampleTask(ownerID uuid.UUID) *entity.Task {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	return &entity.Task{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "Buy milk",
		Status:    entity.TaskStatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tc := createTestHandlers(t)
	user := sampleUser()

	tc.authUC.EXPECT().
		Register(mock.Anything, &usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret1"}).
		Return(&usecase.AuthOutput{User: user, Token: "signed"}, nil)

	rec := tc.serve(http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData[AuthResponse](t, rec)
	assert.Equal(t, "signed", data.Token)
	assert.Equal(t, user.ID, data.User.ID)
	assert.NotContains(t, rec.Body.String(), "should-never-leak")
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	tc := createTestHandlers(t)

	rec := tc.serve(http.MethodPost, "/auth/register", `{"email":"alice@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errInfo := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", errInfo.Code)
	assert.Contains(t, errInfo.Details, "name is required")
}

func TestAuthHandler_Register_MalformedJSON(t *testing.T) {
	tc := createTestHandlers(t)

	rec := tc.serve(http.MethodPost, "/auth/register", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	tc := createTestHandlers(t)

	tc.authUC.EXPECT().
		Login(mock.Anything, &usecase.LoginInput{Email: "alice@example.com", Password: "nope"}).
		Return(nil, domainerrors.ErrInvalidCredentials)

	rec := tc.serve(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	errInfo := decodeError(t, rec)
	assert.Equal(t, "INVALID_CREDENTIALS", errInfo.Code)
	assert.Equal(t, "Invalid credentials", errInfo.Message)
}

func TestAuthHandler_Me(t *testing.T) {
	tc := createTestHandlers(t)
	user := sampleUser()
	user.ID = tc.ownerID

	tc.authUC.EXPECT().GetProfile(mock.Anything, tc.ownerID).Return(user, nil)

	rec := tc.serve(http.MethodGet, "/auth/me", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tc.ownerID, decodeData[UserResponse](t, rec).ID)
}

func TestAuthHandler_Me_WithoutIdentity(t *testing.T) {
	tc := createTestHandlers(t)

	rec := tc.serve(http.MethodGet, "/anonymous/me", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskHandler_CreateTask(t *testing.T) {
	tc := createTestHandlers(t)
	task := sampleTask(tc.ownerID)

	tc.taskUC.EXPECT().
		CreateTask(mock.Anything, tc.ownerID, &usecase.CreateTaskInput{Title: "Buy milk"}).
		Return(task, nil)

	rec := tc.serve(http.MethodPost, "/tasks", `{"title":"Buy milk"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData[TaskResponse](t, rec)
	assert.Equal(t, task.ID, data.ID)
	assert.Equal(t, entity.TaskStatusTodo, data.Status)
	assert.Equal(t, tc.ownerID, data.UserID)
}

func TestTaskHandler_CreateTask_IgnoresOwnerInPayload(t *testing.T) {
	tc := createTestHandlers(t)
	task := sampleTask(tc.ownerID)
	someoneElse := uuid.New()

	tc.taskUC.EXPECT().
		CreateTask(mock.Anything, tc.ownerID, mock.AnythingOfType("*usecase.CreateTaskInput")).
		Return(task, nil)

	rec := tc.serve(http.MethodPost, "/tasks", `{"title":"Buy milk","userId":"`+someoneElse.String()+`"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTaskHandler_ListTasks(t *testing.T) {
	tc := createTestHandlers(t)

	tc.taskUC.EXPECT().ListTasks(mock.Anything, tc.ownerID).Return([]*entity.Task{sampleTask(tc.ownerID)}, nil)

	rec := tc.serve(http.MethodGet, "/tasks", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	data := decodeData[[]TaskResponse](t, rec)
	require.Len(t, data, 1)
	assert.Equal(t, "Buy milk", data[0].Title)
}

func TestTaskHandler_InvalidID(t *testing.T) {
	tc := createTestHandlers(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := tc.serve(method, "/tasks/123", `{"status":"DONE"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.Equal(t, "INVALID_ID", decodeError(t, rec).Code, method)
	}
}

func TestTaskHandler_UpdateTask_Status(t *testing.T) {
	tc := createTestHandlers(t)
	task := sampleTask(tc.ownerID)
	task.Status = entity.TaskStatusDone
	done := entity.TaskStatusDone

	tc.taskUC.EXPECT().
		UpdateTask(mock.Anything, tc.ownerID, task.ID, &usecase.UpdateTaskInput{Status: &done}).
		Return(task, nil)

	rec := tc.serve(http.MethodPut, "/tasks/"+task.ID.String(), `{"status":"DONE"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.TaskStatusDone, decodeData[TaskResponse](t, rec).Status)
}

func TestTaskHandler_UpdateTask_RejectsUnknownStatus(t *testing.T) {
	tc := createTestHandlers(t)

	rec := tc.serve(http.MethodPut, "/tasks/"+uuid.NewString(), `{"status":"ARCHIVED"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, rec).Code)
}

func TestTaskHandler_UpdateTask_NotFound(t *testing.T) {
	tc := createTestHandlers(t)
	taskID := uuid.New()

	tc.taskUC.EXPECT().
		UpdateTask(mock.Anything, tc.ownerID, taskID, mock.AnythingOfType("*usecase.UpdateTaskInput")).
		Return(nil, domainerrors.ErrTaskNotFound)

	rec := tc.serve(http.MethodPut, "/tasks/"+taskID.String(), `{"title":"x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TASK_NOT_FOUND", decodeError(t, rec).Code)
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	tc := createTestHandlers(t)
	taskID := uuid.New()

	tc.taskUC.EXPECT().DeleteTask(mock.Anything, tc.ownerID, taskID).Return(nil)

	rec := tc.serve(http.MethodDelete, "/tasks/"+taskID.String(), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted", decodeData[response.MessageResponse](t, rec).Message)
}
