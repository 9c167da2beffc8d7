package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasktrack/config"
	"tasktrack/internal/delivery/api/middleware"
	"tasktrack/internal/delivery/api/router"
	"tasktrack/internal/delivery/api/router/handler"
	"tasktrack/internal/infra/auth"
	"tasktrack/internal/infra/persistence/migrations"
	"tasktrack/internal/infra/persistence/postgres"
	"tasktrack/internal/infra/persistence/sqlite"
	"tasktrack/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type authData struct {
	User struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Token string `json:"token"`
}

type taskData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	UserID      string  `json:"userId"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Access: "integration-secret"},
		Auth:      &config.AuthConfig{BcryptCost: bcrypt.MinCost, TokenTTL: time.Hour},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger, cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	_, err = migrations.Up(t.Context(), sqlDB, migrations.SQLite)
	require.NoError(t, err)

	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	userRepo := postgres.NewUserRepository(db)
	authUC := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     userRepo,
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: tokenService,
		Logger:       logger,
	})
	taskUC := impl.NewTaskService(impl.TaskServiceParams{
		TxManager: postgres.NewTransactionManager(db),
		TaskRepo:  postgres.NewTaskRepository(db),
		Logger:    logger,
	})

	return NewEcho(cfg, logger, router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		TaskHandler:    handler.NewTaskHandler(handler.TaskHandlerParams{TaskUC: taskUC, Logger: logger}),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{TokenService: tokenService, Logger: logger}),
	})
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))

	return out
}

func register(t *testing.T, e *echo.Echo, name, email string) authData {
	t.Helper()

	rec, env := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	return decode[authData](t, env.Data)
}

func TestAPI_Health(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get("X-Request-Id"))
}

func TestAPI_RegisterLoginAndMe(t *testing.T) {
	e := newTestServer(t)

	registered := register(t, e, "Alice", "Alice@Example.com")
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Token)

	rec, env := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decode[authData](t, env.Data)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, env = do(t, e, http.MethodGet, "/auth/me", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, env.Data)
	assert.Equal(t, registered.User.ID, me["id"])
	assert.NotContains(t, me, "passwordHash")
}

func TestAPI_RegisterDuplicate(t *testing.T) {
	e := newTestServer(t)
	register(t, e, "Alice", "alice@example.com")

	rec, env := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Alice Two", "email": "ALICE@example.com", "password": "secret2",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)
}

func TestAPI_RegisterValidation(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "A", "email": "nope", "password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.NotNil(t, env.Error.Details)
}

func TestAPI_RegisterPasswordByteLimit(t *testing.T) {
	e := newTestServer(t)

	// 40 two-byte runes pass a character count of 72 but not bcrypt's byte limit.
	rec, env := do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": strings.Repeat("ä", 40),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "password must be at most 72 bytes", env.Error.Details)

	password := strings.Repeat("ä", 36)
	rec, _ = do(t, e, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": password,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, e, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": password,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_LoginFailuresLookTheSame(t *testing.T) {
	e := newTestServer(t)
	register(t, e, "Alice", "alice@example.com")

	wrongRec, wrongEnv := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	unknownRec, unknownEnv := do(t, e, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	require.NotNil(t, wrongEnv.Error)
	require.NotNil(t, unknownEnv.Error)
	assert.Equal(t, *wrongEnv.Error, *unknownEnv.Error)
	assert.Nil(t, wrongEnv.Error.Details)
}

func TestAPI_TasksRequireBearerToken(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	rec, _ = do(t, e, http.MethodGet, "/tasks", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_TaskLifecycle(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "Alice", "alice@example.com")

	rec, env := do(t, e, http.MethodPost, "/tasks", alice.Token, map[string]string{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[taskData](t, env.Data)
	assert.Equal(t, "TODO", created.Status)
	assert.Equal(t, alice.User.ID, created.UserID)

	rec, env = do(t, e, http.MethodGet, "/tasks", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]taskData](t, env.Data)
	require.Len(t, listed, 1)
	assert.Equal(t, "Buy milk", listed[0].Title)
	assert.Equal(t, "TODO", listed[0].Status)

	rec, env = do(t, e, http.MethodPut, "/tasks/"+created.ID, alice.Token, map[string]string{"status": "DONE"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[taskData](t, env.Data)
	assert.Equal(t, "DONE", updated.Status)
	assert.Equal(t, "Buy milk", updated.Title)

	rec, env = do(t, e, http.MethodGet, "/tasks", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed = decode[[]taskData](t, env.Data)
	require.Len(t, listed, 1)
	assert.Equal(t, "DONE", listed[0].Status)
	assert.Equal(t, "Buy milk", listed[0].Title)

	rec, env = do(t, e, http.MethodDelete, "/tasks/"+created.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted", decode[map[string]string](t, env.Data)["message"])

	rec, env = do(t, e, http.MethodGet, "/tasks", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]taskData](t, env.Data))
}

func TestAPI_CrossOwnerAccessIsNotFound(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "Alice", "alice@example.com")
	bob := register(t, e, "Bob", "bob@example.com")

	_, env := do(t, e, http.MethodPost, "/tasks", alice.Token, map[string]string{"title": "Alice's task"})
	task := decode[taskData](t, env.Data)

	rec, env := do(t, e, http.MethodPut, "/tasks/"+task.ID, bob.Token, map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TASK_NOT_FOUND", env.Error.Code)

	rec, _ = do(t, e, http.MethodDelete, "/tasks/"+task.ID, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/tasks/"+task.ID, bob.Token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = do(t, e, http.MethodGet, "/tasks/"+task.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TODO", decode[taskData](t, env.Data).Status)

	rec, env = do(t, e, http.MethodGet, "/tasks", bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]taskData](t, env.Data))
}

func TestAPI_TaskInputErrors(t *testing.T) {
	e := newTestServer(t)
	alice := register(t, e, "Alice", "alice@example.com")

	rec, env := do(t, e, http.MethodPost, "/tasks", alice.Token, map[string]string{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = do(t, e, http.MethodPut, "/tasks/not-a-uuid", alice.Token, map[string]string{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	_, env = do(t, e, http.MethodPost, "/tasks", alice.Token, map[string]string{"title": "Valid"})
	task := decode[taskData](t, env.Data)

	rec, env = do(t, e, http.MethodPut, "/tasks/"+task.ID, alice.Token, map[string]string{"status": "DOING"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestAPI_UnknownRoute(t *testing.T) {
	e := newTestServer(t)

	rec, env := do(t, e, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}
