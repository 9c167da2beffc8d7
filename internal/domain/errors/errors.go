// Package errors is the application error taxonomy. Every AppError knows the
// HTTP status and machine-readable code it is reported with.
package errors

import (
	"net/http"

	"tasktrack/internal/errors"
)

// AppError is an error the API layer can render without guessing.
type AppError interface {
	error
	HTTPCode() int
	ErrorCode() string
	// Message is safe to show to clients.
	Message() string
	// Details is optional context; the API drops it for 401, 403 and 5xx.
	Details() string
}

// BaseError is the AppError used for every predefined sentinel.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	parent    *BaseError
}

func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{httpCode: httpCode, errorCode: errorCode, message: message, details: details}
}

func (e *BaseError) Error() string     { return e.message }
func (e *BaseError) HTTPCode() int     { return e.httpCode }
func (e *BaseError) ErrorCode() string { return e.errorCode }
func (e *BaseError) Message() string   { return e.message }
func (e *BaseError) Details() string   { return e.details }

// WithDetails returns a copy carrying details. The copy still matches the
// original under errors.Is.
func (e *BaseError) WithDetails(details string) *BaseError {
	detailed := *e
	detailed.details = details
	detailed.parent = e.root()

	return &detailed
}

// Is lets a detailed copy match its predefined sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e == t || e.root() == t
}

func (e *BaseError) root() *BaseError {
	if e.parent != nil {
		return e.parent
	}

	return e
}

var (
	ErrValidationFailed = NewBaseError(http.StatusBadRequest, "VALIDATION_FAILED", "Input validation failed", "")

	// Reported as 400 to match the public API contract for registration.
	ErrUserAlreadyExists = NewBaseError(http.StatusBadRequest, "USER_ALREADY_EXISTS", "User already exists", "")

	// Unknown email and wrong password share this error.
	ErrInvalidCredentials = NewBaseError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", "")

	ErrUnauthenticated = NewBaseError(http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication required", "")

	// Returned both when the task is absent and when it belongs to someone else.
	ErrTaskNotFound = NewBaseError(http.StatusNotFound, "TASK_NOT_FOUND", "Task not found", "")

	ErrPasswordHashFailed = NewBaseError(http.StatusInternalServerError, "PASSWORD_HASH_FAILED", "Password processing failed", "")
	ErrTokenIssueFailed   = NewBaseError(http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Failed to issue token", "")
	ErrInternalError      = NewBaseError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
)

// DatabaseExecuteError wraps a driver failure. The driver error stays
// reachable through errors.Is / errors.As but never reaches clients.
type DatabaseExecuteError struct {
	err     error
	details string
}

func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{err: err, details: details}
}

func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

func (e *DatabaseExecuteError) Unwrap() error     { return e.err }
func (e *DatabaseExecuteError) HTTPCode() int     { return http.StatusInternalServerError }
func (e *DatabaseExecuteError) ErrorCode() string { return "DATABASE_EXECUTE_FAILED" }
func (e *DatabaseExecuteError) Message() string   { return "Database execution failed" }
func (e *DatabaseExecuteError) Details() string   { return e.details }
