package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the five failure kinds a storefront call can end in.
var (
	ErrConnectivity = errors.New("backend unreachable")
	ErrAuth         = errors.New("session expired or invalid")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrServer       = errors.New("server error")
)

// Error codes carried by AppError.
const (
	CodeConnectivity = "CONNECTIVITY_ERROR"
	CodeAuth         = "AUTH_ERROR"
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeServer       = "SERVER_ERROR"
)

// AppError is a classified failure. Err always chains to one of the
// sentinels above, so callers can use errors.Is to branch on the kind.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"-"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// causeError chains a sentinel with the underlying cause so that both
// errors.Is(err, sentinel) and errors.Is(err, cause) hold.
type causeError struct {
	sentinel error
	cause    error
}

func (c *causeError) Error() string   { return fmt.Sprintf("%v: %v", c.sentinel, c.cause) }
func (c *causeError) Unwrap() []error { return []error{c.sentinel, c.cause} }

func withCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &causeError{sentinel: sentinel, cause: cause}
}

// Connectivity reports that the backend could not be reached at all.
func Connectivity(cause error) *AppError {
	return &AppError{
		Code:    CodeConnectivity,
		Message: "unable to connect to the server, please make sure the backend is running",
		Status:  http.StatusBadGateway,
		Err:     withCause(ErrConnectivity, cause),
	}
}

// Auth reports an expired or invalid session.
func Auth(message string) *AppError {
	return &AppError{
		Code:    CodeAuth,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrAuth,
	}
}

// Validation reports a client-side validation failure.
func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// ValidationFields reports a client-side validation failure with per-field messages.
func ValidationFields(message string, fields map[string]string) *AppError {
	e := Validation(message)
	e.Fields = fields
	return e
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// NotFoundMessage creates a 404 error with a backend-provided message.
func NotFoundMessage(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Server reports any other failed call, keeping the backend status and message.
func Server(status int, message string, cause error) *AppError {
	return &AppError{
		Code:    CodeServer,
		Message: message,
		Status:  status,
		Err:     withCause(ErrServer, cause),
	}
}

// Kind returns the AppError code for err, or CodeServer for unclassified errors.
func Kind(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrConnectivity):
		return CodeConnectivity
	case errors.Is(err, ErrAuth):
		return CodeAuth
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeServer
	}
}

// HTTPStatus returns the HTTP status code for the given error. A recorded
// status below 400 is ignored so an error never answers as success.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status >= 400 {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrConnectivity):
		return http.StatusBadGateway
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
