package core

import "net/http"

// HTTPError represents an HTTP error with a status and a stable machine code.
// The code is what clients branch on; the message is for humans.
type HTTPError struct {
	Status  int    // HTTP status code
	Code    string // stable error code (e.g. "not_found", "unauthorized")
	Message string // human-readable message
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// WithMessage returns a copy of the error carrying a specific message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

var (
	ErrBadRequest      = HTTPError{Status: http.StatusBadRequest, Code: "bad_request", Message: "Bad request"}
	ErrUnauthorized    = HTTPError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Unauthorized"}
	ErrForbidden       = HTTPError{Status: http.StatusForbidden, Code: "forbidden", Message: "Forbidden"}
	ErrNotFound        = HTTPError{Status: http.StatusNotFound, Code: "not_found", Message: "Not found"}
	ErrConflict        = HTTPError{Status: http.StatusConflict, Code: "conflict", Message: "Conflict"}
	ErrTooManyRequests = HTTPError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: "Too many requests"}

	ErrInternal   = HTTPError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "Internal Server Error"}
	ErrBadGateway = HTTPError{Status: http.StatusBadGateway, Code: "bad_gateway", Message: "Bad gateway"}
)

// NewHTTPError creates a custom HTTP error.
func NewHTTPError(status int, code, message string) HTTPError {
	return HTTPError{Status: status, Code: code, Message: message}
}
