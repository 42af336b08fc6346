package service

import "fmt"

// ValidationError indicates malformed input rejected at the service boundary.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates the requested resource does not exist, or is not
// visible to the caller's store.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// AuthError indicates a missing or invalid session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
