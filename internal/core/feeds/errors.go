package feeds

import (
	"errors"
	"fmt"
)

// ErrFeedNotFound is returned when a feed lookup finds no matching record.
var ErrFeedNotFound = errors.New("feed not found")

// ValidationError represents a bad or missing request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthError indicates the upstream service rejected the credentials. Message
// carries the human-readable text extracted from the upstream error body.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Message)
}

// IsAuthError checks if an error is (or wraps) an upstream auth rejection.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}
