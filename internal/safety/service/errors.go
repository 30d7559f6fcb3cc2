package service

import (
	"fmt"
	"strings"
)

// FieldError one invalid input field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationError missing or malformed input (maps to 400)
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// ResourceError entity not found or in a terminal state (maps to 404)
type ResourceError struct {
	Resource string
	ID       string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError optimistic-concurrency failure on document update (maps to 409)
type ConflictError struct {
	DocumentID string
	Expected   int
	Actual     int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document %s version conflict: expected %d, stored %d", e.DocumentID, e.Expected, e.Actual)
}

// AuthorizationError acting principal is not allowed to perform the action
// (maps to 403). The default policy never produces one, but every mutating
// path carries the principal so a real policy can slot in.
type AuthorizationError struct {
	UserID string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %s is not allowed to %s", e.UserID, e.Action)
}
