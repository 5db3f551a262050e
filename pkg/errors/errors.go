package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed remote operation.
type Kind string

// Transport failure kinds surfaced by the user store.
const (
	KindFetchFailed  Kind = "FetchFailed"
	KindCreateFailed Kind = "CreateFailed"
	KindUpdateFailed Kind = "UpdateFailed"
	KindDeleteFailed Kind = "DeleteFailed"
)

// Sentinels usable with errors.Is against any OperationError of the same kind.
var (
	ErrFetchFailed  = &OperationError{Kind: KindFetchFailed}
	ErrCreateFailed = &OperationError{Kind: KindCreateFailed}
	ErrUpdateFailed = &OperationError{Kind: KindUpdateFailed}
	ErrDeleteFailed = &OperationError{Kind: KindDeleteFailed}

	ErrNotFound = NewNotFoundError("user", "")
	ErrStale    = errors.New("stale result discarded")
)

// OperationError is returned when a remote call made on behalf of the store fails.
type OperationError struct {
	Kind Kind
	Err  error
}

// NewOperationError wraps err with the given kind.
func NewOperationError(kind Kind, err error) *OperationError {
	return &OperationError{Kind: kind, Err: err}
}

// Error implements the error interface
func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap returns the wrapped error
func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is matches another OperationError by kind only.
func (e *OperationError) Is(target error) bool {
	var t *OperationError
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// StatusError reports a non-success HTTP status from the remote API.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

// Error implements the error interface
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// ValidationError represents a validation failure for a single field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ValidationErrors is the ordered set of field failures produced by one validation pass.
// It holds at most one entry per field.
type ValidationErrors []*ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		messages = append(messages, e.Message)
	}
	return "validation failed: " + strings.Join(messages, ", ")
}

// Get returns the message recorded for field, or "".
func (ve ValidationErrors) Get(field string) string {
	for _, e := range ve {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Fields returns the failing field paths in order.
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, len(ve))
	for i, e := range ve {
		fields[i] = e.Field
	}
	return fields
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Message  string
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, message string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is reports whether target is also a NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}
