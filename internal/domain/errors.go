package domain

import "fmt"

// ErrorCode identifies the category of a domain error so transport
// layers can map it to a response without string matching.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeSlotConflict       ErrorCode = "SLOT_CONFLICT"
	CodeBikeUnavailable    ErrorCode = "BIKE_UNAVAILABLE"
	CodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	CodeApprovalIncomplete ErrorCode = "APPROVAL_INCOMPLETE"
)

// Error is a domain-level error carrying a stable code and a
// human-readable message.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError creates an error for malformed or missing input.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// NewNotFoundError creates an error for an unresolvable entity reference.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewForbiddenError creates an error for an actor lacking the required role.
func NewForbiddenError(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NewConflictError creates an error for a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// NewSlotConflictError creates an error for an overlapping booking interval.
func NewSlotConflictError(message string) *Error {
	return &Error{Code: CodeSlotConflict, Message: message}
}

// NewBikeUnavailableError creates an error for booking a non-available bike.
func NewBikeUnavailableError(message string) *Error {
	return &Error{Code: CodeBikeUnavailable, Message: message}
}

// NewInvalidTransitionError creates an error for a lifecycle operation
// invoked against a booking whose current status does not permit it.
func NewInvalidTransitionError(from, to string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewApprovalIncompleteError creates an error for activation attempted
// before both approval flags are set.
func NewApprovalIncompleteError(message string) *Error {
	return &Error{Code: CodeApprovalIncomplete, Message: message}
}
