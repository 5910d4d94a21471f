package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodePrecondition ErrorCode = "PRECONDITION"
	ErrCodeTxFailed     ErrorCode = "TX_FAILED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches structured detail to a copy of the error.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// Common domain errors.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrProjectNotFound = NewError(ErrCodeNotFound, "project not found")
	ErrTaskNotFound    = NewError(ErrCodeNotFound, "task not found")
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")

	ErrDuplicateEmail        = NewError(ErrCodeConflict, "a user with this email already exists")
	ErrInvalidCredentials    = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrWeakPassword          = NewError(ErrCodeInvalid, "password must be at least 6 characters")
	ErrInvalidOrExpiredToken = NewError(ErrCodeInvalid, "invalid or expired token")

	ErrForbidden         = NewError(ErrCodeForbidden, "not authorized to perform this action")
	ErrAlreadyMember     = NewError(ErrCodeConflict, "user is already a member of this project")
	ErrNotAMember        = NewError(ErrCodeNotFound, "user is not a member of this project")
	ErrCannotRemoveOwner = NewError(ErrCodePrecondition, "the project owner cannot be removed")
	ErrNotAProjectMember = NewError(ErrCodeInvalid, "can only assign tasks to project members")
	ErrNotATeamMember    = NewError(ErrCodeInvalid, "new owner must be a current project member")
	ErrSameOwner         = NewError(ErrCodeConflict, "user is already the project owner")
)

// MemberHasAssignedTasks reports that a member still has tasks assigned in
// the project. Removal is blocked until those tasks are reassigned or unassigned.
func MemberHasAssignedTasks(count int) *Error {
	return NewError(ErrCodePrecondition,
		fmt.Sprintf("member has %d assigned task(s) in this project", count),
	).WithDetails(map[string]interface{}{"assigned_tasks": count})
}

// TxFailed classifies a store-level transaction abort. Domain errors raised
// inside the transaction pass through untouched so callers keep their kind.
func TxFailed(err error) error {
	if err == nil {
		return nil
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return err
	}
	return WrapError(ErrCodeTxFailed, "transaction failed", err)
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
