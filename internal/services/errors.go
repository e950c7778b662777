package services

import (
	"errors"
	"fmt"
)

// ErrorKind groups reason codes the way callers react to them
type ErrorKind string

const (
	KindAuthorization ErrorKind = "authorization"
	KindState         ErrorKind = "state"
	KindValidation    ErrorKind = "validation"
)

// RegistryError is a rejected registry call. Every value is a sentinel
// matched with errors.Is; call sites attach detail with %w.
type RegistryError struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newRegistryError(code string, kind ErrorKind, message string) *RegistryError {
	return &RegistryError{Code: code, Kind: kind, Message: message}
}

// Authorization errors
var (
	ErrUnauthorized  = newRegistryError("Unauthorized", KindAuthorization, "caller lacks the required role")
	ErrNotStudent    = newRegistryError("NotStudent", KindAuthorization, "caller is not a registered student")
	ErrNotRegistered = newRegistryError("NotRegistered", KindAuthorization, "caller is not registered")
)

// State errors
var (
	ErrAlreadyRegistered = newRegistryError("AlreadyRegistered", KindState, "address is already registered")
	ErrDuplicateID       = newRegistryError("DuplicateId", KindState, "id is bound to another address")
	ErrAlreadyEvaluated  = newRegistryError("AlreadyEvaluated", KindState, "course already evaluated by caller")
	ErrNotEnrolled       = newRegistryError("NotEnrolled", KindState, "caller has not taken the course")
	ErrIncorrectPassword = newRegistryError("IncorrectPassword", KindState, "old password does not match")
)

// Validation errors
var (
	ErrInvalidScore   = newRegistryError("InvalidScore", KindValidation, "score must be between 1 and 5")
	ErrInvalidRole    = newRegistryError("InvalidRole", KindValidation, "role must be student or teacher")
	ErrCourseNotFound = newRegistryError("CourseNotFound", KindValidation, "course does not exist")
	ErrInvalidCredits = newRegistryError("InvalidCredits", KindValidation, "credits must be between 1 and 10")
	ErrInvalidTeacher = newRegistryError("InvalidTeacher", KindValidation, "teacher must be a registered teacher")
	ErrInvalidImport  = newRegistryError("InvalidImport", KindValidation, "enrollment import rejected")
	ErrInvalidInput   = newRegistryError("InvalidInput", KindValidation, "malformed request")
)

// AsRegistryError returns the registry sentinel wrapped by err, if any
func AsRegistryError(err error) (*RegistryError, bool) {
	var re *RegistryError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// invalidInput wraps validator output so handlers can still reach the field errors
func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
