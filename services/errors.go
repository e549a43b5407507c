package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Every *Error wraps exactly one of these so callers can
// branch with errors.Is without caring about the code or message.
var (
	ErrValidation     = errors.New("validation failed")
	ErrSelfContact    = errors.New("self contact")
	ErrNotFound       = errors.New("not found")
	ErrNotParticipant = errors.New("not a participant")
	ErrNotSender      = errors.New("not the sender")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrUnauthorized   = errors.New("unauthorized")
)

// Error is a domain error carrying the response code and message
type Error struct {
	Kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// ValidationError reports malformed or missing input
func ValidationError(message string) *Error {
	return newError(ErrValidation, "VALIDATION_ERROR", message)
}

// NotFoundError reports a missing record under the given code
func NotFoundError(code, message string) *Error {
	return newError(ErrNotFound, code, message)
}

// isDuplicateKey reports whether err is a unique constraint violation
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
