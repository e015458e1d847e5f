package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures surfaced by the project and task services.
type ErrorCode string

const (
	CodeActorNotFound   ErrorCode = "actor_not_found"
	CodeForbidden       ErrorCode = "forbidden"
	CodeNotFound        ErrorCode = "not_found"
	CodeMemberNotFound  ErrorCode = "member_not_found"
	CodeValidation      ErrorCode = "validation"
	CodeConflict        ErrorCode = "conflict"
	CodeUnauthenticated ErrorCode = "unauthenticated"
	CodeInternal        ErrorCode = "internal"
)

// Error is the canonical domain error.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates err with code. Returns nil when err is nil.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	var de *Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

func CodeOf(err error) ErrorCode {
	var de *Error
	if !errors.As(err, &de) {
		return ""
	}
	return de.Code
}

// MessageOf returns the human-readable message without op or code decoration.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func ActorNotFound(op, handle string) error {
	return NewError(CodeActorNotFound, op, fmt.Sprintf("user %q not found", handle), nil)
}

func Forbidden(op string) error {
	return NewError(CodeForbidden, op, "access denied", nil)
}

func NotFound(op, what string) error {
	return NewError(CodeNotFound, op, what+" not found", nil)
}

func MemberNotFound(op, email string) error {
	return NewError(CodeMemberNotFound, op, fmt.Sprintf("user with email %s not found", email), nil)
}

func Validation(op, msg string) error {
	return NewError(CodeValidation, op, msg, nil)
}

func Conflict(op, msg string) error {
	return NewError(CodeConflict, op, msg, nil)
}

func Unauthenticated(op, msg string) error {
	return NewError(CodeUnauthenticated, op, msg, nil)
}
