package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yungbote/taskflow-backend/internal/domain"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeActorNotFound:   http.StatusUnauthorized,
	domain.CodeUnauthenticated: http.StatusUnauthorized,
	domain.CodeForbidden:       http.StatusForbidden,
	domain.CodeNotFound:        http.StatusNotFound,
	domain.CodeMemberNotFound:  http.StatusBadRequest,
	domain.CodeValidation:      http.StatusBadRequest,
	domain.CodeConflict:        http.StatusConflict,
	domain.CodeInternal:        http.StatusInternalServerError,
}

// From converts err into an API error. An existing *Error is returned as is;
// domain errors keep their code and message; anything else is internal and
// its text is withheld.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := domain.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok || code == domain.CodeInternal {
		return New(http.StatusInternalServerError, string(domain.CodeInternal), errors.New("internal error"))
	}
	return New(status, string(code), errors.New(domain.MessageOf(err)))
}

// StatusOf reports the HTTP status err maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err).Status
}
