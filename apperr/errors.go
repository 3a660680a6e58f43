package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure so callers can disambiguate
// "pick another order number" from "table unavailable" from
// "forbidden transition".
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindIllegalState
	KindTenantRequired
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// ErrTenantRequired is returned whenever an operation reaches the
// persistence layer without a resolved tenant.
var ErrTenantRequired = &Error{Kind: KindTenantRequired, Msg: "tenant identity required"}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func IllegalStatef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIllegalState, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or KindInternal for
// anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps an error classification to the HTTP status the thin
// adapters respond with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindTenantRequired:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindIllegalState:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
