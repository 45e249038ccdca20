package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindExpired      Kind = "EXPIRED"
	KindInvalidToken Kind = "INVALID_TOKEN"
	KindInternal     Kind = "INTERNAL"
)

// Status: HTTP-код, который уходит клиенту в extensions.code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized, KindExpired, KindInvalidToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error — ошибка приложения. Message безопасно отдавать клиенту (кроме Internal),
// Cause пишется только в лог.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Extensions реализует gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": e.Kind.Status(),
		"kind": string(e.Kind),
	}
	for k, v := range e.Fields {
		if k == "code" || k == "kind" {
			continue
		}
		ext[k] = v
	}
	return ext
}

// With добавляет поле в extensions (email, id и т.п.).
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	e.Fields[key] = value
	return e
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func InvalidInput(msg string) *Error { return New(KindInvalidInput, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Expired(msg string) *Error      { return New(KindExpired, msg) }
func InvalidToken(msg string) *Error { return New(KindInvalidToken, msg) }

func Internal(msg string, cause error) *Error { return Wrap(KindInternal, msg, cause) }

// KindOf достаёт Kind из цепочки ошибок; всё, что не *Error, считается Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return KindOf(err).Status()
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
