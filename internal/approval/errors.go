package approval

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку обработки сообщения
type Kind string

const (
	KindMalformed         Kind = "malformed"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindStore             Kind = "store"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает по Kind, поэтому errors.Is(err, ErrValidation) работает для любого сообщения
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

var (
	ErrMalformed         = &Error{Kind: KindMalformed, Message: "malformed message"}
	ErrValidation        = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrTeamNotFound      = &Error{Kind: KindNotFound, Message: "team not found"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "transition not allowed"}
	ErrStore             = &Error{Kind: KindStore, Message: "store failure"}
)

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsPermanent - повторная доставка даст ту же ошибку
func IsPermanent(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindMalformed, KindValidation, KindNotFound:
		return true
	}
	return false
}
