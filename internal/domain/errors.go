package domain

import "fmt"

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Это позволяет использовать errors.Is()
func (e *DomainError) Is(target error) bool {
	if t, ok := target.(*DomainError); ok {
		return e.Code == t.Code
	}
	return false
}

const (
	CodeNotFound          = "NOT_FOUND"
	CodeTeamConflict      = "TEAM_CONFLICT"
	CodeMemberExists      = "MEMBER_EXISTS"
	CodeInvalidState      = "INVALID_STATE"
	CodeInvalidMembers    = "INVALID_MEMBERS"
	CodeIneligible        = "INELIGIBLE"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeForbidden         = "FORBIDDEN"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeBadRequest        = "BAD_REQUEST"
	CodeBrokerUnavailable = "BROKER_UNAVAILABLE"
)

var (
	// ErrNotFound - ресурс не найден
	ErrNotFound = &DomainError{
		Code:    CodeNotFound,
		Message: "resource not found",
	}

	// ErrTeamConflict - имя или аббревиатура заняты другой командой кампуса
	ErrTeamConflict = &DomainError{
		Code:    CodeTeamConflict,
		Message: "name or abbreviation already used by another team of the campus",
	}

	// ErrMemberExists - пользователь уже состоит в команде
	ErrMemberExists = &DomainError{
		Code:    CodeMemberExists,
		Message: "user is already a member of the team",
	}

	// ErrInvalidState - команда в статусе, не допускающем операцию
	ErrInvalidState = &DomainError{
		Code:    CodeInvalidState,
		Message: "team status does not allow this operation",
	}

	ErrForbidden = &DomainError{
		Code:    CodeForbidden,
		Message: "operation not allowed for this user",
	}

	ErrUnauthorized = &DomainError{
		Code:    CodeUnauthorized,
		Message: "invalid or expired token",
	}

	// ErrBrokerUnavailable - не удалось опубликовать запрос в брокер
	ErrBrokerUnavailable = &DomainError{
		Code:    CodeBrokerUnavailable,
		Message: "request could not be queued, try again later",
	}
)

// NewNotFoundError создает ошибку NOT_FOUND с дополнительным контекстом
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewInvalidStateError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewBadRequestError(message string) *DomainError {
	return &DomainError{
		Code:    CodeBadRequest,
		Message: message,
	}
}

func NewInvalidMembersError(message string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidMembers,
		Message: message,
	}
}

func NewIneligibleError(message string) *DomainError {
	return &DomainError{
		Code:    CodeIneligible,
		Message: message,
	}
}

func NewAlreadyRegisteredError(message string) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyRegistered,
		Message: message,
	}
}
