package repository

import (
	"context"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

// TransitionStore применяет переходы состояния внутри одной транзакции
type TransitionStore interface {
	// LockTeam читает команду вместе с участниками и блокирует строку до конца транзакции
	LockTeam(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.TeamStatus) error
	MemberExists(ctx context.Context, teamID uuid.UUID, userID string) (bool, error)
	AddMember(ctx context.Context, member domain.TeamMember) error
	RemoveMember(ctx context.Context, teamID uuid.UUID, userID string) error
}

// TxManager открывает транзакцию, передает fn хранилище поверх нее и фиксирует
// результат, если fn вернул nil. Любая ошибка откатывает транзакцию.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(store TransitionStore) error) error
}
