package repository

import (
	"context"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

// TeamRepository - хранилище команд для синхронного HTTP-пути.
// Статус и состав команды после создания здесь не меняются: это делает только TransitionStore.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error)
	ListByCampus(ctx context.Context, campusCode string) ([]*domain.Team, error)
	// ExistsConflict ищет другую команду кампуса с таким же именем или аббревиатурой
	ExistsConflict(ctx context.Context, campusCode, name, abbreviation string, excludeID uuid.UUID) (bool, error)
	UpdateDetails(ctx context.Context, team *domain.Team) error
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error)
}

type CampusRepository interface {
	Exists(ctx context.Context, code string) (bool, error)
}
