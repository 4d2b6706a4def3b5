package service

import (
	"context"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	CampusCode   string
	Name         string
	Abbreviation string
	MemberIDs    []string
}

type UpdateTeamInput struct {
	CampusCode   string
	TeamID       uuid.UUID
	Name         string
	Abbreviation string
}

type TeamService interface {
	ListTeams(ctx context.Context, campusCode string) ([]*domain.Team, error)
	CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error)
	GetTeam(ctx context.Context, campusCode string, teamID uuid.UUID) (*domain.Team, error)
	UpdateTeam(ctx context.Context, input UpdateTeamInput) (*domain.Team, error)
	RequestDeletion(ctx context.Context, campusCode string, teamID uuid.UUID, reason string) error
	RequestApproval(ctx context.Context, campusCode string, teamID uuid.UUID) error
}

// RequestPublisher ставит запрос на переход в очередь согласования
type RequestPublisher interface {
	PublishRequest(ctx context.Context, req domain.Request) error
}
