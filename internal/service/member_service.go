package service

import (
	"context"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

// MemberService проверяет предусловия и отправляет запросы на изменение состава.
// Сами записи участников меняет только консьюмер решений.
type MemberService interface {
	ListMembers(ctx context.Context, campusCode string, teamID uuid.UUID) ([]domain.TeamMember, error)
	RequestAdd(ctx context.Context, campusCode string, teamID uuid.UUID, userID string) error
	RequestRemove(ctx context.Context, campusCode string, teamID uuid.UUID, userID, reason string) error
}
