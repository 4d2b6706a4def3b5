package service

import (
	"context"
	"strings"

	"github.com/bagdasarian/campus-teams/internal/clients"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

type memberService struct {
	teamRepo  repository.TeamRepository
	validator clients.MembershipValidator
	publisher RequestPublisher
	log       *logger.Logger
}

func NewMemberService(
	teamRepo repository.TeamRepository,
	validator clients.MembershipValidator,
	publisher RequestPublisher,
	log *logger.Logger,
) MemberService {
	return &memberService{
		teamRepo:  teamRepo,
		validator: validator,
		publisher: publisher,
		log:       log,
	}
}

func (s *memberService) ListMembers(ctx context.Context, campusCode string, teamID uuid.UUID) ([]domain.TeamMember, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID, campusCode)
	if err != nil {
		return nil, err
	}
	return team.Members, nil
}

// RequestAdd отправляет запрос на добавление пользователя в активную команду
func (s *memberService) RequestAdd(ctx context.Context, campusCode string, teamID uuid.UUID, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.NewBadRequestError("user_id is required")
	}

	team, err := s.activeTeam(ctx, campusCode, teamID)
	if err != nil {
		return err
	}
	if team.HasMember(userID) {
		return domain.ErrMemberExists
	}

	if err := validateUsers(ctx, s.validator, []string{userID}); err != nil {
		return err
	}

	return publish(ctx, s.publisher, s.log, domain.NewRequest(domain.RequestAddTeamMember, team.ID, campusCode, userID, ""))
}

// RequestRemove отправляет запрос на исключение участника
func (s *memberService) RequestRemove(ctx context.Context, campusCode string, teamID uuid.UUID, userID, reason string) error {
	team, err := s.activeTeam(ctx, campusCode, teamID)
	if err != nil {
		return err
	}
	if !team.HasMember(userID) {
		return domain.NewNotFoundError("member " + userID)
	}

	return publish(ctx, s.publisher, s.log, domain.NewRequest(domain.RequestRemoveTeamMember, team.ID, campusCode, userID, reason))
}

func (s *memberService) activeTeam(ctx context.Context, campusCode string, teamID uuid.UUID) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID, campusCode)
	if err != nil {
		return nil, err
	}
	if team.Status != domain.TeamStatusActive {
		return nil, domain.NewInvalidStateError("team %s is %s, membership changes require an active team", team.ID, team.Status)
	}
	return team, nil
}
