package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bagdasarian/campus-teams/internal/clients"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

type teamService struct {
	teamRepo   repository.TeamRepository
	campusRepo repository.CampusRepository
	validator  clients.MembershipValidator
	publisher  RequestPublisher
	log        *logger.Logger
}

// NewTeamService создает новый экземпляр TeamService
func NewTeamService(
	teamRepo repository.TeamRepository,
	campusRepo repository.CampusRepository,
	validator clients.MembershipValidator,
	publisher RequestPublisher,
	log *logger.Logger,
) TeamService {
	return &teamService{
		teamRepo:   teamRepo,
		campusRepo: campusRepo,
		validator:  validator,
		publisher:  publisher,
		log:        log,
	}
}

// ListTeams возвращает команды кампуса вместе с участниками
func (s *teamService) ListTeams(ctx context.Context, campusCode string) ([]*domain.Team, error) {
	if err := s.ensureCampus(ctx, campusCode); err != nil {
		return nil, err
	}
	return s.teamRepo.ListByCampus(ctx, campusCode)
}

// CreateTeam сохраняет команду в статусе pending и отправляет запрос на ее одобрение.
// Статус меняет только консьюмер решений.
func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error) {
	if err := s.ensureCampus(ctx, input.CampusCode); err != nil {
		return nil, err
	}

	if err := domain.ValidateDetails(input.Name, input.Abbreviation); err != nil {
		return nil, err
	}

	team := domain.NewTeam(input.CampusCode, input.Name, input.Abbreviation, input.MemberIDs)

	conflict, err := s.teamRepo.ExistsConflict(ctx, team.CampusCode, team.Name, team.Abbreviation, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.ErrTeamConflict
	}

	if err := s.validateUsers(ctx, team.MemberIDs()); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}

	req := domain.NewRequest(domain.RequestApproveTeam, team.ID, team.CampusCode, "", "")
	if err := s.publish(ctx, req); err != nil {
		return nil, err
	}

	s.log.Info("team created, approval requested", "team_id", team.ID, "campus_code", team.CampusCode)
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, campusCode string, teamID uuid.UUID) (*domain.Team, error) {
	return s.teamRepo.GetByID(ctx, teamID, campusCode)
}

// UpdateTeam меняет только имя и аббревиатуру
func (s *teamService) UpdateTeam(ctx context.Context, input UpdateTeamInput) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, input.TeamID, input.CampusCode)
	if err != nil {
		return nil, err
	}
	if team.Status == domain.TeamStatusClosed {
		return nil, domain.NewInvalidStateError("team %s is closed", team.ID)
	}

	if err := domain.ValidateDetails(input.Name, input.Abbreviation); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	abbreviation := domain.NormalizeAbbreviation(input.Abbreviation)

	conflict, err := s.teamRepo.ExistsConflict(ctx, team.CampusCode, name, abbreviation, team.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.ErrTeamConflict
	}

	team.Name = name
	team.Abbreviation = abbreviation
	if err := s.teamRepo.UpdateDetails(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// RequestDeletion отправляет запрос на закрытие команды
func (s *teamService) RequestDeletion(ctx context.Context, campusCode string, teamID uuid.UUID, reason string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID, campusCode)
	if err != nil {
		return err
	}
	if team.Status == domain.TeamStatusClosed {
		return domain.NewInvalidStateError("team %s is already closed", team.ID)
	}

	return s.publish(ctx, domain.NewRequest(domain.RequestDeleteTeam, team.ID, campusCode, "", reason))
}

// RequestApproval повторно отправляет запрос на одобрение команды, которая осталась в pending
func (s *teamService) RequestApproval(ctx context.Context, campusCode string, teamID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID, campusCode)
	if err != nil {
		return err
	}
	if team.Status != domain.TeamStatusPending {
		return domain.NewInvalidStateError("team %s is %s, only pending teams can be approved", team.ID, team.Status)
	}

	return s.publish(ctx, domain.NewRequest(domain.RequestApproveTeam, team.ID, campusCode, "", ""))
}

func (s *teamService) ensureCampus(ctx context.Context, campusCode string) error {
	exists, err := s.campusRepo.Exists(ctx, campusCode)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFoundError("campus " + campusCode)
	}
	return nil
}

func (s *teamService) validateUsers(ctx context.Context, userIDs []string) error {
	return validateUsers(ctx, s.validator, userIDs)
}

func (s *teamService) publish(ctx context.Context, req domain.Request) error {
	return publish(ctx, s.publisher, s.log, req)
}

func validateUsers(ctx context.Context, validator clients.MembershipValidator, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	result := validator.ValidateUsers(ctx, userIDs)
	if result.Valid {
		return nil
	}
	message := result.Message
	if message == "" {
		message = "some users do not exist"
	}
	if len(result.InvalidIDs) > 0 {
		message = fmt.Sprintf("%s: %s", message, strings.Join(result.InvalidIDs, ", "))
	}
	return domain.NewInvalidMembersError(message)
}

// publish превращает любую ошибку брокера в BROKER_UNAVAILABLE
func publish(ctx context.Context, publisher RequestPublisher, log *logger.Logger, req domain.Request) error {
	if err := publisher.PublishRequest(ctx, req); err != nil {
		log.Error("failed to publish request",
			"request_type", req.RequestType,
			"team_id", req.TeamID,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, err)
	}
	return nil
}
