package service

import (
	"context"

	"github.com/bagdasarian/campus-teams/internal/clients"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *domain.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) GetByID(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error) {
	args := m.Called(ctx, id, campusCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamRepository) ListByCampus(ctx context.Context, campusCode string) ([]*domain.Team, error) {
	args := m.Called(ctx, campusCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Team), args.Error(1)
}

func (m *MockTeamRepository) ExistsConflict(ctx context.Context, campusCode, name, abbreviation string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, campusCode, name, abbreviation, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTeamRepository) UpdateDetails(ctx context.Context, team *domain.Team) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockTeamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TeamMember), args.Error(1)
}

type MockCampusRepository struct {
	mock.Mock
}

func (m *MockCampusRepository) Exists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockRequestPublisher struct {
	mock.Mock
}

func (m *MockRequestPublisher) PublishRequest(ctx context.Context, req domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockMembershipValidator struct {
	mock.Mock
}

func (m *MockMembershipValidator) ValidateUsers(ctx context.Context, userIDs []string) clients.MembershipResult {
	args := m.Called(ctx, userIDs)
	return args.Get(0).(clients.MembershipResult)
}

type MockEligibilityChecker struct {
	mock.Mock
}

func (m *MockEligibilityChecker) CheckEligibility(ctx context.Context, teamID uuid.UUID, competitionID, token string) clients.Eligibility {
	args := m.Called(ctx, teamID, competitionID, token)
	return args.Get(0).(clients.Eligibility)
}

// Моки сервисов для тестов хендлеров

type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) ListTeams(ctx context.Context, campusCode string) ([]*domain.Team, error) {
	args := m.Called(ctx, campusCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Team), args.Error(1)
}

func (m *MockTeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*domain.Team, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamService) GetTeam(ctx context.Context, campusCode string, teamID uuid.UUID) (*domain.Team, error) {
	args := m.Called(ctx, campusCode, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamService) UpdateTeam(ctx context.Context, input UpdateTeamInput) (*domain.Team, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Team), args.Error(1)
}

func (m *MockTeamService) RequestDeletion(ctx context.Context, campusCode string, teamID uuid.UUID, reason string) error {
	args := m.Called(ctx, campusCode, teamID, reason)
	return args.Error(0)
}

func (m *MockTeamService) RequestApproval(ctx context.Context, campusCode string, teamID uuid.UUID) error {
	args := m.Called(ctx, campusCode, teamID)
	return args.Error(0)
}

type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) ListMembers(ctx context.Context, campusCode string, teamID uuid.UUID) ([]domain.TeamMember, error) {
	args := m.Called(ctx, campusCode, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TeamMember), args.Error(1)
}

func (m *MockMemberService) RequestAdd(ctx context.Context, campusCode string, teamID uuid.UUID, userID string) error {
	args := m.Called(ctx, campusCode, teamID, userID)
	return args.Error(0)
}

func (m *MockMemberService) RequestRemove(ctx context.Context, campusCode string, teamID uuid.UUID, userID, reason string) error {
	args := m.Called(ctx, campusCode, teamID, userID, reason)
	return args.Error(0)
}

type MockCompetitionService struct {
	mock.Mock
}

func (m *MockCompetitionService) CheckEligibility(ctx context.Context, campusCode string, teamID uuid.UUID, competitionID, token string) (*EligibilityResult, error) {
	args := m.Called(ctx, campusCode, teamID, competitionID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EligibilityResult), args.Error(1)
}
