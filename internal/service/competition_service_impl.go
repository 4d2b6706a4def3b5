package service

import (
	"context"
	"fmt"

	"github.com/bagdasarian/campus-teams/internal/clients"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

type competitionService struct {
	teamRepo repository.TeamRepository
	checker  clients.EligibilityChecker
}

func NewCompetitionService(teamRepo repository.TeamRepository, checker clients.EligibilityChecker) CompetitionService {
	return &competitionService{teamRepo: teamRepo, checker: checker}
}

// CheckEligibility проверяет, может ли активная команда записаться на соревнование
func (s *competitionService) CheckEligibility(ctx context.Context, campusCode string, teamID uuid.UUID, competitionID, token string) (*EligibilityResult, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID, campusCode)
	if err != nil {
		return nil, err
	}
	if team.Status != domain.TeamStatusActive {
		return nil, domain.NewInvalidStateError("team %s is %s, only active teams can register", team.ID, team.Status)
	}

	eligibility := s.checker.CheckEligibility(ctx, team.ID, competitionID, token)
	if !eligibility.Eligible {
		message := eligibility.Message
		if message == "" {
			message = "team cannot be registered for this competition"
		}
		return nil, domain.NewIneligibleError(message)
	}

	for _, registered := range eligibility.RegisteredTeams {
		if registered == team.ID.String() {
			return nil, domain.NewAlreadyRegisteredError("team is already registered for this competition")
		}
	}

	if eligibility.MinMembers > 0 && len(team.Members) < eligibility.MinMembers {
		return nil, domain.NewIneligibleError(fmt.Sprintf(
			"team has %d members, competition requires at least %d", len(team.Members), eligibility.MinMembers))
	}

	return &EligibilityResult{
		TeamID:        team.ID,
		CompetitionID: competitionID,
		Eligible:      true,
		Message:       eligibility.Message,
		MinMembers:    eligibility.MinMembers,
		MemberCount:   len(team.Members),
	}, nil
}
