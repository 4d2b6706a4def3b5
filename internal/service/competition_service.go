package service

import (
	"context"

	"github.com/google/uuid"
)

type EligibilityResult struct {
	TeamID        uuid.UUID
	CompetitionID string
	Eligible      bool
	Message       string
	MinMembers    int
	MemberCount   int
}

type CompetitionService interface {
	CheckEligibility(ctx context.Context, campusCode string, teamID uuid.UUID, competitionID, token string) (*EligibilityResult, error)
}
