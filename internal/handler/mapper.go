package handler

import (
	"time"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/service"
)

func domainMembersToHTTP(members []domain.TeamMember) []TeamMemberResponse {
	result := make([]TeamMemberResponse, 0, len(members))
	for _, member := range members {
		result = append(result, TeamMemberResponse{
			TeamID: member.TeamID.String(),
			UserID: member.UserID,
		})
	}
	return result
}

func domainTeamToHTTP(team *domain.Team) TeamResponse {
	return TeamResponse{
		ID:           team.ID.String(),
		Name:         team.Name,
		Abbreviation: team.Abbreviation,
		CampusCode:   team.CampusCode,
		Status:       string(team.Status),
		CreatedAt:    team.CreatedAt.UTC().Format(time.RFC3339),
		Members:      domainMembersToHTTP(team.Members),
	}
}

func domainTeamsToHTTP(teams []*domain.Team) []TeamResponse {
	result := make([]TeamResponse, 0, len(teams))
	for _, team := range teams {
		result = append(result, domainTeamToHTTP(team))
	}
	return result
}

func httpCreateTeamToInput(campusCode string, req CreateTeamRequest) service.CreateTeamInput {
	return service.CreateTeamInput{
		CampusCode:   campusCode,
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		MemberIDs:    req.Members,
	}
}

func eligibilityToHTTP(result *service.EligibilityResult) EligibilityResponse {
	return EligibilityResponse{
		TeamID:        result.TeamID.String(),
		CompetitionID: result.CompetitionID,
		Eligible:      result.Eligible,
		Message:       result.Message,
		MinMembers:    result.MinMembers,
		MemberCount:   result.MemberCount,
	}
}
