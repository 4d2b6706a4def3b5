package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bagdasarian/campus-teams/internal/config"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/google/uuid"
)

type Eligibility struct {
	Eligible        bool
	Message         string
	MinMembers      int
	RegisteredTeams []string
}

type EligibilityChecker interface {
	CheckEligibility(ctx context.Context, teamID uuid.UUID, competitionID, token string) Eligibility
}

type eligibilityRequest struct {
	TeamID string `json:"team_id"`
}

type eligibilityResponse struct {
	CanBeInscribed bool   `json:"can_be_inscribed"`
	Message        string `json:"message"`
	Data           *struct {
		MinMembers      int      `json:"min_members"`
		RegisteredTeams []string `json:"registered_teams"`
	} `json:"data"`
}

// CompetitionsClient спрашивает сервис соревнований, можно ли записать команду
type CompetitionsClient struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewCompetitionsClient(cfg *config.Config, log *logger.Logger) *CompetitionsClient {
	return &CompetitionsClient{
		baseURL:    cfg.Services.CompetitionsURL,
		httpClient: &http.Client{Timeout: cfg.Services.Timeout},
		log:        log,
	}
}

func NewCompetitionsClientWithHTTP(baseURL string, httpClient *http.Client, log *logger.Logger) *CompetitionsClient {
	return &CompetitionsClient{baseURL: baseURL, httpClient: httpClient, log: log}
}

// CheckEligibility считает таймауты и ответы не 2xx отказом
func (c *CompetitionsClient) CheckEligibility(ctx context.Context, teamID uuid.UUID, competitionID, token string) Eligibility {
	endpoint := strings.TrimRight(c.baseURL, "/") + "/" + url.PathEscape(competitionID) + "/eligibility"

	reqBytes, err := json.Marshal(eligibilityRequest{TeamID: teamID.String()})
	if err != nil {
		return Eligibility{Message: fmt.Sprintf("marshal request: %v", err)}
	}

	var resp eligibilityResponse
	if err := postJSON(ctx, c.httpClient, endpoint, token, reqBytes, &resp); err != nil {
		c.log.Warn("eligibility check failed",
			"team_id", teamID,
			"competition_id", competitionID,
			"error", err,
		)
		return Eligibility{Message: "competition service unavailable"}
	}

	out := Eligibility{Eligible: resp.CanBeInscribed, Message: resp.Message}
	if resp.Data != nil {
		out.MinMembers = resp.Data.MinMembers
		out.RegisteredTeams = resp.Data.RegisteredTeams
	}
	return out
}
