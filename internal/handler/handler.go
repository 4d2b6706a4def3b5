package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ConsumerState сообщает состояние консьюмера решений для /health
type ConsumerState interface {
	State() broker.State
}

type Handler struct {
	teamService        service.TeamService
	memberService      service.MemberService
	competitionService service.CompetitionService
	consumer           ConsumerState
	log                *logger.Logger
}

func NewHandler(
	teamService service.TeamService,
	memberService service.MemberService,
	competitionService service.CompetitionService,
	consumer ConsumerState,
	log *logger.Logger,
) *Handler {
	return &Handler{
		teamService:        teamService,
		memberService:      memberService,
		competitionService: competitionService,
		consumer:           consumer,
		log:                log,
	}
}

func campusCode(r *http.Request) string {
	return mux.Vars(r)["campus_code"]
}

func teamID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["team_id"])
	if err != nil {
		return uuid.Nil, domain.NewBadRequestError("team_id must be a valid UUID")
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewBadRequestError("invalid request body")
	}
	return nil
}

func accepted(requestType domain.RequestType, teamID uuid.UUID, userID, message string) AcceptedResponse {
	return AcceptedResponse{
		Message:     message,
		RequestType: string(requestType),
		Status:      string(domain.RequestStatusPending),
		TeamID:      teamID.String(),
		UserID:      userID,
	}
}
