package handler

import (
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/service"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context(), campusCode(r))
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TeamListResponse{Teams: domainTeamsToHTTP(teams)})
}

// CreateTeam создает команду в статусе pending, активирует ее консьюмер после одобрения
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), httpCreateTeamToInput(campusCode(r), req))
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := accepted(domain.RequestApproveTeam, team.ID, "", "team created, pending approval")
	teamResp := domainTeamToHTTP(team)
	resp.Team = &teamResp
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), campusCode(r), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainTeamToHTTP(team))
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req UpdateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, err)
		return
	}

	_, err = h.teamService.UpdateTeam(r.Context(), service.UpdateTeamInput{
		CampusCode:   campusCode(r),
		TeamID:       id,
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.teamService.RequestDeletion(r.Context(), campusCode(r), id, r.URL.Query().Get("reason")); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, accepted(domain.RequestDeleteTeam, id, "", "team deletion pending approval"))
}

// RequestApproval повторно отправляет запрос на одобрение, если первая публикация не дошла
func (h *Handler) RequestApproval(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.teamService.RequestApproval(r.Context(), campusCode(r), id); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, accepted(domain.RequestApproveTeam, id, "", "team approval requested"))
}
