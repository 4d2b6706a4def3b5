package handler

import (
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/gorilla/mux"
)

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), campusCode(r), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MemberListResponse{Members: domainMembersToHTTP(members)})
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		h.handleError(w, err)
		return
	}

	if err := h.memberService.RequestAdd(r.Context(), campusCode(r), id, req.UserID); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, accepted(domain.RequestAddTeamMember, id, req.UserID, "member addition pending approval"))
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}
	userID := mux.Vars(r)["user_id"]

	if err := h.memberService.RequestRemove(r.Context(), campusCode(r), id, userID, r.URL.Query().Get("reason")); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, accepted(domain.RequestRemoveTeamMember, id, userID, "member removal pending approval"))
}
