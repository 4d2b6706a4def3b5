package handler

import (
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/handler/middleware"
	"github.com/gorilla/mux"
)

func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	id, err := teamID(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		h.handleError(w, domain.ErrUnauthorized)
		return
	}

	result, err := h.competitionService.CheckEligibility(
		r.Context(), campusCode(r), id, mux.Vars(r)["competition_id"], principal.Token)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eligibilityToHTTP(result))
}
