package server

import (
	"net/http"

	"github.com/bagdasarian/campus-teams/internal/handler"
	"github.com/bagdasarian/campus-teams/internal/handler/middleware"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/gorilla/mux"
)

func NewRouter(h *handler.Handler, auth *middleware.Auth, log *logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log))

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1/campus/{campus_code}").Subrouter()
	api.Use(auth.Authenticate, auth.CampusAccess)

	api.HandleFunc("/teams", h.ListTeams).Methods(http.MethodGet)
	api.HandleFunc("/teams", h.CreateTeam).Methods(http.MethodPost)
	api.HandleFunc("/teams/{team_id}", h.GetTeam).Methods(http.MethodGet)
	api.HandleFunc("/teams/{team_id}", h.UpdateTeam).Methods(http.MethodPut)
	api.HandleFunc("/teams/{team_id}", auth.RequireAdmin(h.DeleteTeam)).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{team_id}/approval-request", h.RequestApproval).Methods(http.MethodPost)

	api.HandleFunc("/teams/{team_id}/members", h.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/teams/{team_id}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/teams/{team_id}/members/{user_id}", h.RemoveMember).Methods(http.MethodDelete)

	api.HandleFunc("/teams/{team_id}/competitions/{competition_id}/eligibility", h.CheckEligibility).Methods(http.MethodPost)

	return router
}
