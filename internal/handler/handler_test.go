package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/handler/middleware"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubConsumer struct {
	state broker.State
}

func (s stubConsumer) State() broker.State { return s.state }

type handlerMocks struct {
	teams        *service.MockTeamService
	members      *service.MockMemberService
	competitions *service.MockCompetitionService
}

func setupHandler(t *testing.T) (*Handler, handlerMocks) {
	t.Helper()
	m := handlerMocks{
		teams:        new(service.MockTeamService),
		members:      new(service.MockMemberService),
		competitions: new(service.MockCompetitionService),
	}
	t.Cleanup(func() {
		m.teams.AssertExpectations(t)
		m.members.AssertExpectations(t)
		m.competitions.AssertExpectations(t)
	})
	h := NewHandler(m.teams, m.members, m.competitions, stubConsumer{state: broker.StateRunning}, logger.NewNop())
	return h, m
}

func newRequest(method, target string, body any, vars map[string]string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	return mux.SetURLVars(req, vars)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestHandler_CreateTeam(t *testing.T) {
	vars := map[string]string{"campus_code": "C1"}

	t.Run("команда создается в статусе pending и возвращается 202", func(t *testing.T) {
		h, m := setupHandler(t)
		team := domain.NewTeam("C1", "Titans", "ttf", []string{"u1", "u2"})
		m.teams.On("CreateTeam", mock.Anything, service.CreateTeamInput{
			CampusCode:   "C1",
			Name:         "Titans",
			Abbreviation: "ttf",
			MemberIDs:    []string{"u1", "u2"},
		}).Return(team, nil)

		rec := httptest.NewRecorder()
		h.CreateTeam(rec, newRequest(http.MethodPost, "/", CreateTeamRequest{
			Name: "Titans", Abbreviation: "ttf", Members: []string{"u1", "u2"},
		}, vars))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		var resp AcceptedResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "approve_team", resp.RequestType)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, team.ID.String(), resp.TeamID)
		require.NotNil(t, resp.Team)
		assert.Equal(t, "TTF", resp.Team.Abbreviation)
		assert.Equal(t, "pending", resp.Team.Status)
		assert.Len(t, resp.Team.Members, 2)
	})

	t.Run("ошибка: невалидное тело запроса", func(t *testing.T) {
		h, _ := setupHandler(t)
		req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{")), vars)

		rec := httptest.NewRecorder()
		h.CreateTeam(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.CodeBadRequest, decodeError(t, rec).Code)
	})

	t.Run("ошибка: брокер недоступен дает 503", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("CreateTeam", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: %v", domain.ErrBrokerUnavailable, errors.New("dial tcp")))

		rec := httptest.NewRecorder()
		h.CreateTeam(rec, newRequest(http.MethodPost, "/", CreateTeamRequest{Name: "Titans", Abbreviation: "ttf"}, vars))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, domain.CodeBrokerUnavailable, decodeError(t, rec).Code)
	})
}

func TestHandler_GetTeam(t *testing.T) {
	teamID := uuid.New()

	t.Run("успешное получение", func(t *testing.T) {
		h, m := setupHandler(t)
		team := &domain.Team{
			ID:           teamID,
			Name:         "Titans",
			Abbreviation: "TTF",
			CampusCode:   "C1",
			Status:       domain.TeamStatusActive,
			CreatedAt:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			Members:      []domain.TeamMember{{TeamID: teamID, UserID: "u1"}},
		}
		m.teams.On("GetTeam", mock.Anything, "C1", teamID).Return(team, nil)

		rec := httptest.NewRecorder()
		h.GetTeam(rec, newRequest(http.MethodGet, "/", nil, map[string]string{"campus_code": "C1", "team_id": teamID.String()}))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp TeamResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "active", resp.Status)
		assert.Equal(t, "2024-01-10T12:00:00Z", resp.CreatedAt)
		assert.Equal(t, []TeamMemberResponse{{TeamID: teamID.String(), UserID: "u1"}}, resp.Members)
	})

	t.Run("ошибка: невалидный team_id", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := httptest.NewRecorder()
		h.GetTeam(rec, newRequest(http.MethodGet, "/", nil, map[string]string{"campus_code": "C1", "team_id": "nope"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ошибка: команда не найдена", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("GetTeam", mock.Anything, "C1", teamID).Return(nil, domain.NewNotFoundError("team"))

		rec := httptest.NewRecorder()
		h.GetTeam(rec, newRequest(http.MethodGet, "/", nil, map[string]string{"campus_code": "C1", "team_id": teamID.String()}))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "team not found", decodeError(t, rec).Message)
	})
}

func TestHandler_UpdateTeam(t *testing.T) {
	teamID := uuid.New()
	vars := map[string]string{"campus_code": "C1", "team_id": teamID.String()}
	input := service.UpdateTeamInput{CampusCode: "C1", TeamID: teamID, Name: "New", Abbreviation: "new"}

	t.Run("успешное обновление дает 204", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("UpdateTeam", mock.Anything, input).Return(&domain.Team{ID: teamID}, nil)

		rec := httptest.NewRecorder()
		h.UpdateTeam(rec, newRequest(http.MethodPut, "/", UpdateTeamRequest{Name: "New", Abbreviation: "new"}, vars))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("ошибка: конфликт имени дает 409", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("UpdateTeam", mock.Anything, input).Return(nil, domain.ErrTeamConflict)

		rec := httptest.NewRecorder()
		h.UpdateTeam(rec, newRequest(http.MethodPut, "/", UpdateTeamRequest{Name: "New", Abbreviation: "new"}, vars))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.CodeTeamConflict, decodeError(t, rec).Code)
	})
}

func TestHandler_DeleteTeam(t *testing.T) {
	teamID := uuid.New()
	vars := map[string]string{"campus_code": "C1", "team_id": teamID.String()}

	t.Run("запрос удаления принят с причиной", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("RequestDeletion", mock.Anything, "C1", teamID, "disbanded").Return(nil)

		rec := httptest.NewRecorder()
		h.DeleteTeam(rec, newRequest(http.MethodDelete, "/?reason=disbanded", nil, vars))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		var resp AcceptedResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "delete_team", resp.RequestType)
		assert.Nil(t, resp.Team)
	})

	t.Run("ошибка: закрытая команда дает 409", func(t *testing.T) {
		h, m := setupHandler(t)
		m.teams.On("RequestDeletion", mock.Anything, "C1", teamID, "").
			Return(domain.NewInvalidStateError("team is closed"))

		rec := httptest.NewRecorder()
		h.DeleteTeam(rec, newRequest(http.MethodDelete, "/", nil, vars))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.CodeInvalidState, decodeError(t, rec).Code)
	})
}

func TestHandler_RequestApproval(t *testing.T) {
	h, m := setupHandler(t)
	teamID := uuid.New()
	m.teams.On("RequestApproval", mock.Anything, "C1", teamID).Return(nil)

	rec := httptest.NewRecorder()
	h.RequestApproval(rec, newRequest(http.MethodPost, "/", nil, map[string]string{"campus_code": "C1", "team_id": teamID.String()}))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandler_Members(t *testing.T) {
	teamID := uuid.New()
	vars := map[string]string{"campus_code": "C1", "team_id": teamID.String()}

	t.Run("список участников", func(t *testing.T) {
		h, m := setupHandler(t)
		m.members.On("ListMembers", mock.Anything, "C1", teamID).
			Return([]domain.TeamMember{{TeamID: teamID, UserID: "u1"}, {TeamID: teamID, UserID: "u2"}}, nil)

		rec := httptest.NewRecorder()
		h.ListMembers(rec, newRequest(http.MethodGet, "/", nil, vars))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp MemberListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Members, 2)
	})

	t.Run("запрос на добавление принят", func(t *testing.T) {
		h, m := setupHandler(t)
		m.members.On("RequestAdd", mock.Anything, "C1", teamID, "u3").Return(nil)

		rec := httptest.NewRecorder()
		h.AddMember(rec, newRequest(http.MethodPost, "/", AddMemberRequest{UserID: "u3"}, vars))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		var resp AcceptedResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "add_team_member", resp.RequestType)
		assert.Equal(t, "u3", resp.UserID)
	})

	t.Run("ошибка: пользователь уже в команде", func(t *testing.T) {
		h, m := setupHandler(t)
		m.members.On("RequestAdd", mock.Anything, "C1", teamID, "u1").Return(domain.ErrMemberExists)

		rec := httptest.NewRecorder()
		h.AddMember(rec, newRequest(http.MethodPost, "/", AddMemberRequest{UserID: "u1"}, vars))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("ошибка: пользователь не прошел проверку", func(t *testing.T) {
		h, m := setupHandler(t)
		m.members.On("RequestAdd", mock.Anything, "C1", teamID, "ghost").
			Return(domain.NewInvalidMembersError("invalid users: ghost"))

		rec := httptest.NewRecorder()
		h.AddMember(rec, newRequest(http.MethodPost, "/", AddMemberRequest{UserID: "ghost"}, vars))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("запрос на удаление принят", func(t *testing.T) {
		h, m := setupHandler(t)
		m.members.On("RequestRemove", mock.Anything, "C1", teamID, "u2", "left").Return(nil)

		removeVars := map[string]string{"campus_code": "C1", "team_id": teamID.String(), "user_id": "u2"}
		rec := httptest.NewRecorder()
		h.RemoveMember(rec, newRequest(http.MethodDelete, "/?reason=left", nil, removeVars))

		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}

func TestHandler_CheckEligibility(t *testing.T) {
	teamID := uuid.New()
	vars := map[string]string{"campus_code": "C1", "team_id": teamID.String(), "competition_id": "hack-2024"}

	t.Run("токен пользователя передается сервису соревнований", func(t *testing.T) {
		h, m := setupHandler(t)
		m.competitions.On("CheckEligibility", mock.Anything, "C1", teamID, "hack-2024", "jwt-token").
			Return(&service.EligibilityResult{
				TeamID: teamID, CompetitionID: "hack-2024", Eligible: true, MinMembers: 2, MemberCount: 3,
			}, nil)

		req := newRequest(http.MethodGet, "/", nil, vars)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{UserID: "A1", Campus: "C1", Token: "jwt-token"}))
		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp EligibilityResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Eligible)
		assert.Equal(t, 3, resp.MemberCount)
	})

	t.Run("ошибка: нет аутентифицированного пользователя", func(t *testing.T) {
		h, _ := setupHandler(t)

		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, newRequest(http.MethodGet, "/", nil, vars))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ошибка: команда уже зарегистрирована", func(t *testing.T) {
		h, m := setupHandler(t)
		m.competitions.On("CheckEligibility", mock.Anything, "C1", teamID, "hack-2024", "t").
			Return(nil, domain.NewAlreadyRegisteredError("team already registered"))

		req := newRequest(http.MethodGet, "/", nil, vars)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), middleware.Principal{Token: "t"}))
		rec := httptest.NewRecorder()
		h.CheckEligibility(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		state      broker.State
		wantStatus int
		wantBody   string
	}{
		{name: "консьюмер работает", state: broker.StateRunning, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "консьюмер переподключается", state: broker.StateReconnecting, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "консьюмер остановлен", state: broker.StateStopped, wantStatus: http.StatusServiceUnavailable, wantBody: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(nil, nil, nil, stubConsumer{state: tt.state}, logger.NewNop())

			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			assert.Equal(t, string(tt.state), resp.Consumer)
		})
	}
}

func TestGetStatusCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.CodeBadRequest, http.StatusBadRequest},
		{domain.CodeUnauthorized, http.StatusUnauthorized},
		{domain.CodeForbidden, http.StatusForbidden},
		{domain.CodeNotFound, http.StatusNotFound},
		{domain.CodeTeamConflict, http.StatusConflict},
		{domain.CodeMemberExists, http.StatusConflict},
		{domain.CodeInvalidState, http.StatusConflict},
		{domain.CodeAlreadyRegistered, http.StatusConflict},
		{domain.CodeInvalidMembers, http.StatusUnprocessableEntity},
		{domain.CodeIneligible, http.StatusUnprocessableEntity},
		{domain.CodeBrokerUnavailable, http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, getStatusCode(tt.code))
		})
	}
}

func TestHandler_handleError_Unknown(t *testing.T) {
	h, _ := setupHandler(t)

	rec := httptest.NewRecorder()
	h.handleError(rec, errors.New("db is down"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", detail.Code)
	assert.NotContains(t, detail.Message, "db is down")
}
