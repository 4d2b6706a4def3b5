package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestType string

const (
	RequestApproveTeam      RequestType = "approve_team"
	RequestDeleteTeam       RequestType = "delete_team"
	RequestAddTeamMember    RequestType = "add_team_member"
	RequestRemoveTeamMember RequestType = "remove_team_member"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestApproveTeam, RequestDeleteTeam, RequestAddTeamMember, RequestRemoveTeamMember:
		return true
	}
	return false
}

// NeedsUser - запросы по участникам обязаны нести user_id
func (t RequestType) NeedsUser() bool {
	return t == RequestAddTeamMember || t == RequestRemoveTeamMember
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request - конверт сообщения: запрос на переход и, после решения, само решение
type Request struct {
	TeamID      string        `json:"team_id"`
	CampusCode  string        `json:"campus_code"`
	RequestType RequestType   `json:"request_type"`
	Status      RequestStatus `json:"status"`
	UserID      string        `json:"user_id,omitempty"`
	Reason      string        `json:"reason,omitempty"`
	CreatedAt   string        `json:"created_at"`
}

// NewRequest создает команду в статусе pending
func NewRequest(requestType RequestType, teamID uuid.UUID, campusCode, userID, reason string) Request {
	return Request{
		TeamID:      teamID.String(),
		CampusCode:  campusCode,
		RequestType: requestType,
		Status:      RequestStatusPending,
		UserID:      userID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// Decide возвращает копию запроса с принятым решением
func (r Request) Decide(status RequestStatus, reason string) Request {
	r.Status = status
	if reason != "" {
		r.Reason = reason
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return r
}
