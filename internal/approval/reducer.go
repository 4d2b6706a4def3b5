// Package approval применяет решения по запросам к командам и их составу.
package approval

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bagdasarian/campus-teams/internal/audit"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeRejected      Outcome = "rejected"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeAlreadyClosed Outcome = "already_closed"
	OutcomeAlreadyMember Outcome = "already_member"
	OutcomeNotMember     Outcome = "not_member"
)

type Result struct {
	TeamID      uuid.UUID
	RequestType domain.RequestType
	UserID      string
	TeamStatus  domain.TeamStatus
	Outcome     Outcome
	Message     string
}

// Reducer - единственный писатель статуса команды и ее состава после создания
type Reducer struct {
	tx      repository.TxManager
	emitter audit.Emitter
	log     *logger.Logger
}

func NewReducer(tx repository.TxManager, emitter audit.Emitter, log *logger.Logger) *Reducer {
	return &Reducer{tx: tx, emitter: emitter, log: log}
}

// Apply применяет одно сообщение в одной транзакции.
// События аудита отправляются только после успешного коммита.
func (r *Reducer) Apply(ctx context.Context, body []byte) (Result, error) {
	req, teamID, err := parseRequest(body)
	if err != nil {
		return Result{}, err
	}

	var (
		result Result
		events []audit.Event
	)

	err = r.tx.WithinTx(ctx, func(store repository.TransitionStore) error {
		team, err := store.LockTeam(ctx, teamID, req.CampusCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return newError(KindNotFound, err, "team %s in campus %s", teamID, req.CampusCode)
			}
			return newError(KindStore, err, "lock team %s", teamID)
		}

		t := &transition{ctx: ctx, store: store, team: team, req: req}
		if err := t.apply(); err != nil {
			return err
		}
		result, events = t.result, t.events
		return nil
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) {
			err = newError(KindStore, err, "apply %s to team %s", req.RequestType, teamID)
		}
		return Result{TeamID: teamID, RequestType: req.RequestType, UserID: req.UserID}, err
	}

	for _, event := range events {
		if err := r.emitter.Emit(ctx, event); err != nil {
			r.log.Critical("failed to emit audit event",
				"event_type", event.EventType,
				"team_id", teamID,
				"error", err,
			)
		}
	}

	return result, nil
}

func parseRequest(body []byte) (domain.Request, uuid.UUID, error) {
	var req domain.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return req, uuid.Nil, newError(KindMalformed, err, "decode message body")
	}

	var missing []string
	if req.TeamID == "" {
		missing = append(missing, "team_id")
	}
	if req.CampusCode == "" {
		missing = append(missing, "campus_code")
	}
	if req.RequestType == "" {
		missing = append(missing, "request_type")
	}
	if req.Status == "" {
		missing = append(missing, "status")
	}
	if req.RequestType.NeedsUser() && req.UserID == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return req, uuid.Nil, newError(KindValidation, nil, "missing required fields: %s", strings.Join(missing, ", "))
	}

	if !req.RequestType.Valid() {
		return req, uuid.Nil, newError(KindValidation, nil, "unknown request_type %q", req.RequestType)
	}

	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return req, uuid.Nil, newError(KindValidation, err, "team_id %q is not a valid identifier", req.TeamID)
	}

	return req, teamID, nil
}
