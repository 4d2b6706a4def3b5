package approval

import (
	"context"
	"fmt"

	"github.com/bagdasarian/campus-teams/internal/audit"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/repository"
)

// transition держит состояние обработки одного сообщения внутри транзакции
type transition struct {
	ctx   context.Context
	store repository.TransitionStore
	team  *domain.Team
	req   domain.Request

	result Result
	events []audit.Event
}

func (t *transition) apply() error {
	t.result = Result{
		TeamID:      t.team.ID,
		RequestType: t.req.RequestType,
		UserID:      t.req.UserID,
		TeamStatus:  t.team.Status,
	}

	switch t.req.RequestType {
	case domain.RequestApproveTeam:
		return t.approveTeam()
	case domain.RequestDeleteTeam:
		return t.deleteTeam()
	case domain.RequestAddTeamMember:
		return t.addMember()
	case domain.RequestRemoveTeamMember:
		return t.removeMember()
	}
	return newError(KindValidation, nil, "unknown request_type %q", t.req.RequestType)
}

// approveTeam и остальные ветки сначала проверяют статус команды, затем решение
func (t *transition) approveTeam() error {
	if t.team.Status != domain.TeamStatusPending {
		return newError(KindInvalidTransition, nil, "team %s is %s, approval requires pending", t.team.ID, t.team.Status)
	}

	switch t.req.Status {
	case domain.RequestStatusApproved:
	case domain.RequestStatusRejected:
		if err := t.setStatus(domain.TeamStatusClosed); err != nil {
			return err
		}
		t.done(OutcomeRejected, "team creation rejected")
		return nil
	default:
		t.ignore()
		return nil
	}

	if err := t.setStatus(domain.TeamStatusActive); err != nil {
		return err
	}
	t.emit(audit.EventTeamCreated, audit.OperationCreate, nil, t.team)
	t.done(OutcomeApplied, "team activated")
	return nil
}

func (t *transition) deleteTeam() error {
	if t.team.Status == domain.TeamStatusClosed {
		if t.req.Status == domain.RequestStatusApproved {
			t.done(OutcomeAlreadyClosed, "team is already closed")
			return nil
		}
		return newError(KindInvalidTransition, nil, "team %s is closed, %s deletion decision cannot apply", t.team.ID, t.req.Status)
	}

	if t.settled("team deletion rejected") {
		return nil
	}

	before := cloneTeam(t.team)
	if err := t.setStatus(domain.TeamStatusClosed); err != nil {
		return err
	}
	t.emit(audit.EventTeamDeleted, audit.OperationDelete, before, t.team)
	t.done(OutcomeApplied, "team closed")
	return nil
}

func (t *transition) addMember() error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if t.settled("member addition rejected") {
		return nil
	}

	exists, err := t.store.MemberExists(t.ctx, t.team.ID, t.req.UserID)
	if err != nil {
		return newError(KindStore, err, "check member %s", t.req.UserID)
	}
	if exists {
		t.done(OutcomeAlreadyMember, "user is already a member")
		return nil
	}

	before := cloneTeam(t.team)
	member := domain.TeamMember{TeamID: t.team.ID, UserID: t.req.UserID}
	if err := t.store.AddMember(t.ctx, member); err != nil {
		return newError(KindStore, err, "add member %s", t.req.UserID)
	}
	t.team.Members = append(t.team.Members, member)

	t.emit(audit.EventMembersUpdated, audit.OperationUpdate, before, t.team)
	t.done(OutcomeApplied, "member added")
	return nil
}

func (t *transition) removeMember() error {
	if err := t.requireActive(); err != nil {
		return err
	}
	if t.settled("member removal rejected") {
		return nil
	}

	exists, err := t.store.MemberExists(t.ctx, t.team.ID, t.req.UserID)
	if err != nil {
		return newError(KindStore, err, "check member %s", t.req.UserID)
	}
	if !exists {
		t.done(OutcomeNotMember, "user is not a member")
		return nil
	}

	before := cloneTeam(t.team)
	if err := t.store.RemoveMember(t.ctx, t.team.ID, t.req.UserID); err != nil {
		return newError(KindStore, err, "remove member %s", t.req.UserID)
	}
	members := t.team.Members[:0:0]
	for _, m := range t.team.Members {
		if m.UserID != t.req.UserID {
			members = append(members, m)
		}
	}
	t.team.Members = members

	t.emit(audit.EventMembersUpdated, audit.OperationUpdate, before, t.team)
	t.done(OutcomeApplied, "member removed")
	return nil
}

// settled закрывает обработку решений кроме approved: rejected фиксируется, прочие статусы игнорируются
func (t *transition) settled(rejectedMessage string) bool {
	switch t.req.Status {
	case domain.RequestStatusApproved:
		return false
	case domain.RequestStatusRejected:
		t.done(OutcomeRejected, rejectedMessage)
	default:
		t.ignore()
	}
	return true
}

func (t *transition) ignore() {
	t.done(OutcomeIgnored, "decision status %q does not change state", t.req.Status)
}

func (t *transition) requireActive() error {
	if t.team.Status != domain.TeamStatusActive {
		return newError(KindInvalidTransition, nil, "team %s is %s, membership changes require active", t.team.ID, t.team.Status)
	}
	return nil
}

func (t *transition) setStatus(status domain.TeamStatus) error {
	if !t.team.Status.CanTransitionTo(status) {
		return newError(KindInvalidTransition, nil, "team %s cannot move from %s to %s", t.team.ID, t.team.Status, status)
	}
	if err := t.store.SetStatus(t.ctx, t.team.ID, status); err != nil {
		return newError(KindStore, err, "set status of team %s", t.team.ID)
	}
	t.team.Status = status
	t.result.TeamStatus = status
	return nil
}

func (t *transition) emit(eventType string, op audit.OperationType, before, after *domain.Team) {
	t.events = append(t.events, audit.NewEvent(audit.Params{
		EventType:     eventType,
		OperationType: op,
		EntityType:    audit.EntityTeam,
		EntityID:      t.team.ID.String(),
		CampusCode:    t.team.CampusCode,
		OldData:       audit.TeamSnapshot(before),
		NewData:       audit.TeamSnapshot(after),
	}))
}

func (t *transition) done(outcome Outcome, format string, args ...any) {
	t.result.Outcome = outcome
	t.result.Message = fmt.Sprintf(format, args...)
}

func cloneTeam(team *domain.Team) *domain.Team {
	c := *team
	c.Members = append([]domain.TeamMember(nil), team.Members...)
	return &c
}
