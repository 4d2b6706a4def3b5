package approval

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/bagdasarian/campus-teams/internal/audit"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

// memStore - хранилище в памяти с транзакциями копированием: fn работает с копией,
// копия заменяет состояние только если fn вернул nil
type memStore struct {
	mu      sync.Mutex
	teams   map[uuid.UUID]domain.Team
	members map[uuid.UUID]map[string]bool

	commits   int
	rollbacks int
	writes    int
	failOn    string
}

func newMemStore() *memStore {
	return &memStore{
		teams:   map[uuid.UUID]domain.Team{},
		members: map[uuid.UUID]map[string]bool{},
	}
}

func (m *memStore) put(team *domain.Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = *team
	set := map[string]bool{}
	for _, member := range team.Members {
		set[member.UserID] = true
	}
	m.members[team.ID] = set
}

func (m *memStore) status(id uuid.UUID) domain.TeamStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teams[id].Status
}

func (m *memStore) memberIDs(id uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.members[id]))
	for userID := range m.members[id] {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	return ids
}

func (m *memStore) WithinTx(ctx context.Context, fn func(store repository.TransitionStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{
		parent:  m,
		teams:   map[uuid.UUID]domain.Team{},
		members: map[uuid.UUID]map[string]bool{},
	}
	for id, team := range m.teams {
		tx.teams[id] = team
	}
	for id, set := range m.members {
		copied := make(map[string]bool, len(set))
		for userID := range set {
			copied[userID] = true
		}
		tx.members[id] = copied
	}

	if err := fn(tx); err != nil {
		m.rollbacks++
		return err
	}
	m.teams, m.members = tx.teams, tx.members
	m.writes += tx.writes
	m.commits++
	return nil
}

type memTx struct {
	parent  *memStore
	teams   map[uuid.UUID]domain.Team
	members map[uuid.UUID]map[string]bool
	writes  int
}

var errInjected = errors.New("injected store failure")

func (tx *memTx) fail(op string) error {
	if tx.parent.failOn == op {
		return errInjected
	}
	return nil
}

func (tx *memTx) LockTeam(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error) {
	if err := tx.fail("lock"); err != nil {
		return nil, err
	}
	team, ok := tx.teams[id]
	if !ok || team.CampusCode != campusCode {
		return nil, domain.NewNotFoundError("team")
	}
	ids := make([]string, 0, len(tx.members[id]))
	for userID := range tx.members[id] {
		ids = append(ids, userID)
	}
	sort.Strings(ids)
	team.Members = nil
	for _, userID := range ids {
		team.Members = append(team.Members, domain.TeamMember{TeamID: id, UserID: userID})
	}
	return &team, nil
}

func (tx *memTx) SetStatus(ctx context.Context, id uuid.UUID, status domain.TeamStatus) error {
	if err := tx.fail("set_status"); err != nil {
		return err
	}
	team, ok := tx.teams[id]
	if !ok {
		return domain.NewNotFoundError("team")
	}
	team.Status = status
	tx.teams[id] = team
	tx.writes++
	return nil
}

func (tx *memTx) MemberExists(ctx context.Context, teamID uuid.UUID, userID string) (bool, error) {
	return tx.members[teamID][userID], nil
}

func (tx *memTx) AddMember(ctx context.Context, member domain.TeamMember) error {
	if err := tx.fail("add_member"); err != nil {
		return err
	}
	if tx.members[member.TeamID][member.UserID] {
		return domain.ErrMemberExists
	}
	if tx.members[member.TeamID] == nil {
		tx.members[member.TeamID] = map[string]bool{}
	}
	tx.members[member.TeamID][member.UserID] = true
	tx.writes++
	return nil
}

func (tx *memTx) RemoveMember(ctx context.Context, teamID uuid.UUID, userID string) error {
	if !tx.members[teamID][userID] {
		return domain.NewNotFoundError("member")
	}
	delete(tx.members[teamID], userID)
	tx.writes++
	return nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
	onEmit func()
}

func (r *recordingEmitter) Emit(_ context.Context, event audit.Event) error {
	if r.onEmit != nil {
		r.onEmit()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingEmitter) Events() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}
