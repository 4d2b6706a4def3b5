package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AbbreviationLength - фиксированная длина аббревиатуры команды
const AbbreviationLength = 3

type TeamStatus string

const (
	TeamStatusPending TeamStatus = "pending"
	TeamStatusActive  TeamStatus = "active"
	TeamStatusClosed  TeamStatus = "closed"
)

// transitions перечисляет единственные допустимые переходы, closed - терминальный
var transitions = map[TeamStatus][]TeamStatus{
	TeamStatusPending: {TeamStatusActive, TeamStatusClosed},
	TeamStatusActive:  {TeamStatusClosed},
}

func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusPending, TeamStatusActive, TeamStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo сообщает, разрешен ли переход из s в next
func (s TeamStatus) CanTransitionTo(next TeamStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Campus struct {
	Code string
}

type Team struct {
	ID           uuid.UUID
	Name         string
	Abbreviation string
	CampusCode   string
	Status       TeamStatus
	CreatedAt    time.Time
	Members      []TeamMember
}

type TeamMember struct {
	TeamID uuid.UUID
	UserID string
}

// NewTeam собирает новую команду в статусе pending
func NewTeam(campusCode, name, abbreviation string, memberIDs []string) *Team {
	team := &Team{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Abbreviation: NormalizeAbbreviation(abbreviation),
		CampusCode:   campusCode,
		Status:       TeamStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	seen := make(map[string]struct{}, len(memberIDs))
	team.Members = make([]TeamMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		team.Members = append(team.Members, TeamMember{TeamID: team.ID, UserID: id})
	}

	return team
}

func NormalizeAbbreviation(abbreviation string) string {
	return strings.ToUpper(strings.TrimSpace(abbreviation))
}

// ValidateDetails проверяет имя и аббревиатуру до записи в хранилище
func ValidateDetails(name, abbreviation string) error {
	if strings.TrimSpace(name) == "" {
		return NewBadRequestError("name is required")
	}
	if len(name) > 100 {
		return NewBadRequestError("name must be at most 100 characters")
	}
	if len([]rune(NormalizeAbbreviation(abbreviation))) != AbbreviationLength {
		return NewBadRequestError("abbreviation must be exactly 3 characters")
	}
	return nil
}

func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
