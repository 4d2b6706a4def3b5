package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
)

type txManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *txManager {
	return &txManager{db: db}
}

func (m *txManager) WithinTx(ctx context.Context, fn func(store repository.TransitionStore) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newTransitionStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type transitionStore struct {
	tx      *sql.Tx
	members *memberRepository
}

func newTransitionStore(tx *sql.Tx) *transitionStore {
	return &transitionStore{tx: tx, members: NewMemberRepositoryWithTx(tx)}
}

func (s *transitionStore) LockTeam(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE id = $1 AND campus_code = $2
		FOR UPDATE
	`

	team, err := scanTeam(s.tx.QueryRowContext(ctx, query, id.String(), campusCode))
	if err != nil {
		return nil, err
	}

	team.Members, err = s.members.ListByTeamID(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *transitionStore) SetStatus(ctx context.Context, id uuid.UUID, status domain.TeamStatus) error {
	result, err := s.tx.ExecContext(ctx, "UPDATE teams SET status = $2 WHERE id = $1", id.String(), string(status))
	if err != nil {
		return fmt.Errorf("update team status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.NewNotFoundError("team")
	}
	return nil
}

func (s *transitionStore) MemberExists(ctx context.Context, teamID uuid.UUID, userID string) (bool, error) {
	return s.members.Exists(ctx, teamID, userID)
}

func (s *transitionStore) AddMember(ctx context.Context, member domain.TeamMember) error {
	return s.members.Add(ctx, member)
}

func (s *transitionStore) RemoveMember(ctx context.Context, teamID uuid.UUID, userID string) error {
	return s.members.Remove(ctx, teamID, userID)
}
