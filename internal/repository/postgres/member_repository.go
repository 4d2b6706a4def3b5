package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

type memberRepository struct {
	executor DBExecutor
}

func NewMemberRepository(db *sql.DB) *memberRepository {
	return &memberRepository{executor: db}
}

func NewMemberRepositoryWithTx(tx *sql.Tx) *memberRepository {
	return &memberRepository{executor: tx}
}

func (r *memberRepository) ListByTeamID(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	query := `
		SELECT team_id, user_id
		FROM team_members
		WHERE team_id = $1
		ORDER BY user_id
	`

	rows, err := r.executor.QueryContext(ctx, query, teamID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(&member.TeamID, &member.UserID); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *memberRepository) Exists(ctx context.Context, teamID uuid.UUID, userID string) (bool, error) {
	var exists bool
	err := r.executor.QueryRowContext(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)",
		teamID.String(),
		userID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *memberRepository) Add(ctx context.Context, member domain.TeamMember) error {
	_, err := r.executor.ExecContext(
		ctx,
		"INSERT INTO team_members (team_id, user_id) VALUES ($1, $2)",
		member.TeamID.String(),
		member.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrMemberExists
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *memberRepository) Remove(ctx context.Context, teamID uuid.UUID, userID string) error {
	result, err := r.executor.ExecContext(
		ctx,
		"DELETE FROM team_members WHERE team_id = $1 AND user_id = $2",
		teamID.String(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.NewNotFoundError("member")
	}

	return nil
}
