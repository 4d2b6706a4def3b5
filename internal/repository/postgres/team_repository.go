package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/google/uuid"
)

const teamColumns = "id, name, abbreviation, campus_code, status, created_at"

type teamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *teamRepository {
	return &teamRepository{db: db}
}

// Create сохраняет команду вместе с начальным составом в одной транзакции
func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO teams (id, name, abbreviation, campus_code, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		team.ID.String(),
		team.Name,
		team.Abbreviation,
		team.CampusCode,
		string(team.Status),
		team.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTeamConflict
		}
		return err
	}

	members := NewMemberRepositoryWithTx(tx)
	for _, member := range team.Members {
		if err := members.Add(ctx, member); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID, campusCode string) (*domain.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE id = $1 AND campus_code = $2
	`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id.String(), campusCode))
	if err != nil {
		return nil, err
	}

	team.Members, err = NewMemberRepository(r.db).ListByTeamID(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	return team, nil
}

func (r *teamRepository) ListByCampus(ctx context.Context, campusCode string) ([]*domain.Team, error) {
	query := `
		SELECT t.id, t.name, t.abbreviation, t.campus_code, t.status, t.created_at, m.user_id
		FROM teams t
		LEFT JOIN team_members m ON m.team_id = t.id
		WHERE t.campus_code = $1
		ORDER BY t.created_at, t.id, m.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, campusCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*domain.Team, 0)
	var current *domain.Team
	for rows.Next() {
		team := &domain.Team{}
		var status string
		var userID sql.NullString
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Abbreviation,
			&team.CampusCode,
			&status,
			&team.CreatedAt,
			&userID,
		)
		if err != nil {
			return nil, err
		}
		team.Status = domain.TeamStatus(status)

		if current == nil || current.ID != team.ID {
			team.Members = make([]domain.TeamMember, 0)
			teams = append(teams, team)
			current = team
		}
		if userID.Valid {
			current.Members = append(current.Members, domain.TeamMember{TeamID: current.ID, UserID: userID.String})
		}
	}

	return teams, rows.Err()
}

func (r *teamRepository) ExistsConflict(ctx context.Context, campusCode, name, abbreviation string, excludeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM teams
			WHERE campus_code = $1 AND (name = $2 OR abbreviation = $3) AND id <> $4
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, campusCode, name, abbreviation, excludeID.String()).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateDetails меняет только имя и аббревиатуру, campus_code и status не трогает
func (r *teamRepository) UpdateDetails(ctx context.Context, team *domain.Team) error {
	query := `
		UPDATE teams
		SET name = $3, abbreviation = $4
		WHERE id = $1 AND campus_code = $2
	`

	result, err := r.db.ExecContext(ctx, query, team.ID.String(), team.CampusCode, team.Name, team.Abbreviation)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTeamConflict
		}
		return err
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

func (r *teamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	return NewMemberRepository(r.db).ListByTeamID(ctx, teamID)
}

func scanTeam(row *sql.Row) (*domain.Team, error) {
	team := &domain.Team{}
	var status string
	err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Abbreviation,
		&team.CampusCode,
		&status,
		&team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("team")
		}
		return nil, fmt.Errorf("scan team: %w", err)
	}
	team.Status = domain.TeamStatus(status)
	return team, nil
}
