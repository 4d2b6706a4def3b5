package postgres

import (
	"context"
	"database/sql"
)

type campusRepository struct {
	executor DBExecutor
}

func NewCampusRepository(db *sql.DB) *campusRepository {
	return &campusRepository{executor: db}
}

func (r *campusRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.executor.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM campus WHERE code = $1)", code).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
