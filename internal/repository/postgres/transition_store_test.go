package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithinTx(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()

	t.Run("переход статуса фиксируется коммитом", func(t *testing.T) {
		db, mock := setupMockDB(t)
		manager := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WithArgs(teamID.String(), "C").
			WillReturnRows(sqlmock.NewRows(teamRowColumns).
				AddRow(teamID.String(), "Titans", "TTF", "C", "pending", time.Now()))
		mock.ExpectQuery("SELECT team_id, user_id").
			WithArgs(teamID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"team_id", "user_id"}).AddRow(teamID.String(), "u1"))
		mock.ExpectExec("UPDATE teams SET status").
			WithArgs(teamID.String(), "active").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := manager.WithinTx(ctx, func(store repository.TransitionStore) error {
			team, err := store.LockTeam(ctx, teamID, "C")
			if err != nil {
				return err
			}
			assert.Equal(t, domain.TeamStatusPending, team.Status)
			assert.Equal(t, []string{"u1"}, team.MemberIDs())
			return store.SetStatus(ctx, teamID, domain.TeamStatusActive)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка внутри fn откатывает транзакцию", func(t *testing.T) {
		db, mock := setupMockDB(t)
		manager := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO team_members").
			WithArgs(teamID.String(), "u3").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectRollback()

		expectedError := errors.New("boom")
		err := manager.WithinTx(ctx, func(store repository.TransitionStore) error {
			if err := store.AddMember(ctx, domain.TeamMember{TeamID: teamID, UserID: "u3"}); err != nil {
				return err
			}
			return expectedError
		})

		assert.Equal(t, expectedError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка коммита возвращается вызывающему", func(t *testing.T) {
		db, mock := setupMockDB(t)
		manager := NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		err := manager.WithinTx(ctx, func(store repository.TransitionStore) error { return nil })

		require.Error(t, err)
		assert.Contains(t, err.Error(), "commit transaction")
	})
}

func TestTransitionStore_Members(t *testing.T) {
	ctx := context.Background()
	teamID := uuid.New()

	t.Run("проверка существования участника", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(teamID.String(), "u1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectCommit()

		err := NewTxManager(db).WithinTx(ctx, func(store repository.TransitionStore) error {
			exists, err := store.MemberExists(ctx, teamID, "u1")
			assert.True(t, exists)
			return err
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("повторная вставка дает ErrMemberExists", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO team_members").WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		err := NewTxManager(db).WithinTx(ctx, func(store repository.TransitionStore) error {
			return store.AddMember(ctx, domain.TeamMember{TeamID: teamID, UserID: "u1"})
		})

		assert.True(t, errors.Is(err, domain.ErrMemberExists))
	})

	t.Run("удаление отсутствующего участника дает NOT_FOUND", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM team_members").
			WithArgs(teamID.String(), "u9").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := NewTxManager(db).WithinTx(ctx, func(store repository.TransitionStore) error {
			return store.RemoveMember(ctx, teamID, "u9")
		})

		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("успешное удаление участника", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM team_members").
			WithArgs(teamID.String(), "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewTxManager(db).WithinTx(ctx, func(store repository.TransitionStore) error {
			return store.RemoveMember(ctx, teamID, "u1")
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
