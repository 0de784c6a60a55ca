package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProfileRepo(t *testing.T) (ProfileRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewProfileRepository(mock, zap.NewNop()), mock
}

func TestProfileRepository_FindByID(t *testing.T) {
	repo, mock := newProfileRepo(t)
	id := uuid.New()
	updated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, is_instructor, updated_at").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_instructor", "updated_at"}).
			AddRow(id, true, &updated))

	profile, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, id, profile.ID)
	assert.True(t, profile.IsInstructor)
	require.NotNil(t, profile.UpdatedAt)
	assert.True(t, updated.Equal(*profile.UpdatedAt))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newProfileRepo(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, is_instructor, updated_at").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_instructor", "updated_at"}))

	profile, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, profile)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_CreateDefault(t *testing.T) {
	t.Run("inserted", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		created, err := repo.CreateDefault(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, created)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already exists", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		created, err := repo.CreateDefault(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, created)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is not an error", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(id).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		created, err := repo.CreateDefault(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, created)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors propagate", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectExec("INSERT INTO profiles").
			WithArgs(id).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.CreateDefault(context.Background(), id)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProfileRepository_SetInstructor(t *testing.T) {
	repo, mock := newProfileRepo(t)
	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE profiles").
		WithArgs(id, true, now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "is_instructor", "updated_at"}).
			AddRow(id, true, &now))

	profile, err := repo.SetInstructor(context.Background(), id, true, now)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, profile.IsInstructor)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_DeleteWithHook(t *testing.T) {
	t.Run("commits after hook succeeds", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		called := false
		deleted, err := repo.DeleteWithHook(context.Background(), id, func(context.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.True(t, called)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when hook fails", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectRollback()

		deleted, err := repo.DeleteWithHook(context.Background(), id, func(context.Context) error {
			return errors.New("provider down")
		})
		assert.False(t, deleted)

		var hookErr *HookError
		require.ErrorAs(t, err, &hookErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile skips the hook", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		deleted, err := repo.DeleteWithHook(context.Background(), id, func(context.Context) error {
			t.Fatal("hook must not run")
			return nil
		})
		require.NoError(t, err)
		assert.False(t, deleted)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure after hook", func(t *testing.T) {
		repo, mock := newProfileRepo(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM profiles").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit().WillReturnError(errors.New("connection lost"))

		_, err := repo.DeleteWithHook(context.Background(), id, func(context.Context) error { return nil })

		var commitErr *CommitError
		require.ErrorAs(t, err, &commitErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
