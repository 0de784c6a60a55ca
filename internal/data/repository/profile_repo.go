package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"instructor-portal/internal/data/entity"
	"instructor-portal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

// HookError means the callback run inside a delete transaction failed and the delete was rolled back
type HookError struct {
	Err error
}

func (e *HookError) Error() string { return "delete hook failed: " + e.Err.Error() }
func (e *HookError) Unwrap() error { return e.Err }

// CommitError means the callback succeeded but the transaction could not be committed
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string { return "commit failed: " + e.Err.Error() }
func (e *CommitError) Unwrap() error { return e.Err }

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	FindAll(ctx context.Context) ([]*entity.Profile, error)
	// CreateDefault inserts a non-instructor profile; created is false when it already existed
	CreateDefault(ctx context.Context, id uuid.UUID) (created bool, err error)
	SetInstructor(ctx context.Context, id uuid.UUID, isInstructor bool, at time.Time) (*entity.Profile, error)
	// DeleteWithHook deletes the profile and runs hook before committing.
	// A hook error rolls the delete back.
	DeleteWithHook(ctx context.Context, id uuid.UUID, hook func(ctx context.Context) error) (deleted bool, err error)
}

type profileRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProfileRepository(db database.PgxIface, log *zap.Logger) ProfileRepository {
	return &profileRepository{
		db:  db,
		log: log.With(zap.String("repository", "profile")),
	}
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	query := `
		SELECT id, is_instructor, updated_at
		FROM profiles
		WHERE id = $1
	`

	var profile entity.Profile
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.IsInstructor,
		&profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find profile by ID",
			zap.Error(err),
			zap.String("profile_id", id.String()),
		)
		return nil, fmt.Errorf("find profile by ID %s: %w", id, err)
	}

	return &profile, nil
}

func (r *profileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	query := `
		SELECT id, is_instructor, updated_at
		FROM profiles
		ORDER BY updated_at DESC NULLS LAST, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to list profiles", zap.Error(err))
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*entity.Profile
	for rows.Next() {
		var profile entity.Profile
		if err := rows.Scan(&profile.ID, &profile.IsInstructor, &profile.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func (r *profileRepository) CreateDefault(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		INSERT INTO profiles (id, is_instructor, updated_at)
		VALUES ($1, FALSE, NULL)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, id)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		// lost a race with another writer, the row exists now
		return false, nil
	}
	if err != nil {
		r.log.Error("Failed to create profile",
			zap.Error(err),
			zap.String("profile_id", id.String()),
		)
		return false, fmt.Errorf("create profile %s: %w", id, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *profileRepository) SetInstructor(ctx context.Context, id uuid.UUID, isInstructor bool, at time.Time) (*entity.Profile, error) {
	query := `
		UPDATE profiles
		SET is_instructor = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, is_instructor, updated_at
	`

	var profile entity.Profile
	err := r.db.QueryRow(ctx, query, id, isInstructor, at).Scan(
		&profile.ID,
		&profile.IsInstructor,
		&profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update profile",
			zap.Error(err),
			zap.String("profile_id", id.String()),
			zap.Bool("is_instructor", isInstructor),
		)
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}

	return &profile, nil
}

func (r *profileRepository) DeleteWithHook(ctx context.Context, id uuid.UUID, hook func(ctx context.Context) error) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin delete profile %s: %w", id, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	result, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete profile",
			zap.Error(err),
			zap.String("profile_id", id.String()),
		)
		return false, fmt.Errorf("delete profile %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return false, nil
	}

	if hook != nil {
		if err := hook(ctx); err != nil {
			return false, &HookError{Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit profile delete",
			zap.Error(err),
			zap.String("profile_id", id.String()),
		)
		return false, &CommitError{Err: err}
	}

	return true, nil
}
