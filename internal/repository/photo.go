package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/model"
)

type photoRepository struct {
	db *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) PhotoRepository {
	return &photoRepository{db: db}
}

func (r *photoRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Photo, error) {
	query := `
		SELECT id, user_id, url, is_main, created_at
		FROM photos
		WHERE user_id = $1
		ORDER BY is_main DESC, created_at, id
	`
	photos := []model.Photo{}
	if err := r.db.SelectContext(ctx, &photos, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

func (r *photoRepository) Get(ctx context.Context, userID uuid.UUID, photoID string) (*model.Photo, error) {
	query := `
		SELECT id, user_id, url, is_main, created_at
		FROM photos
		WHERE user_id = $1 AND id = $2
	`
	var p model.Photo
	err := r.db.GetContext(ctx, &p, query, userID, photoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return &p, nil
}

// Add inserts p. It returns false when the id exists or p is main and the user
// already has a main photo.
func (r *photoRepository) Add(ctx context.Context, tx *sqlx.Tx, p *model.Photo) (bool, error) {
	query := `
		INSERT INTO photos (id, user_id, url, is_main, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, p.ID, p.UserID, p.URL, p.IsMain, p.CreatedAt.UTC())
	if err != nil {
		// Another main photo was committed since the caller looked.
		if _, ok := uniqueViolation(err); ok && p.IsMain {
			return false, nil
		}
		return false, fmt.Errorf("failed to add photo: %w", err)
	}
	return affected(result)
}

// SetMain runs inside tx: the old main is cleared before the new one is set so the
// one-main-per-user index is never violated. Returns false when photoID is already main
// or no longer exists.
func (r *photoRepository) SetMain(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, photoID string) (bool, error) {
	_, err := tx.ExecContext(ctx,
		`UPDATE photos SET is_main = FALSE WHERE user_id = $1 AND is_main AND id <> $2`,
		userID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to clear main photo: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE photos SET is_main = TRUE WHERE user_id = $1 AND id = $2 AND is_main = FALSE`,
		userID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to set main photo: %w", err)
	}
	return affected(result)
}

func (r *photoRepository) Delete(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, photoID string) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM photos WHERE user_id = $1 AND id = $2 AND is_main = FALSE`,
		userID, photoID)
	if err != nil {
		return false, fmt.Errorf("failed to delete photo: %w", err)
	}
	return affected(result)
}
