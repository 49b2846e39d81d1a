package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the single edge row that both sides of the relationship read.
func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, observerID, targetID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO user_followings (observer_id, target_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (observer_id, target_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, observerID, targetID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}
	return affected(result)
}

func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, observerID, targetID uuid.UUID) (bool, error) {
	query := `DELETE FROM user_followings WHERE observer_id = $1 AND target_id = $2`
	result, err := tx.ExecContext(ctx, query, observerID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return affected(result)
}

func (r *followRepository) Exists(ctx context.Context, observerID, targetID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM user_followings WHERE observer_id = $1 AND target_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, observerID, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowers returns the profiles observing userID, most recent first.
func (r *followRepository) GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_followings e
		JOIN users u ON u.id = e.observer_id
		WHERE e.target_id = $1
		ORDER BY e.created_at DESC, u.username
	`
	profiles := []model.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return profiles, nil
}

// GetFollowing returns the profiles userID observes, most recent first.
func (r *followRepository) GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_followings e
		JOIN users u ON u.id = e.target_id
		WHERE e.observer_id = $1
		ORDER BY e.created_at DESC, u.username
	`
	profiles := []model.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return profiles, nil
}

func (r *followRepository) CheckFollows(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		`SELECT target_id FROM user_followings WHERE observer_id = ? AND target_id IN (?)`,
		observerID, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build follows query: %w", err)
	}

	var followedIDs []uuid.UUID
	if err := r.db.SelectContext(ctx, &followedIDs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	for _, id := range targetIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
