package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/core"
	"activityhub/internal/model"
)

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

const activityColumns = `a.id, a.title, a.date, a.description, a.category, a.city, a.venue, a.is_cancelled, a.created_at`

func (r *activityRepository) Create(ctx context.Context, tx *sqlx.Tx, a *model.Activity) (bool, error) {
	query := `
		INSERT INTO activities (id, title, date, description, category, city, venue, is_cancelled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query,
		a.ID, a.Title, a.Date.UTC(), a.Description, a.Category, a.City, a.Venue, a.IsCancelled, a.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to create activity: %w", err)
	}
	return affected(result)
}

func (r *activityRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities a WHERE a.id = $1`

	var a model.Activity
	err := r.db.GetContext(ctx, &a, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &a, nil
}

func (r *activityRepository) Update(ctx context.Context, tx *sqlx.Tx, a *model.Activity) (bool, error) {
	query := `
		UPDATE activities
		SET title = $2, date = $3, description = $4, category = $5, city = $6, venue = $7
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query,
		a.ID, a.Title, a.Date.UTC(), a.Description, a.Category, a.City, a.Venue)
	if err != nil {
		return false, fmt.Errorf("failed to update activity: %w", err)
	}
	return affected(result)
}

// Delete removes the activity; attendances and comments go with it.
func (r *activityRepository) Delete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	return affected(result)
}

func (r *activityRepository) SetCancelled(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, expected, cancelled bool) (bool, error) {
	query := `UPDATE activities SET is_cancelled = $3 WHERE id = $1 AND is_cancelled = $2`
	result, err := tx.ExecContext(ctx, query, id, expected, cancelled)
	if err != nil {
		return false, fmt.Errorf("failed to set activity cancellation: %w", err)
	}
	return affected(result)
}

// Query returns the activities on or after filter.StartDate, ordered by date.
func (r *activityRepository) Query(filter model.ActivityFilter) core.Source[model.Activity] {
	return &activitySource{db: r.db, filter: filter}
}

type activitySource struct {
	db     *sqlx.DB
	filter model.ActivityFilter
}

func (s *activitySource) where() (string, []any) {
	clause := `WHERE a.date >= $1`
	args := []any{s.filter.StartDate.UTC()}

	switch s.filter.Attendance {
	case model.AttendanceGoing:
		// Guests only; hosted activities are listed under AttendanceHosting.
		clause += ` AND EXISTS (
			SELECT 1 FROM activity_attendees aa
			WHERE aa.activity_id = a.id AND aa.user_id = $2 AND NOT aa.is_host)`
		args = append(args, s.filter.UserID)
	case model.AttendanceHosting:
		clause += ` AND EXISTS (
			SELECT 1 FROM activity_attendees aa
			WHERE aa.activity_id = a.id AND aa.user_id = $2 AND aa.is_host)`
		args = append(args, s.filter.UserID)
	}

	return clause, args
}

func (s *activitySource) Count(ctx context.Context) (int, error) {
	where, args := s.where()

	var total int
	err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activities a `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return total, nil
}

func (s *activitySource) Slice(ctx context.Context, offset, limit int) ([]model.Activity, error) {
	where, args := s.where()
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM activities a %s ORDER BY a.date, a.id LIMIT $%d OFFSET $%d`,
		activityColumns, where, n+1, n+2)
	args = append(args, limit, offset)

	var activities []model.Activity
	if err := s.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// ListForUser lists activities the user attends, ordered by date.
// predicate is "past", "hosting" or anything else for upcoming.
func (r *activityRepository) ListForUser(ctx context.Context, userID uuid.UUID, predicate string, now time.Time) ([]model.UserActivityDto, error) {
	query := `
		SELECT a.id, a.title, a.category, a.date, COALESCE(hu.username, '') AS host_username
		FROM activity_attendees aa
		JOIN activities a ON a.id = aa.activity_id
		LEFT JOIN activity_attendees ha ON ha.activity_id = a.id AND ha.is_host
		LEFT JOIN users hu ON hu.id = ha.user_id
		WHERE aa.user_id = $1
	`
	args := []any{userID}

	switch predicate {
	case model.UserActivitiesPast:
		query += ` AND a.date <= $2`
		args = append(args, now.UTC())
	case model.UserActivitiesHosting:
		query += ` AND aa.is_host`
	default:
		query += ` AND a.date >= $2`
		args = append(args, now.UTC())
	}
	query += ` ORDER BY a.date, a.id`

	activities := []model.UserActivityDto{}
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list user activities: %w", err)
	}
	return activities, nil
}
