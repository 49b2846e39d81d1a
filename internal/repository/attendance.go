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

type attendanceRepository struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Add(ctx context.Context, tx *sqlx.Tx, a *model.Attendance) (bool, error) {
	query := `
		INSERT INTO activity_attendees (user_id, activity_id, is_host, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, activity_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, a.UserID, a.ActivityID, a.IsHost, a.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to add attendance: %w", err)
	}
	return affected(result)
}

func (r *attendanceRepository) Remove(ctx context.Context, tx *sqlx.Tx, userID, activityID uuid.UUID) (bool, error) {
	query := `DELETE FROM activity_attendees WHERE user_id = $1 AND activity_id = $2 AND is_host = FALSE`
	result, err := tx.ExecContext(ctx, query, userID, activityID)
	if err != nil {
		return false, fmt.Errorf("failed to remove attendance: %w", err)
	}
	return affected(result)
}

func (r *attendanceRepository) Get(ctx context.Context, userID, activityID uuid.UUID) (*model.Attendance, error) {
	query := `
		SELECT user_id, activity_id, is_host, created_at
		FROM activity_attendees
		WHERE user_id = $1 AND activity_id = $2
	`

	var a model.Attendance
	err := r.db.GetContext(ctx, &a, query, userID, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &a, nil
}

// ListAttendees returns the attendees of every given activity, host first, then by join time.
func (r *attendanceRepository) ListAttendees(ctx context.Context, activityIDs []uuid.UUID) ([]model.Attendee, error) {
	if len(activityIDs) == 0 {
		return []model.Attendee{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT aa.activity_id, aa.is_host, `+profileColumns+`
		FROM activity_attendees aa
		JOIN users u ON u.id = aa.user_id
		WHERE aa.activity_id IN (?)
		ORDER BY aa.activity_id, aa.is_host DESC, aa.created_at, u.username
	`, activityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build attendees query: %w", err)
	}

	attendees := []model.Attendee{}
	if err := r.db.SelectContext(ctx, &attendees, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}
