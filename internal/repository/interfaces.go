package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"activityhub/internal/core"
	"activityhub/internal/model"
)

// Write methods that take a *sqlx.Tx report whether a row was affected.
// Callers turn false into a domain failure.

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, displayName string, bio *string) (bool, error)
	GetProfile(ctx context.Context, username string) (*model.Profile, error)
	GetMainPhotoURL(ctx context.Context, userID uuid.UUID) (*string, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, activity *model.Activity) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	Update(ctx context.Context, tx *sqlx.Tx, activity *model.Activity) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error)
	// SetCancelled flips the flag only if it still holds the expected value.
	SetCancelled(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, expected, cancelled bool) (bool, error)
	Query(filter model.ActivityFilter) core.Source[model.Activity]
	ListForUser(ctx context.Context, userID uuid.UUID, predicate string, now time.Time) ([]model.UserActivityDto, error)
}

type AttendanceRepository interface {
	Add(ctx context.Context, tx *sqlx.Tx, attendance *model.Attendance) (bool, error)
	// Remove never deletes a host attendance.
	Remove(ctx context.Context, tx *sqlx.Tx, userID, activityID uuid.UUID) (bool, error)
	Get(ctx context.Context, userID, activityID uuid.UUID) (*model.Attendance, error)
	ListAttendees(ctx context.Context, activityIDs []uuid.UUID) ([]model.Attendee, error)
}

type FollowRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, observerID, targetID uuid.UUID) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, observerID, targetID uuid.UUID) (bool, error)
	Exists(ctx context.Context, observerID, targetID uuid.UUID) (bool, error)
	GetFollowers(ctx context.Context, userID uuid.UUID) ([]model.Profile, error)
	GetFollowing(ctx context.Context, userID uuid.UUID) ([]model.Profile, error)
	CheckFollows(ctx context.Context, observerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type PhotoRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Photo, error)
	Get(ctx context.Context, userID uuid.UUID, photoID string) (*model.Photo, error)
	Add(ctx context.Context, tx *sqlx.Tx, photo *model.Photo) (bool, error)
	// SetMain clears the current main photo and marks photoID as main.
	SetMain(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, photoID string) (bool, error)
	// Delete never deletes a main photo.
	Delete(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, photoID string) (bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) (bool, error)
	GetDto(ctx context.Context, id uuid.UUID) (*model.CommentDto, error)
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.CommentDto, error)
}
