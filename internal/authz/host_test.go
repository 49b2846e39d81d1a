package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"activityhub/internal/authz"
	"activityhub/internal/database/databasetest"
	"activityhub/internal/model"
	"activityhub/internal/repository"
)

func seedUser(t *testing.T, db *sqlx.DB, username string) uuid.UUID {
	t.Helper()
	user := &model.User{
		ID:          uuid.New(),
		Username:    username,
		Email:       username + "@test.com",
		DisplayName: username,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user.ID
}

func TestHostPolicy_IsHost(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	activities := repository.NewActivityRepository(db)
	attendance := repository.NewAttendanceRepository(db)

	host := seedUser(t, db, "bob")
	guest := seedUser(t, db, "tom")
	stranger := seedUser(t, db, "jane")

	activity := &model.Activity{
		ID:        uuid.New(),
		Title:     "Past Activity 1",
		Date:      time.Now().UTC().Add(24 * time.Hour),
		Category:  "drinks",
		City:      "London",
		Venue:     "Pub",
		CreatedAt: time.Now().UTC(),
	}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	_, err = activities.Create(ctx, tx, activity)
	require.NoError(t, err)
	_, err = attendance.Add(ctx, tx, &model.Attendance{UserID: host, ActivityID: activity.ID, IsHost: true, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	_, err = attendance.Add(ctx, tx, &model.Attendance{UserID: guest, ActivityID: activity.ID, CreatedAt: time.Now().UTC()})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	policy := authz.NewHostPolicy(attendance, zap.NewNop())

	tests := []struct {
		name       string
		userID     uuid.UUID
		activityID uuid.UUID
		want       bool
	}{
		{"host", host, activity.ID, true},
		{"guest", guest, activity.ID, false},
		{"no attendance", stranger, activity.ID, false},
		{"unknown user", uuid.New(), activity.ID, false},
		{"unknown activity", host, uuid.New(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.IsHost(ctx, tt.userID, tt.activityID))
		})
	}
}

type failingAttendance struct {
	repository.AttendanceRepository
}

func (failingAttendance) Get(ctx context.Context, userID, activityID uuid.UUID) (*model.Attendance, error) {
	return nil, context.DeadlineExceeded
}

func TestHostPolicy_LookupErrorDenies(t *testing.T) {
	policy := authz.NewHostPolicy(failingAttendance{}, zap.NewNop())

	assert.False(t, policy.IsHost(context.Background(), uuid.New(), uuid.New()))
}
