package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"activityhub/internal/database/databasetest"
	"activityhub/internal/model"
	"activityhub/internal/queue"
	"activityhub/internal/repository"
)

// =============================================================================
// MOCK COLLABORATORS
// =============================================================================

type mockPublisher struct {
	mu     sync.Mutex
	events []queue.Event
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.Event) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return fmt.Sprintf("%d-0", len(m.events)), nil
}

func (m *mockPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.events))
	for _, e := range m.events {
		types = append(types, e.Type)
	}
	return types
}

type mockBlobStore struct {
	addFn    func(ctx context.Context, upload model.PhotoUpload) (*model.UploadResult, error)
	deleteFn func(ctx context.Context, publicID string) error

	added   int
	deleted []string
}

func (m *mockBlobStore) AddPhoto(ctx context.Context, upload model.PhotoUpload) (*model.UploadResult, error) {
	if m.addFn != nil {
		return m.addFn(ctx, upload)
	}
	m.added++
	id := fmt.Sprintf("photos/%d.jpg", m.added)
	return &model.UploadResult{PublicID: id, URL: "https://cdn.test/" + id}, nil
}

func (m *mockBlobStore) DeletePhoto(ctx context.Context, publicID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, publicID)
	}
	m.deleted = append(m.deleted, publicID)
	return nil
}

// =============================================================================
// FIXTURE
// =============================================================================

type fixture struct {
	db *sqlx.DB

	users      repository.UserRepository
	activities repository.ActivityRepository
	attendance repository.AttendanceRepository
	follows    repository.FollowRepository
	photos     repository.PhotoRepository
	comments   repository.CommentRepository

	publisher *mockPublisher
	store     *mockBlobStore
	profiles  *memoryProfileCache

	activitySvc *ActivityService
	followSvc   *FollowService
	photoSvc    *PhotoService
	profileSvc  *ProfileService
	commentSvc  *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := databasetest.Open(t)
	logger := zap.NewNop()

	f := &fixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		activities: repository.NewActivityRepository(db),
		attendance: repository.NewAttendanceRepository(db),
		follows:    repository.NewFollowRepository(db),
		photos:     repository.NewPhotoRepository(db),
		comments:   repository.NewCommentRepository(db),
		publisher:  &mockPublisher{},
		store:      &mockBlobStore{},
		profiles:   newMemoryProfileCache(),
	}

	f.activitySvc = NewActivityService(db, f.activities, f.attendance, f.users, f.follows, logger)
	f.followSvc = NewFollowService(db, f.follows, f.users, f.profiles, f.publisher, logger)
	f.photoSvc = NewPhotoService(db, f.photos, f.users, f.store, f.profiles, f.publisher, logger)
	f.profileSvc = NewProfileService(db, f.users, f.photos, f.activities, f.follows, nil, f.publisher, logger)
	f.commentSvc = NewCommentService(db, f.comments, f.activities, f.users)
	return f
}

func (f *fixture) user(t *testing.T, username string) model.Actor {
	t.Helper()
	u := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "x",
		DisplayName:  username,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return model.Actor{UserID: u.ID, Username: u.Username}
}

func (f *fixture) createActivity(t *testing.T, host model.Actor, title string, date time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	res, err := f.activitySvc.Create(context.Background(), CreateActivity{
		Actor:       host,
		ID:          id,
		Title:       title,
		Date:        date,
		Description: "Activity " + title,
		Category:    "culture",
		City:        "London",
		Venue:       "Museum",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)
	return id
}

func (f *fixture) toggleAttendance(t *testing.T, actor model.Actor, activityID uuid.UUID) {
	t.Helper()
	res, err := f.activitySvc.UpdateAttendance(context.Background(), UpdateAttendance{Actor: actor, ID: activityID})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)
	require.False(t, res.IsEmpty())
}

func (f *fixture) details(t *testing.T, actor model.Actor, activityID uuid.UUID) model.ActivityDto {
	t.Helper()
	res, err := f.activitySvc.Details(context.Background(), ActivityDetails{Actor: actor, ID: activityID})
	require.NoError(t, err)
	require.True(t, res.IsSuccess)
	require.False(t, res.IsEmpty())
	return res.Value
}

func (f *fixture) addPhoto(t *testing.T, actor model.Actor) model.Photo {
	t.Helper()
	res, err := f.photoSvc.Add(context.Background(), AddPhoto{Actor: actor})
	require.NoError(t, err)
	require.True(t, res.IsSuccess, res.Error)
	return res.Value
}

func (f *fixture) mainPhotos(t *testing.T, actor model.Actor) []string {
	t.Helper()
	photos, err := f.photos.ListByUser(context.Background(), actor.UserID)
	require.NoError(t, err)
	var main []string
	for _, p := range photos {
		if p.IsMain {
			main = append(main, p.ID)
		}
	}
	return main
}

var errBoom = errors.New("boom")

func future(days int) time.Time {
	return time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour).Truncate(time.Second)
}
