package realtime

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"activityhub/internal/model"
)

// Pub/sub channels ignore the selected DB; tests use fresh activity ids instead.
func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestBroadcaster_DeliversToSubscribersOfTheActivity(t *testing.T) {
	client := setupTestRedis(t)
	b := NewBroadcaster(client, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	activityID, otherID := uuid.New(), uuid.New()
	sub, err := b.Subscribe(ctx, activityID)
	require.NoError(t, err)
	defer sub.Close()

	comment := model.CommentDto{
		ID:         uuid.New(),
		ActivityID: activityID,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
		Body:       "see you there",
		Username:   "bob",
	}
	require.NoError(t, b.Broadcast(ctx, model.CommentDto{ID: uuid.New(), ActivityID: otherID, Body: "elsewhere"}))
	require.NoError(t, b.Broadcast(ctx, comment))

	select {
	case got := <-sub.Comments():
		assert.Equal(t, comment.ID, got.ID)
		assert.Equal(t, comment.Body, got.Body)
		assert.Equal(t, "bob", got.Username)
		assert.True(t, comment.CreatedAt.Equal(got.CreatedAt))
	case <-ctx.Done():
		t.Fatal("comment not delivered")
	}
}

func TestSubscription_ClosesWithContext(t *testing.T) {
	client := setupTestRedis(t)
	b := NewBroadcaster(client, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Subscribe(ctx, uuid.New())
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-sub.Comments():
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not close")
	}
}
