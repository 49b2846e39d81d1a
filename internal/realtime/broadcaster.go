// Package realtime fans new comments out to every API instance over Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"activityhub/internal/model"
)

const channelPrefix = "comments:"

// Broadcaster publishes comments and hands out per-activity subscriptions.
type Broadcaster interface {
	Broadcast(ctx context.Context, comment model.CommentDto) error
	Subscribe(ctx context.Context, activityID uuid.UUID) (*Subscription, error)
}

// RedisBroadcaster implements Broadcaster with PUBLISH/SUBSCRIBE.
type RedisBroadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

func NewBroadcaster(client *redis.Client, logger *zap.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: client,
		logger: logger.With(zap.String("component", "broadcaster")),
	}
}

func channel(activityID uuid.UUID) string {
	return channelPrefix + activityID.String()
}

// Broadcast publishes the comment on its activity's channel.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, comment model.CommentDto) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	receivers, err := b.client.Publish(ctx, channel(comment.ActivityID), data).Result()
	if err != nil {
		return fmt.Errorf("publish comment: %w", err)
	}

	b.logger.Debug("comment broadcast",
		zap.String("activity_id", comment.ActivityID.String()),
		zap.Int64("receivers", receivers))
	return nil
}

// Subscribe listens for comments on one activity until ctx ends or Close is called.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, activityID uuid.UUID) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channel(activityID))

	// Wait for the subscription confirmation so no message published after this call is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", channel(activityID), err)
	}

	sub := &Subscription{
		pubsub:   pubsub,
		comments: make(chan model.CommentDto),
	}
	go sub.run(ctx, b.logger)
	return sub, nil
}

// Subscription delivers comments for one activity.
type Subscription struct {
	pubsub   *redis.PubSub
	comments chan model.CommentDto
}

// Comments is closed when the subscription ends.
func (s *Subscription) Comments() <-chan model.CommentDto {
	return s.comments
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

func (s *Subscription) run(ctx context.Context, logger *zap.Logger) {
	defer close(s.comments)
	defer s.pubsub.Close()

	messages := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var comment model.CommentDto
			if err := json.Unmarshal([]byte(msg.Payload), &comment); err != nil {
				logger.Warn("dropping malformed comment payload", zap.Error(err))
				continue
			}

			select {
			case s.comments <- comment:
			case <-ctx.Done():
				return
			}
		}
	}
}
