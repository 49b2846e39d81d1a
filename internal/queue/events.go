package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types carried on the domain event stream
const (
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
	EventProfileUpdated = "profile_updated"
	EventPhotoChanged   = "photo_changed"
	EventPhotoOrphaned  = "photo_orphaned"
)

// Stream names
const (
	StreamEvents = "stream:events"

	// StreamMaxLen bounds the stream length; XADD trims approximately.
	StreamMaxLen = 10000
)

// Consumer group name for event workers
const (
	ConsumerGroupEvents = "event_workers"
)

// Event is published after a handler commits.
// Fields not relevant to the event type are left empty.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	// Follow events: observer and target
	UserID   uuid.UUID `json:"user_id"`
	TargetID uuid.UUID `json:"target_id"`

	// Usernames whose cached profiles are stale
	Usernames []string `json:"usernames,omitempty"`

	// Photo events
	PhotoID string `json:"photo_id,omitempty"`
}

// NewUserFollowedEvent is published when observer starts following target.
// Both profiles change their follower/following counts.
func NewUserFollowedEvent(observerID, targetID uuid.UUID, observer, target string) Event {
	return Event{
		Type:      EventUserFollowed,
		Timestamp: time.Now().Unix(),
		UserID:    observerID,
		TargetID:  targetID,
		Usernames: []string{observer, target},
	}
}

func NewUserUnfollowedEvent(observerID, targetID uuid.UUID, observer, target string) Event {
	return Event{
		Type:      EventUserUnfollowed,
		Timestamp: time.Now().Unix(),
		UserID:    observerID,
		TargetID:  targetID,
		Usernames: []string{observer, target},
	}
}

func NewProfileUpdatedEvent(userID uuid.UUID, username string) Event {
	return Event{
		Type:      EventProfileUpdated,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Usernames: []string{username},
	}
}

func NewPhotoChangedEvent(userID uuid.UUID, username, photoID string) Event {
	return Event{
		Type:      EventPhotoChanged,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Usernames: []string{username},
		PhotoID:   photoID,
	}
}

// NewPhotoOrphanedEvent records a photo whose blob is gone but whose row survived.
// The worker retries the local delete.
func NewPhotoOrphanedEvent(userID uuid.UUID, username, photoID string) Event {
	return Event{
		Type:      EventPhotoOrphaned,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		Usernames: []string{username},
		PhotoID:   photoID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
