package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on an activity. Comments are immutable.
type Comment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ActivityID uuid.UUID `db:"activity_id" json:"-"`
	AuthorID   uuid.UUID `db:"author_id" json:"-"`
	Body       string    `db:"body" json:"body"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// CommentDto is a comment joined with its author, as broadcast and listed.
type CommentDto struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ActivityID  uuid.UUID `db:"activity_id" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	Body        string    `db:"body" json:"body"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Image       *string   `db:"image" json:"image"`
}

var ErrCommentNotFound = errors.New("comment not found")
