package service

import (
	"time"

	"github.com/google/uuid"

	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
)

// Every request carries the acting user, resolved by the auth middleware.

// =============================================================================
// ACTIVITIES
// =============================================================================

type CreateActivity struct {
	mediator.Returns[core.Unit]
	Actor model.Actor `json:"-"`

	// ID may be chosen by the client; a new one is generated when absent.
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" validate:"required,max=100"`
	Date        time.Time `json:"date" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Category    string    `json:"category" validate:"required"`
	City        string    `json:"city" validate:"required"`
	Venue       string    `json:"venue" validate:"required"`
}

func (CreateActivity) RequestName() string { return "CreateActivity" }

// EditActivity merges the non-nil fields into the stored activity.
type EditActivity struct {
	mediator.Returns[core.Unit]
	Actor model.Actor `json:"-"`
	ID    uuid.UUID   `json:"-"`

	Title       *string    `json:"title" validate:"omitnil,min=1,max=100"`
	Date        *time.Time `json:"date" validate:"omitnil"`
	Description *string    `json:"description" validate:"omitnil,min=1"`
	Category    *string    `json:"category" validate:"omitnil,min=1"`
	City        *string    `json:"city" validate:"omitnil,min=1"`
	Venue       *string    `json:"venue" validate:"omitnil,min=1"`
}

func (EditActivity) RequestName() string { return "EditActivity" }

type DeleteActivity struct {
	mediator.Returns[core.Unit]
	Actor model.Actor
	ID    uuid.UUID
}

func (DeleteActivity) RequestName() string { return "DeleteActivity" }

type ActivityDetails struct {
	mediator.Returns[model.ActivityDto]
	Actor model.Actor
	ID    uuid.UUID
}

func (ActivityDetails) RequestName() string { return "ActivityDetails" }

// ListActivities pages through activities on or after StartDate.
// IsGoing and IsHost are exclusive; both or neither means no attendance filter.
type ListActivities struct {
	mediator.Returns[core.Page[model.ActivityDto]]
	Actor model.Actor

	StartDate time.Time
	IsGoing   bool
	IsHost    bool
	Paging    core.PagingParams
}

func (ListActivities) RequestName() string { return "ListActivities" }

// UpdateAttendance toggles the actor's attendance, or cancellation when the actor hosts.
type UpdateAttendance struct {
	mediator.Returns[core.Unit]
	Actor model.Actor
	ID    uuid.UUID
}

func (UpdateAttendance) RequestName() string { return "UpdateAttendance" }

// =============================================================================
// FOLLOWING
// =============================================================================

type FollowToggle struct {
	mediator.Returns[core.Unit]
	Actor          model.Actor
	TargetUsername string `validate:"required"`
}

func (FollowToggle) RequestName() string { return "FollowToggle" }

// ListFollowings lists the followers or followings of Username.
type ListFollowings struct {
	mediator.Returns[[]model.Profile]
	Actor     model.Actor
	Username  string `validate:"required"`
	Predicate string `validate:"omitempty,oneof=followers following"`
}

func (ListFollowings) RequestName() string { return "ListFollowings" }

// =============================================================================
// PHOTOS
// =============================================================================

type AddPhoto struct {
	mediator.Returns[model.Photo]
	Actor  model.Actor
	Upload model.PhotoUpload `validate:"-"`
}

func (AddPhoto) RequestName() string { return "AddPhoto" }

type SetMainPhoto struct {
	mediator.Returns[core.Unit]
	Actor   model.Actor
	PhotoID string `validate:"required"`
}

func (SetMainPhoto) RequestName() string { return "SetMainPhoto" }

type DeletePhoto struct {
	mediator.Returns[core.Unit]
	Actor   model.Actor
	PhotoID string `validate:"required"`
}

func (DeletePhoto) RequestName() string { return "DeletePhoto" }

// =============================================================================
// PROFILES
// =============================================================================

type ProfileDetails struct {
	mediator.Returns[model.Profile]
	Actor    model.Actor
	Username string `validate:"required"`
}

func (ProfileDetails) RequestName() string { return "ProfileDetails" }

// EditProfile updates the actor's display name; a nil Bio keeps the stored bio.
type EditProfile struct {
	mediator.Returns[core.Unit]
	Actor       model.Actor `json:"-"`
	DisplayName string      `json:"displayName" validate:"required,max=100"`
	Bio         *string     `json:"bio" validate:"omitnil,max=500"`
}

func (EditProfile) RequestName() string { return "EditProfile" }

type ListUserActivities struct {
	mediator.Returns[[]model.UserActivityDto]
	Actor     model.Actor
	Username  string `validate:"required"`
	Predicate string
}

func (ListUserActivities) RequestName() string { return "ListUserActivities" }

// =============================================================================
// COMMENTS
// =============================================================================

type CreateComment struct {
	mediator.Returns[model.CommentDto]
	Actor      model.Actor `json:"-"`
	ActivityID uuid.UUID   `json:"-"`
	Body       string      `json:"body" validate:"required,max=2000"`
}

func (CreateComment) RequestName() string { return "CreateComment" }

type ListComments struct {
	mediator.Returns[[]model.CommentDto]
	Actor      model.Actor
	ActivityID uuid.UUID
}

func (ListComments) RequestName() string { return "ListComments" }

// Requests lists every request name the API dispatches.
// The mediator refuses to build unless each one has a handler.
func Requests() []string {
	return []string{
		CreateActivity{}.RequestName(),
		EditActivity{}.RequestName(),
		DeleteActivity{}.RequestName(),
		ActivityDetails{}.RequestName(),
		ListActivities{}.RequestName(),
		UpdateAttendance{}.RequestName(),
		FollowToggle{}.RequestName(),
		ListFollowings{}.RequestName(),
		AddPhoto{}.RequestName(),
		SetMainPhoto{}.RequestName(),
		DeletePhoto{}.RequestName(),
		ProfileDetails{}.RequestName(),
		EditProfile{}.RequestName(),
		ListUserActivities{}.RequestName(),
		CreateComment{}.RequestName(),
		ListComments{}.RequestName(),
	}
}
