package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Activity is an event hosted by one user and attended by others.
type Activity struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	City        string    `db:"city" json:"city"`
	Venue       string    `db:"venue" json:"venue"`
	IsCancelled bool      `db:"is_cancelled" json:"isCancelled"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// Attendance links a user to an activity. Exactly one attendance per activity is the host.
type Attendance struct {
	UserID     uuid.UUID `db:"user_id" json:"-"`
	ActivityID uuid.UUID `db:"activity_id" json:"-"`
	IsHost     bool      `db:"is_host" json:"isHost"`
	CreatedAt  time.Time `db:"created_at" json:"-"`
}

// Attendee is an attendance joined with the attending user's profile.
type Attendee struct {
	ActivityID uuid.UUID `db:"activity_id" json:"-"`
	IsHost     bool      `db:"is_host" json:"isHost"`
	Profile
}

// ActivityDto is the read projection of an activity as seen by one acting user.
type ActivityDto struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Date         time.Time  `json:"date"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	City         string     `json:"city"`
	Venue        string     `json:"venue"`
	IsCancelled  bool       `json:"isCancelled"`
	HostUsername string     `json:"hostUsername"`
	Attendees    []Attendee `json:"attendees"`
}

// AttendanceFilter restricts an activity listing to the acting user's attendances.
type AttendanceFilter int

const (
	AttendanceAny AttendanceFilter = iota
	// AttendanceGoing keeps activities the user attends as a guest.
	AttendanceGoing
	AttendanceHosting
)

// ActivityFilter is the storage-level filter for activity listings.
type ActivityFilter struct {
	StartDate  time.Time
	UserID     uuid.UUID
	Attendance AttendanceFilter
}

// Predicates accepted when listing a user's activities.
const (
	UserActivitiesPast    = "past"
	UserActivitiesHosting = "hosting"
	UserActivitiesFuture  = "future"
)

// UserActivityDto is a compact activity row shown on a profile.
type UserActivityDto struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Category     string    `db:"category" json:"category"`
	Date         time.Time `db:"date" json:"date"`
	HostUsername string    `db:"host_username" json:"-"`
}

var (
	ErrActivityNotFound   = errors.New("activity not found")
	ErrAttendanceNotFound = errors.New("attendance not found")
)
