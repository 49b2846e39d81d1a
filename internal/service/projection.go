package service

import (
	"context"

	"github.com/google/uuid"

	"activityhub/internal/model"
	"activityhub/internal/repository"
)

// projector builds read models as one acting user sees them.
type projector struct {
	attendance repository.AttendanceRepository
	follows    repository.FollowRepository
}

// activities loads the attendees of every given activity and returns a mapping
// function that turns each activity into its DTO for the actor.
func (p projector) activities(ctx context.Context, actor model.Actor, activities []model.Activity) (func(model.Activity) model.ActivityDto, error) {
	ids := make([]uuid.UUID, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ID)
	}

	attendees, err := p.attendance.ListAttendees(ctx, ids)
	if err != nil {
		return nil, err
	}

	byActivity := make(map[uuid.UUID][]model.Attendee, len(activities))
	userIDs := make([]uuid.UUID, 0, len(attendees))
	for _, a := range attendees {
		byActivity[a.ActivityID] = append(byActivity[a.ActivityID], a)
		userIDs = append(userIDs, a.ID)
	}

	following, err := p.following(ctx, actor, userIDs)
	if err != nil {
		return nil, err
	}

	return func(a model.Activity) model.ActivityDto {
		return ToActivityDto(a, byActivity[a.ID], following)
	}, nil
}

// profiles marks each profile the actor follows.
func (p projector) profiles(ctx context.Context, actor model.Actor, profiles []model.Profile) error {
	ids := make([]uuid.UUID, 0, len(profiles))
	for _, pr := range profiles {
		ids = append(ids, pr.ID)
	}

	following, err := p.following(ctx, actor, ids)
	if err != nil {
		return err
	}

	for i := range profiles {
		profiles[i].Following = following[profiles[i].ID]
	}
	return nil
}

func (p projector) following(ctx context.Context, actor model.Actor, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if actor.UserID == uuid.Nil || len(ids) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	return p.follows.CheckFollows(ctx, actor.UserID, ids)
}

// ToActivityDto projects an activity and its attendees.
// following holds the ids of the users the acting user follows.
func ToActivityDto(activity model.Activity, attendees []model.Attendee, following map[uuid.UUID]bool) model.ActivityDto {
	dto := model.ActivityDto{
		ID:          activity.ID,
		Title:       activity.Title,
		Date:        activity.Date,
		Description: activity.Description,
		Category:    activity.Category,
		City:        activity.City,
		Venue:       activity.Venue,
		IsCancelled: activity.IsCancelled,
		Attendees:   make([]model.Attendee, 0, len(attendees)),
	}

	for _, a := range attendees {
		a.Following = following[a.ID]
		if a.IsHost {
			dto.HostUsername = a.Username
		}
		dto.Attendees = append(dto.Attendees, a)
	}
	return dto
}
