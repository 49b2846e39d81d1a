package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/repository"
)

// ActivityService handles activities and attendance.
type ActivityService struct {
	db         *sqlx.DB
	activities repository.ActivityRepository
	attendance repository.AttendanceRepository
	users      repository.UserRepository
	projector  projector
	logger     *zap.Logger
	now        func() time.Time
}

func NewActivityService(
	db *sqlx.DB,
	activities repository.ActivityRepository,
	attendance repository.AttendanceRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		db:         db,
		activities: activities,
		attendance: attendance,
		users:      users,
		projector:  projector{attendance: attendance, follows: follows},
		logger:     logger.With(zap.String("component", "activity_service")),
		now:        time.Now,
	}
}

// Register binds the activity handlers.
func (s *ActivityService) Register(reg *mediator.Registry) {
	mediator.Register(reg, s.Create)
	mediator.Register(reg, s.Edit)
	mediator.Register(reg, s.Delete)
	mediator.Register(reg, s.Details)
	mediator.Register(reg, s.List)
	mediator.Register(reg, s.UpdateAttendance)
}

// Create stores the activity with the actor as its host, in one transaction.
func (s *ActivityService) Create(ctx context.Context, req CreateActivity) (core.Result[core.Unit], error) {
	now := s.now().UTC()
	activity := &model.Activity{
		ID:          req.ID,
		Title:       req.Title,
		Date:        req.Date.UTC(),
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Venue:       req.Venue,
		CreatedAt:   now,
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := s.activities.Create(ctx, tx, activity)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !created {
		return core.Failure[core.Unit]("Failed to create activity"), nil
	}

	hosted, err := s.attendance.Add(ctx, tx, &model.Attendance{
		UserID:     req.Actor.UserID,
		ActivityID: activity.ID,
		IsHost:     true,
		CreatedAt:  now,
	})
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !hosted {
		return core.Failure[core.Unit]("Failed to create activity"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("host", req.Actor.Username))
	return core.Success(core.Unit{}), nil
}

// Edit merges the provided fields into the stored activity.
func (s *ActivityService) Edit(ctx context.Context, req EditActivity) (core.Result[core.Unit], error) {
	activity, err := s.activities.GetByID(ctx, req.ID)
	if errors.Is(err, model.ErrActivityNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	mergeActivity(activity, req)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	updated, err := s.activities.Update(ctx, tx, activity)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !updated {
		return core.Failure[core.Unit]("Failed to update the activity"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}
	return core.Success(core.Unit{}), nil
}

func mergeActivity(a *model.Activity, req EditActivity) {
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Date != nil {
		a.Date = req.Date.UTC()
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Category != nil {
		a.Category = *req.Category
	}
	if req.City != nil {
		a.City = *req.City
	}
	if req.Venue != nil {
		a.Venue = *req.Venue
	}
}

// Delete removes the activity with its attendances and comments.
func (s *ActivityService) Delete(ctx context.Context, req DeleteActivity) (core.Result[core.Unit], error) {
	if _, err := s.activities.GetByID(ctx, req.ID); err != nil {
		if errors.Is(err, model.ErrActivityNotFound) {
			return core.NotFound[core.Unit](), nil
		}
		return core.Result[core.Unit]{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := s.activities.Delete(ctx, tx, req.ID)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !deleted {
		return core.Failure[core.Unit]("Failed to delete the activity"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("activity deleted",
		zap.String("activity_id", req.ID.String()),
		zap.String("by", req.Actor.Username))
	return core.Success(core.Unit{}), nil
}

func (s *ActivityService) Details(ctx context.Context, req ActivityDetails) (core.Result[model.ActivityDto], error) {
	activity, err := s.activities.GetByID(ctx, req.ID)
	if errors.Is(err, model.ErrActivityNotFound) {
		return core.NotFound[model.ActivityDto](), nil
	}
	if err != nil {
		return core.Result[model.ActivityDto]{}, err
	}

	project, err := s.projector.activities(ctx, req.Actor, []model.Activity{*activity})
	if err != nil {
		return core.Result[model.ActivityDto]{}, err
	}
	return core.Success(project(*activity)), nil
}

// List pages through upcoming activities, optionally restricted to the ones
// the actor attends or hosts.
func (s *ActivityService) List(ctx context.Context, req ListActivities) (core.Result[core.Page[model.ActivityDto]], error) {
	filter := model.ActivityFilter{
		StartDate: req.StartDate,
		UserID:    req.Actor.UserID,
	}
	if filter.StartDate.IsZero() {
		filter.StartDate = s.now()
	}

	switch {
	case req.IsGoing && !req.IsHost:
		filter.Attendance = model.AttendanceGoing
	case req.IsHost && !req.IsGoing:
		filter.Attendance = model.AttendanceHosting
	}

	pageNumber, pageSize := req.Paging.Normalize()
	page, err := core.Paginate(ctx, s.activities.Query(filter), pageNumber, pageSize)
	if err != nil {
		return core.Result[core.Page[model.ActivityDto]]{}, err
	}

	project, err := s.projector.activities(ctx, req.Actor, page.Items)
	if err != nil {
		return core.Result[core.Page[model.ActivityDto]]{}, err
	}
	return core.Success(core.MapPage(page, project)), nil
}

// UpdateAttendance toggles the actor's relation to the activity.
//
// A host flips the cancellation flag, a guest leaves, anyone else joins as a guest.
// Each write is guarded so that a concurrent toggle makes it affect zero rows,
// which is reported as a failure rather than overwritten.
func (s *ActivityService) UpdateAttendance(ctx context.Context, req UpdateAttendance) (core.Result[core.Unit], error) {
	activity, err := s.activities.GetByID(ctx, req.ID)
	if errors.Is(err, model.ErrActivityNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	attendees, err := s.attendance.ListAttendees(ctx, []uuid.UUID{activity.ID})
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	user, err := s.users.GetByUsername(ctx, req.Actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	var (
		hostUsername string
		attending    bool
	)
	for _, a := range attendees {
		if a.IsHost {
			hostUsername = a.Username
		}
		if a.ID == user.ID {
			attending = true
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var changed bool
	switch {
	case attending && hostUsername == user.Username:
		changed, err = s.activities.SetCancelled(ctx, tx, activity.ID, activity.IsCancelled, !activity.IsCancelled)
	case attending:
		changed, err = s.attendance.Remove(ctx, tx, user.ID, activity.ID)
	default:
		changed, err = s.attendance.Add(ctx, tx, &model.Attendance{
			UserID:     user.ID,
			ActivityID: activity.ID,
			CreatedAt:  s.now().UTC(),
		})
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !changed {
		return core.Failure[core.Unit]("Problem updating attendance"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}
	return core.Success(core.Unit{}), nil
}
