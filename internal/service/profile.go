package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"activityhub/internal/cache"
	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/queue"
	"activityhub/internal/repository"
)

// ProfileService serves public profiles. Profiles are read through the cache when one is set.
type ProfileService struct {
	db           *sqlx.DB
	userRepo     repository.UserRepository
	photoRepo    repository.PhotoRepository
	activityRepo repository.ActivityRepository
	profiles     cache.ProfileCache
	projector    projector
	publisher    queue.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewProfileService(
	db *sqlx.DB,
	userRepo repository.UserRepository,
	photoRepo repository.PhotoRepository,
	activityRepo repository.ActivityRepository,
	followRepo repository.FollowRepository,
	profiles cache.ProfileCache,
	publisher queue.Publisher,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		db:           db,
		userRepo:     userRepo,
		photoRepo:    photoRepo,
		activityRepo: activityRepo,
		profiles:     profiles,
		projector:    projector{follows: followRepo},
		publisher:    publisher,
		logger:       logger.With(zap.String("component", "profile_service")),
		now:          time.Now,
	}
}

func (s *ProfileService) Register(reg *mediator.Registry) {
	mediator.Register(reg, s.Details)
	mediator.Register(reg, s.Edit)
	mediator.Register(reg, s.ListActivities)
}

// Details returns the profile with its photos and whether the actor follows it.
func (s *ProfileService) Details(ctx context.Context, req ProfileDetails) (core.Result[model.Profile], error) {
	profile, err := s.load(ctx, req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[model.Profile](), nil
	}
	if err != nil {
		return core.Result[model.Profile]{}, err
	}

	annotated := []model.Profile{*profile}
	if err := s.projector.profiles(ctx, req.Actor, annotated); err != nil {
		return core.Result[model.Profile]{}, err
	}
	return core.Success(annotated[0]), nil
}

// load reads the viewer-independent profile, from cache first.
// Cache failures are logged and fall through to the database.
func (s *ProfileService) load(ctx context.Context, username string) (*model.Profile, error) {
	if s.profiles != nil {
		cached, found, err := s.profiles.Get(ctx, username)
		if err != nil {
			s.logger.Warn("profile cache read failed", zap.String("username", username), zap.Error(err))
		}
		if found {
			return cached, nil
		}
	}

	profile, err := s.userRepo.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	photos, err := s.photoRepo.ListByUser(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	profile.Photos = photos

	if s.profiles != nil {
		if err := s.profiles.Set(ctx, profile); err != nil {
			s.logger.Warn("profile cache write failed", zap.String("username", username), zap.Error(err))
		}
	}
	return profile, nil
}

// Edit changes the actor's display name and, when given, bio.
// Saving identical values is reported as a failure.
func (s *ProfileService) Edit(ctx context.Context, req EditProfile) (core.Result[core.Unit], error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	updated, err := s.userRepo.UpdateProfile(ctx, tx, user.ID, req.DisplayName, req.Bio)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !updated {
		return core.Failure[core.Unit]("Problem updating profile"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}

	// The editor reads their own profile next; don't wait for the worker.
	invalidateProfiles(ctx, s.profiles, s.logger, user.Username)
	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, queue.StreamEvents, queue.NewProfileUpdatedEvent(user.ID, user.Username)); err != nil {
			s.logger.Warn("failed to publish profile event", zap.String("username", user.Username), zap.Error(err))
		}
	}

	return core.Success(core.Unit{}), nil
}

// ListActivities lists the activities a user attends: past, hosting, or upcoming by default.
func (s *ProfileService) ListActivities(ctx context.Context, req ListUserActivities) (core.Result[[]model.UserActivityDto], error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[[]model.UserActivityDto](), nil
	}
	if err != nil {
		return core.Result[[]model.UserActivityDto]{}, err
	}

	activities, err := s.activityRepo.ListForUser(ctx, user.ID, req.Predicate, s.now())
	if err != nil {
		return core.Result[[]model.UserActivityDto]{}, err
	}
	return core.Success(activities), nil
}

// invalidateProfiles drops cached profiles so the next read sees committed
// changes. The profile worker repeats this from the event stream.
func invalidateProfiles(ctx context.Context, profiles cache.ProfileCache, logger *zap.Logger, usernames ...string) {
	if profiles == nil {
		return
	}
	if err := profiles.Invalidate(ctx, usernames...); err != nil {
		logger.Warn("profile cache invalidate failed", zap.Strings("usernames", usernames), zap.Error(err))
	}
}
