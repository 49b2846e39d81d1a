package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"activityhub/internal/cache"
	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/queue"
	"activityhub/internal/repository"
)

type FollowService struct {
	db         *sqlx.DB
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	projector  projector
	profiles   cache.ProfileCache
	publisher  queue.Publisher
	logger     *zap.Logger
}

func NewFollowService(
	db *sqlx.DB,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	profiles cache.ProfileCache,
	publisher queue.Publisher,
	logger *zap.Logger,
) *FollowService {
	return &FollowService{
		db:         db,
		followRepo: followRepo,
		userRepo:   userRepo,
		projector:  projector{follows: followRepo},
		profiles:   profiles,
		publisher:  publisher,
		logger:     logger.With(zap.String("component", "follow_service")),
	}
}

func (s *FollowService) Register(reg *mediator.Registry) {
	mediator.Register(reg, s.Toggle)
	mediator.Register(reg, s.List)
}

// Toggle follows the target when no edge exists and unfollows it otherwise.
func (s *FollowService) Toggle(ctx context.Context, req FollowToggle) (core.Result[core.Unit], error) {
	observer, err := s.userRepo.GetByUsername(ctx, req.Actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	target, err := s.userRepo.GetByUsername(ctx, req.TargetUsername)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	if observer.ID == target.ID {
		return core.Failure[core.Unit]("You cannot follow yourself"), nil
	}

	following, err := s.followRepo.Exists(ctx, observer.ID, target.ID)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var changed bool
	if following {
		changed, err = s.followRepo.Delete(ctx, tx, observer.ID, target.ID)
	} else {
		changed, err = s.followRepo.Create(ctx, tx, observer.ID, target.ID)
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !changed {
		return core.Failure[core.Unit]("Failed to update following"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}

	// Both users' follower counts changed.
	invalidateProfiles(ctx, s.profiles, s.logger, observer.Username, target.Username)
	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(observer.ID, target.ID, observer.Username, target.Username)
		if following {
			event = queue.NewUserUnfollowedEvent(observer.ID, target.ID, observer.Username, target.Username)
		}
		if _, err := s.publisher.Publish(ctx, queue.StreamEvents, event); err != nil {
			s.logger.Warn("failed to publish follow event",
				zap.String("type", event.Type),
				zap.String("observer", observer.Username),
				zap.String("target", target.Username),
				zap.Error(err))
		}
	}

	return core.Success(core.Unit{}), nil
}

// List returns the followers of Username, or the users it follows when the
// predicate is "following".
func (s *FollowService) List(ctx context.Context, req ListFollowings) (core.Result[[]model.Profile], error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[[]model.Profile](), nil
	}
	if err != nil {
		return core.Result[[]model.Profile]{}, err
	}

	var profiles []model.Profile
	switch req.Predicate {
	case model.FollowPredicateFollowing:
		profiles, err = s.followRepo.GetFollowing(ctx, user.ID)
	default:
		profiles, err = s.followRepo.GetFollowers(ctx, user.ID)
	}
	if err != nil {
		return core.Result[[]model.Profile]{}, err
	}

	if err := s.projector.profiles(ctx, req.Actor, profiles); err != nil {
		return core.Result[[]model.Profile]{}, err
	}
	return core.Success(profiles), nil
}
