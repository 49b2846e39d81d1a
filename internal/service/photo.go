package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"activityhub/internal/cache"
	"activityhub/internal/core"
	"activityhub/internal/mediator"
	"activityhub/internal/model"
	"activityhub/internal/queue"
	"activityhub/internal/repository"
)

// BlobStore holds the photo files. Public ids it returns are the photo ids.
type BlobStore interface {
	AddPhoto(ctx context.Context, upload model.PhotoUpload) (*model.UploadResult, error)
	DeletePhoto(ctx context.Context, publicID string) error
}

// PhotoService manages a user's photos across the blob store and the database.
type PhotoService struct {
	db        *sqlx.DB
	photoRepo repository.PhotoRepository
	userRepo  repository.UserRepository
	store     BlobStore
	profiles  cache.ProfileCache
	publisher queue.Publisher
	logger    *zap.Logger
}

func NewPhotoService(
	db *sqlx.DB,
	photoRepo repository.PhotoRepository,
	userRepo repository.UserRepository,
	store BlobStore,
	profiles cache.ProfileCache,
	publisher queue.Publisher,
	logger *zap.Logger,
) *PhotoService {
	return &PhotoService{
		db:        db,
		photoRepo: photoRepo,
		userRepo:  userRepo,
		store:     store,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "photo_service")),
	}
}

func (s *PhotoService) Register(reg *mediator.Registry) {
	mediator.Register(reg, s.Add)
	mediator.Register(reg, s.SetMain)
	mediator.Register(reg, s.Delete)
}

// Add uploads the file and records it. The user's first photo becomes main.
// Blob store errors, including rejected files, are returned as errors.
func (s *PhotoService) Add(ctx context.Context, req AddPhoto) (core.Result[model.Photo], error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return core.NotFound[model.Photo](), nil
	}
	if err != nil {
		return core.Result[model.Photo]{}, err
	}

	existing, err := s.photoRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return core.Result[model.Photo]{}, err
	}

	uploaded, err := s.store.AddPhoto(ctx, req.Upload)
	if err != nil {
		return core.Result[model.Photo]{}, fmt.Errorf("upload photo: %w", err)
	}

	photo := model.Photo{
		ID:        uploaded.PublicID,
		UserID:    user.ID,
		URL:       uploaded.URL,
		IsMain:    !hasMain(existing),
		CreatedAt: time.Now().UTC(),
	}

	added, err := s.addLocal(ctx, &photo)
	if err != nil || !added {
		s.discardBlob(ctx, photo.ID)
	}
	if err != nil {
		return core.Result[model.Photo]{}, err
	}
	if !added {
		return core.Failure[model.Photo]("Problem adding photo"), nil
	}

	s.invalidate(ctx, user.Username)
	s.publish(ctx, queue.NewPhotoChangedEvent(user.ID, user.Username, photo.ID))
	return core.Success(photo), nil
}

func (s *PhotoService) addLocal(ctx context.Context, photo *model.Photo) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	added, err := s.photoRepo.Add(ctx, tx, photo)
	if err != nil || !added {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

// discardBlob removes an uploaded blob that never got a local record.
// It runs even when the request was cancelled.
func (s *PhotoService) discardBlob(ctx context.Context, photoID string) {
	if err := s.store.DeletePhoto(context.WithoutCancel(ctx), photoID); err != nil {
		s.logger.Warn("failed to discard unrecorded blob",
			zap.String("photo_id", photoID),
			zap.Error(err))
	}
}

func hasMain(photos []model.Photo) bool {
	for _, p := range photos {
		if p.IsMain {
			return true
		}
	}
	return false
}

// SetMain moves the main flag to one of the actor's photos.
func (s *PhotoService) SetMain(ctx context.Context, req SetMainPhoto) (core.Result[core.Unit], error) {
	user, photo, res, err := s.ownedPhoto(ctx, req.Actor, req.PhotoID)
	if photo == nil {
		return res, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	updated, err := s.photoRepo.SetMain(ctx, tx, user.ID, photo.ID)
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !updated {
		return core.Failure[core.Unit]("Problem setting main photo"), nil
	}

	if err := tx.Commit(); err != nil {
		return core.Result[core.Unit]{}, fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidate(ctx, user.Username)
	s.publish(ctx, queue.NewPhotoChangedEvent(user.ID, user.Username, photo.ID))
	return core.Success(core.Unit{}), nil
}

// Delete removes a non-main photo, blob first.
//
// When the blob is gone but the local delete fails, a photo_orphaned event asks the
// worker to finish the job and the failure is still reported to the caller.
func (s *PhotoService) Delete(ctx context.Context, req DeletePhoto) (core.Result[core.Unit], error) {
	user, photo, res, err := s.ownedPhoto(ctx, req.Actor, req.PhotoID)
	if photo == nil {
		return res, err
	}

	if photo.IsMain {
		return core.Failure[core.Unit]("You cannot delete your main photo"), nil
	}

	if err := s.store.DeletePhoto(ctx, photo.ID); err != nil {
		s.logger.Warn("blob delete failed",
			zap.String("photo_id", photo.ID),
			zap.Error(err))
		return core.Failure[core.Unit]("Problem deleting photo from storage"), nil
	}

	deleted, err := s.deleteLocal(ctx, user.ID, photo.ID)
	if err != nil || !deleted {
		s.publish(ctx, queue.NewPhotoOrphanedEvent(user.ID, user.Username, photo.ID))
	}
	if err != nil {
		return core.Result[core.Unit]{}, err
	}
	if !deleted {
		return core.Failure[core.Unit]("Problem deleting photo from API"), nil
	}

	s.invalidate(ctx, user.Username)
	s.publish(ctx, queue.NewPhotoChangedEvent(user.ID, user.Username, photo.ID))
	return core.Success(core.Unit{}), nil
}

func (s *PhotoService) deleteLocal(ctx context.Context, userID uuid.UUID, photoID string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := s.photoRepo.Delete(ctx, tx, userID, photoID)
	if err != nil || !deleted {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

// ReconcileOrphan deletes the local record of a photo whose blob is already gone.
// A record that no longer exists counts as reconciled.
func (s *PhotoService) ReconcileOrphan(ctx context.Context, userID uuid.UUID, photoID string) error {
	photo, err := s.photoRepo.Get(ctx, userID, photoID)
	if errors.Is(err, model.ErrPhotoNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if photo.IsMain {
		s.logger.Warn("orphaned photo is main, leaving it", zap.String("photo_id", photoID))
		return nil
	}

	if _, err := s.deleteLocal(ctx, userID, photoID); err != nil {
		return err
	}
	return nil
}

// ownedPhoto resolves the actor and one of their photos. A nil photo means the
// returned result and error should be handed back as they are.
func (s *PhotoService) ownedPhoto(ctx context.Context, actor model.Actor, photoID string) (*model.User, *model.Photo, core.Result[core.Unit], error) {
	user, err := s.userRepo.GetByUsername(ctx, actor.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil, core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return nil, nil, core.Result[core.Unit]{}, err
	}

	photo, err := s.photoRepo.Get(ctx, user.ID, photoID)
	if errors.Is(err, model.ErrPhotoNotFound) {
		return nil, nil, core.NotFound[core.Unit](), nil
	}
	if err != nil {
		return nil, nil, core.Result[core.Unit]{}, err
	}
	return user, photo, core.Result[core.Unit]{}, nil
}

func (s *PhotoService) invalidate(ctx context.Context, username string) {
	invalidateProfiles(ctx, s.profiles, s.logger, username)
}

func (s *PhotoService) publish(ctx context.Context, event queue.Event) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, queue.StreamEvents, event); err != nil {
		s.logger.Warn("failed to publish photo event",
			zap.String("type", event.Type),
			zap.String("photo_id", event.PhotoID),
			zap.Error(err))
	}
}
