package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"activityhub/internal/cache"
	"activityhub/internal/queue"
)

// ErrRetryable marks handler errors whose message must stay pending for another attempt.
var ErrRetryable = errors.New("retryable")

// PhotoReconciler removes a local photo record whose blob has already been deleted.
type PhotoReconciler interface {
	ReconcileOrphan(ctx context.Context, userID uuid.UUID, photoID string) error
}

// Handler processes domain events from the queue.
type Handler struct {
	profiles   cache.ProfileCache
	reconciler PhotoReconciler
	logger     *zap.Logger
}

// NewHandler creates a new event handler.
func NewHandler(profiles cache.ProfileCache, reconciler PhotoReconciler, logger *zap.Logger) *Handler {
	return &Handler{
		profiles:   profiles,
		reconciler: reconciler,
		logger:     logger.With(zap.String("component", "worker")),
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventUserFollowed, queue.EventUserUnfollowed,
		queue.EventProfileUpdated, queue.EventPhotoChanged:
		err = h.invalidateProfiles(ctx, event)
	case queue.EventPhotoOrphaned:
		err = h.handlePhotoOrphaned(ctx, event)
	default:
		recordEvent(event.Type, outcomeUnknown)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		recordEvent(event.Type, outcomeFailed)
		h.logger.Warn("handle event failed",
			zap.String("type", event.Type),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err))
		return err
	}

	recordEvent(event.Type, outcomeHandled)
	h.logger.Debug("handled event",
		zap.String("type", event.Type),
		zap.Duration("duration", time.Since(startTime)))
	return nil
}

// invalidateProfiles drops cached profiles whose counts, photos or text changed.
func (h *Handler) invalidateProfiles(ctx context.Context, event queue.Event) error {
	if err := h.profiles.Invalidate(ctx, event.Usernames...); err != nil {
		return fmt.Errorf("invalidate profiles: %w", err)
	}
	return nil
}

// handlePhotoOrphaned retries the local delete that failed after the blob was removed.
func (h *Handler) handlePhotoOrphaned(ctx context.Context, event queue.Event) error {
	if event.PhotoID == "" {
		return fmt.Errorf("photo_orphaned event without photo id")
	}

	if err := h.reconciler.ReconcileOrphan(ctx, event.UserID, event.PhotoID); err != nil {
		return fmt.Errorf("reconcile photo %s: %w: %w", event.PhotoID, ErrRetryable, err)
	}

	h.logger.Info("reconciled orphaned photo",
		zap.String("photo_id", event.PhotoID),
		zap.String("user_id", event.UserID.String()))

	return h.invalidateProfiles(ctx, event)
}
