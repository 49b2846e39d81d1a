// Package authz answers authorization questions about activities.
package authz

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"activityhub/internal/model"
	"activityhub/internal/repository"
)

// HostPolicy decides whether a user hosts an activity.
type HostPolicy struct {
	attendance repository.AttendanceRepository
	logger     *zap.Logger
}

func NewHostPolicy(attendance repository.AttendanceRepository, logger *zap.Logger) *HostPolicy {
	return &HostPolicy{
		attendance: attendance,
		logger:     logger.With(zap.String("component", "host_policy")),
	}
}

// IsHost is true only when the user has a host attendance on the activity.
// Lookup errors deny.
func (p *HostPolicy) IsHost(ctx context.Context, userID, activityID uuid.UUID) bool {
	attendance, err := p.attendance.Get(ctx, userID, activityID)
	if err != nil {
		if !errors.Is(err, model.ErrAttendanceNotFound) {
			p.logger.Warn("host lookup failed",
				zap.String("user_id", userID.String()),
				zap.String("activity_id", activityID.String()),
				zap.Error(err))
		}
		return false
	}
	return attendance.IsHost
}
