package service

import (
	"context"

	"taskflow/internal/metrics"
	"taskflow/internal/model"
	"taskflow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder appends audit entries for accepted mutations. It runs
// after the primary mutation commits and is best-effort: a failed append
// is logged and never rolls the mutation back.
type ActivityRecorder struct {
	repo repository.ActivityRepositoryInterface
	log  *zap.Logger
}

func NewActivityRecorder(repo repository.ActivityRepositoryInterface, log *zap.Logger) *ActivityRecorder {
	return &ActivityRecorder{repo: repo, log: log}
}

func (r *ActivityRecorder) Record(
	ctx context.Context,
	projectID, actorID uuid.UUID,
	action, entityType string,
	entityID *uuid.UUID,
	description string,
) {
	entry := &model.ActivityLog{
		ProjectID:   projectID,
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
	}

	if err := r.repo.Create(ctx, entry); err != nil {
		r.log.Error("failed to record activity",
			zap.String("project_id", projectID.String()),
			zap.String("action", action),
			zap.Error(err))
		return
	}

	metrics.ActivityRecorded.WithLabelValues(action).Inc()
}
