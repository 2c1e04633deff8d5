package repository

import (
	"context"

	"video-download-service/internal/domain/model"
)

// StatusRepository maps a job ID to its current state. Set overwrites
// unconditionally (last write wins); Get returns domain.ErrNotFound for
// unknown IDs. Implementations must be safe for concurrent use.
type StatusRepository interface {
	Set(ctx context.Context, jobID string, state *model.JobState) error
	Get(ctx context.Context, jobID string) (*model.JobState, error)
}
