package memstore

import (
	"context"
	"sync"

	"video-download-service/internal/domain"
	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/repository"
)

var _ repository.StatusRepository = (*StatusRepo)(nil)

// StatusRepo is the in-process status store, used when no Redis address is
// configured. Entries are copied on write and read so a runner can keep
// mutating its local state without racing observers.
type StatusRepo struct {
	mu     sync.RWMutex
	states map[string]model.JobState
}

func NewStatusRepo() *StatusRepo {
	return &StatusRepo{states: make(map[string]model.JobState)}
}

func (r *StatusRepo) Set(ctx context.Context, jobID string, state *model.JobState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[jobID] = *state
	return nil
}

func (r *StatusRepo) Get(ctx context.Context, jobID string) (*model.JobState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}
