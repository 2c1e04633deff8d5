package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"video-download-service/internal/domain"
	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.StatusRepository = (*StatusRepo)(nil)

// StatusRepo keeps per-job state in Redis as JSON under a prefixed key.
// The TTL lets finished entries age out on their own; the service never
// deletes them explicitly.
type StatusRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewStatusRepo(client RedisClient, ttl time.Duration) *StatusRepo {
	return &StatusRepo{client: client, ttl: ttl}
}

func (r *StatusRepo) statusKey(jobID string) string {
	return fmt.Sprintf("job_status:%s", jobID)
}

func (r *StatusRepo) Set(ctx context.Context, jobID string, state *model.JobState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.statusKey(jobID), data, r.ttl)
}

func (r *StatusRepo) Get(ctx context.Context, jobID string) (*model.JobState, error) {
	data, err := r.client.Get(ctx, r.statusKey(jobID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var state model.JobState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}
