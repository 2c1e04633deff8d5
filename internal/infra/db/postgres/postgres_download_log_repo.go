package postgres

import (
	"context"

	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.DownloadLogRepository = (*downloadLogRepo)(nil)

type downloadLogRepo struct {
	pool *pgxpool.Pool
}

func NewDownloadLogRepo(pool *pgxpool.Pool) *downloadLogRepo {
	return &downloadLogRepo{pool: pool}
}

func (r *downloadLogRepo) Insert(ctx context.Context, rec *model.DownloadRecord) error {
	const q = `
INSERT INTO user_logs (ip, country, city, format, filename, started_at, finished_at, duration_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.pool.Exec(ctx, q,
		rec.IP, rec.Country, rec.City, string(rec.Format), rec.Filename,
		rec.StartedAt, rec.FinishedAt, rec.DurationSeconds)
	return err
}
