package repository

import (
	"context"

	"video-download-service/internal/domain/model"
)

// DownloadLogRepository appends audit records to the external log sink.
// Inserts are best-effort: callers log failures and move on.
type DownloadLogRepository interface {
	Insert(ctx context.Context, rec *model.DownloadRecord) error
}
