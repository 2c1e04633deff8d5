package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"video-download-service/internal/domain"
	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/adapter"
	"video-download-service/internal/domain/ports/repository"
	"video-download-service/internal/infra/logging"
	"video-download-service/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// shortPrefixLen is how much of the job ID seeds the output filename.
// Eight hex chars keep collisions with leftover files negligible.
const shortPrefixLen = 8

// titleMaxLen bounds the title substitution in the output template.
const titleMaxLen = 200

// Sweeper clears expired files before a new job is admitted.
type Sweeper interface {
	Sweep()
}

// Spawner runs a job function asynchronously. GoSpawner preserves the
// classic one-goroutine-per-job behavior; the worker pool provides a
// bounded alternative.
type Spawner interface {
	Spawn(task func()) error
}

// GoSpawner launches every task on its own goroutine, uncapped.
type GoSpawner struct{}

func (GoSpawner) Spawn(task func()) error {
	go task()
	return nil
}

// AuditAppender records completed downloads in the local audit file.
type AuditAppender interface {
	Append(filename string) error
}

// pendingDownload holds the request-side data an audit record needs.
// The entry is removed on the first terminal observation, which is what
// makes the audit emission exactly-once.
type pendingDownload struct {
	ip string
}

// StatusView is the client-facing projection of a job's state.
type StatusView struct {
	Status string `json:"status"`
	File   string `json:"file,omitempty"`
	Error  string `json:"error,omitempty"`
}

// DownloadUseCase validates submissions, runs download jobs and reports
// their progress.
type DownloadUseCase struct {
	statusRepo repository.StatusRepository
	logRepo    repository.DownloadLogRepository // nil disables the remote sink
	fetcher    adapter.MediaFetcher
	remuxer    adapter.Remuxer
	geo        adapter.GeoResolver // nil disables geo enrichment
	sweeper    Sweeper
	spawner    Spawner
	audit      AuditAppender // nil disables the local audit file

	dir          string
	remuxDomains []string

	mu      sync.Mutex
	pending map[string]pendingDownload

	log *zerolog.Logger
}

func NewDownloadUseCase(
	statusRepo repository.StatusRepository,
	logRepo repository.DownloadLogRepository,
	fetcher adapter.MediaFetcher,
	remuxer adapter.Remuxer,
	geo adapter.GeoResolver,
	sweeper Sweeper,
	spawner Spawner,
	audit AuditAppender,
	dir string,
	remuxDomains []string,
	logger *zerolog.Logger,
) *DownloadUseCase {
	l := logger.With().Str("component", "DownloadUC").Logger()
	return &DownloadUseCase{
		statusRepo:   statusRepo,
		logRepo:      logRepo,
		fetcher:      fetcher,
		remuxer:      remuxer,
		geo:          geo,
		sweeper:      sweeper,
		spawner:      spawner,
		audit:        audit,
		dir:          dir,
		remuxDomains: remuxDomains,
		pending:      make(map[string]pendingDownload),
		log:          &l,
	}
}

// Submit validates the request, admits a new job and returns its ID
// before any download work begins.
func (uc *DownloadUseCase) Submit(ctx context.Context, rawURL, format, clientIP string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || !(strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")) {
		return "", domain.ErrInvalidURL
	}
	f, err := model.ParseFormat(format)
	if err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	prefix := jobID[:shortPrefixLen]

	// Expired files go first so a full disk never blocks new work longer
	// than one sweep.
	uc.sweeper.Sweep()

	if err := uc.statusRepo.Set(ctx, jobID, &model.JobState{
		Status: model.JobStatusPending,
		Format: f,
	}); err != nil {
		return "", err
	}

	uc.mu.Lock()
	uc.pending[jobID] = pendingDownload{ip: clientIP}
	uc.mu.Unlock()

	if err := uc.spawner.Spawn(func() { uc.runJob(jobID, prefix, rawURL, f) }); err != nil {
		uc.mu.Lock()
		delete(uc.pending, jobID)
		uc.mu.Unlock()
		_ = uc.statusRepo.Set(ctx, jobID, &model.JobState{
			Status:      model.JobStatusError,
			Format:      f,
			Error:       "server busy",
			CompletedAt: time.Now(),
		})
		return "", domain.ErrServerBusy
	}

	uc.log.Info().Str("job_id", jobID).Str("url", rawURL).Str("format", string(f)).Msg("download started")
	return jobID, nil
}

// runJob drives one download to a terminal state. It runs detached from
// the request that spawned it; nothing here may propagate out.
func (uc *DownloadUseCase) runJob(jobID, prefix, rawURL string, f model.Format) {
	ctx := logging.WithJobID(context.Background(), jobID)
	log := logging.With(ctx, uc.log)

	state := &model.JobState{
		Status:    model.JobStatusDownloading,
		Format:    f,
		StartedAt: time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			uc.fail(ctx, jobID, state, fmt.Sprintf("unexpected error: %v", r))
		}
	}()

	if err := uc.statusRepo.Set(ctx, jobID, state); err != nil {
		log.Error().Err(err).Msg("could not record downloading state")
	}

	template := filepath.Join(uc.dir, fmt.Sprintf("%s-%%(title).%ds.%%(ext)s", prefix, titleMaxLen))
	if err := uc.fetcher.Fetch(ctx, adapter.FetchRequest{
		URL:            rawURL,
		Format:         f,
		OutputTemplate: template,
	}); err != nil {
		uc.fail(ctx, jobID, state, err.Error())
		return
	}

	file, err := uc.newestByPrefix(prefix)
	if err != nil {
		uc.fail(ctx, jobID, state, "no output file found")
		return
	}

	if uc.needsRemux(rawURL) {
		if err := uc.remuxer.Remux(ctx, filepath.Join(uc.dir, file), f); err != nil {
			uc.fail(ctx, jobID, state, err.Error())
			return
		}
	}

	state.Status = model.JobStatusDone
	state.File = file
	state.CompletedAt = time.Now()
	if err := uc.statusRepo.Set(ctx, jobID, state); err != nil {
		log.Error().Err(err).Msg("could not record done state")
	}

	metrics.IncDownload(string(model.JobStatusDone), string(f))
	metrics.ObserveDownloadDuration(string(f), state.CompletedAt.Sub(state.StartedAt).Seconds())

	if uc.audit != nil {
		if err := uc.audit.Append(file); err != nil {
			log.Warn().Err(err).Msg("local audit append failed")
		}
	}

	log.Info().Str("file", file).Msg("download completed")
}

func (uc *DownloadUseCase) fail(ctx context.Context, jobID string, state *model.JobState, msg string) {
	state.Status = model.JobStatusError
	state.File = ""
	state.Error = msg
	state.CompletedAt = time.Now()
	if err := uc.statusRepo.Set(ctx, jobID, state); err != nil {
		uc.log.Error().Err(err).Str("job_id", jobID).Msg("could not record error state")
	}
	metrics.IncDownload(string(model.JobStatusError), string(state.Format))
	uc.log.Error().Str("job_id", jobID).Str("error", msg).Msg("download failed")
}

// newestByPrefix locates the job's output. The tool substitutes the media
// title into the filename, so the exact name is unknown in advance; the
// newest entry carrying the job's short prefix wins.
func (uc *DownloadUseCase) newestByPrefix(prefix string) (string, error) {
	entries, err := os.ReadDir(uc.dir)
	if err != nil {
		return "", err
	}

	var (
		newest string
		mtime  time.Time
	)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(mtime) {
			newest = entry.Name()
			mtime = info.ModTime()
		}
	}
	if newest == "" {
		return "", domain.ErrNotFound
	}
	return newest, nil
}

func (uc *DownloadUseCase) needsRemux(rawURL string) bool {
	u := strings.ToLower(rawURL)
	for _, d := range uc.remuxDomains {
		if d != "" && strings.Contains(u, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// Status projects a job's state for the polling client. The first time a
// job is seen in a terminal state its pending entry is removed; a removed
// entry can never emit a second audit record.
func (uc *DownloadUseCase) Status(ctx context.Context, jobID string) (*StatusView, error) {
	state, err := uc.statusRepo.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("status lookup: %w", err)
	}

	view := &StatusView{
		Status: string(state.Status),
		File:   state.File,
		Error:  state.Error,
	}

	if state.Status.Terminal() {
		uc.mu.Lock()
		entry, ok := uc.pending[jobID]
		if ok {
			delete(uc.pending, jobID)
		}
		uc.mu.Unlock()

		if ok && state.Status == model.JobStatusDone {
			go uc.emitAudit(entry.ip, state)
		}
	}

	return view, nil
}

// emitAudit writes one record to the remote log sink. Strictly
// best-effort: failures are logged and swallowed.
func (uc *DownloadUseCase) emitAudit(ip string, state *model.JobState) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if uc.logRepo == nil {
		return
	}

	var country, city string
	if uc.geo != nil {
		country, city = uc.geo.Resolve(ctx, ip)
	}

	rec := &model.DownloadRecord{
		IP:              ip,
		Country:         country,
		City:            city,
		Format:          state.Format,
		Filename:        state.File,
		StartedAt:       state.StartedAt,
		FinishedAt:      state.CompletedAt,
		DurationSeconds: int(state.CompletedAt.Sub(state.StartedAt).Seconds()),
	}
	if err := uc.logRepo.Insert(ctx, rec); err != nil {
		uc.log.Warn().Err(err).Str("file", rec.Filename).Msg("audit insert failed")
	}
}
