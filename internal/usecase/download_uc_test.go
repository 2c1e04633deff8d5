//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"video-download-service/internal/domain"
	"video-download-service/internal/domain/model"
	"video-download-service/internal/infra/memstore"
	"video-download-service/internal/usecase"

	"github.com/rs/zerolog"
)

var errSpawnRejected = errors.New("worker queue full")

type ucDeps struct {
	fetcher *mockFetcher
	remuxer *mockRemuxer
	logRepo *mockLogRepo
	store   *memstore.StatusRepo
	dir     string
}

func newTestUC(t *testing.T, mutate func(*ucDeps)) (*usecase.DownloadUseCase, *ucDeps) {
	t.Helper()
	deps := &ucDeps{
		fetcher: &mockFetcher{Produce: "Test Video.mp4"},
		remuxer: &mockRemuxer{},
		logRepo: &mockLogRepo{},
		store:   memstore.NewStatusRepo(),
		dir:     t.TempDir(),
	}
	if mutate != nil {
		mutate(deps)
	}
	logger := zerolog.Nop()
	uc := usecase.NewDownloadUseCase(
		deps.store, deps.logRepo, deps.fetcher, deps.remuxer,
		&mockGeo{Country: "Greece", City: "Athens"},
		noopSweeper{}, usecase.GoSpawner{}, nil,
		deps.dir, []string{"twitter.com"}, &logger,
	)
	return uc, deps
}

// waitForTerminal polls Status until the job leaves its in-flight states.
func waitForTerminal(t *testing.T, uc *usecase.DownloadUseCase, jobID string) *usecase.StatusView {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		view, err := uc.Status(context.Background(), jobID)
		if err != nil {
			t.Fatalf("Status(%s) failed: %v", jobID, err)
		}
		if view.Status == string(model.JobStatusDone) || view.Status == string(model.JobStatusError) {
			return view
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", jobID)
	return nil
}

func TestDownloadUseCase_SubmitValidation(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUC(t, nil)

	t.Run("rejects empty URL", func(t *testing.T) {
		_, err := uc.Submit(ctx, "", "mp4", "1.2.3.4")
		if !errors.Is(err, domain.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("rejects wrong scheme", func(t *testing.T) {
		_, err := uc.Submit(ctx, "ftp://example.com/v", "mp4", "1.2.3.4")
		if !errors.Is(err, domain.ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		_, err := uc.Submit(ctx, "https://example.com/v", "avi", "1.2.3.4")
		if !errors.Is(err, domain.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("format is case-insensitive", func(t *testing.T) {
		jobID, err := uc.Submit(ctx, "https://example.com/v", "MP4", "1.2.3.4")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		waitForTerminal(t, uc, jobID)
	})
}

func TestDownloadUseCase_SuccessfulJob(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUC(t, nil)

	jobID, err := uc.Submit(ctx, "https://example.com/v", "mp4", "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if jobID == "" {
		t.Fatal("expected a job ID")
	}

	// The immediate status must be a well-formed non-oscillating state.
	view, err := uc.Status(ctx, jobID)
	if err != nil {
		t.Fatalf("immediate Status failed: %v", err)
	}
	switch view.Status {
	case "pending", "downloading", "done":
	default:
		t.Errorf("unexpected immediate status %q", view.Status)
	}

	final := waitForTerminal(t, uc, jobID)
	if final.Status != "done" {
		t.Fatalf("expected done, got %+v", final)
	}
	if !strings.HasSuffix(final.File, "-Test Video.mp4") {
		t.Errorf("unexpected output file %q", final.File)
	}
	if !strings.HasPrefix(final.File, jobID[:8]) {
		t.Errorf("output file %q must carry the job's short prefix", final.File)
	}
	if final.Error != "" {
		t.Errorf("done state must not carry an error, got %q", final.Error)
	}

	calls := deps.fetcher.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one fetch, got %d", len(calls))
	}
	if calls[0].URL != "https://example.com/v" || calls[0].Format != model.FormatMP4 {
		t.Errorf("unexpected fetch request %+v", calls[0])
	}
	if deps.remuxer.CallCount() != 0 {
		t.Errorf("remux must not run for this source")
	}
}

func TestDownloadUseCase_FetchFailure(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUC(t, func(d *ucDeps) {
		d.fetcher.FetchErr = errors.New("yt-dlp command failed: network unreachable")
	})

	jobID, err := uc.Submit(ctx, "https://example.com/v", "mp4", "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitForTerminal(t, uc, jobID)
	if final.Status != "error" {
		t.Fatalf("expected error state, got %+v", final)
	}
	if !strings.Contains(final.Error, "network unreachable") {
		t.Errorf("expected the captured diagnostic, got %q", final.Error)
	}
	if final.File != "" {
		t.Errorf("error state must not carry a file, got %q", final.File)
	}
}

func TestDownloadUseCase_NoOutputFile(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUC(t, func(d *ucDeps) {
		d.fetcher.Produce = "" // tool exits zero but writes nothing
	})

	jobID, err := uc.Submit(ctx, "https://example.com/v", "mp3", "1.2.3.4")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	final := waitForTerminal(t, uc, jobID)
	if final.Status != "error" || final.Error != "no output file found" {
		t.Fatalf("expected 'no output file found', got %+v", final)
	}
}

func TestDownloadUseCase_RemuxHook(t *testing.T) {
	ctx := context.Background()

	t.Run("matching source goes through the remux pass", func(t *testing.T) {
		uc, deps := newTestUC(t, nil)

		jobID, err := uc.Submit(ctx, "https://twitter.com/u/status/1", "mp4", "1.2.3.4")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		final := waitForTerminal(t, uc, jobID)
		if final.Status != "done" {
			t.Fatalf("expected done, got %+v", final)
		}
		if deps.remuxer.CallCount() != 1 {
			t.Errorf("expected one remux call, got %d", deps.remuxer.CallCount())
		}
	})

	t.Run("remux failure surfaces as job error", func(t *testing.T) {
		uc, _ := newTestUC(t, func(d *ucDeps) {
			d.remuxer.RemuxErr = errors.New("ffmpeg remux failed: corrupt stream")
		})

		jobID, err := uc.Submit(ctx, "https://twitter.com/u/status/1", "mp4", "1.2.3.4")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		final := waitForTerminal(t, uc, jobID)
		if final.Status != "error" || !strings.Contains(final.Error, "corrupt stream") {
			t.Fatalf("expected remux error state, got %+v", final)
		}
	})
}

func TestDownloadUseCase_AuditEmittedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	uc, deps := newTestUC(t, nil)

	jobID, err := uc.Submit(ctx, "https://example.com/v", "mp3", "9.9.9.9")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitForTerminal(t, uc, jobID)

	// The emission is asynchronous; wait for the first record.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && len(deps.logRepo.Records()) == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	records := deps.logRepo.Records()
	if len(records) != 1 {
		t.Fatalf("expected exactly one audit record, got %d", len(records))
	}

	rec := records[0]
	if rec.IP != "9.9.9.9" || rec.Country != "Greece" || rec.City != "Athens" {
		t.Errorf("unexpected audit identity fields: %+v", rec)
	}
	if rec.Format != model.FormatMP3 {
		t.Errorf("expected mp3 format, got %s", rec.Format)
	}
	if rec.Filename == "" || rec.DurationSeconds < 0 {
		t.Errorf("unexpected audit payload: %+v", rec)
	}

	// Any number of later polls must not re-emit.
	for i := 0; i < 5; i++ {
		if _, err := uc.Status(ctx, jobID); err != nil {
			t.Fatalf("poll %d failed: %v", i, err)
		}
	}
	time.Sleep(50 * time.Millisecond)
	if got := len(deps.logRepo.Records()); got != 1 {
		t.Errorf("expected the audit record to stay at 1, got %d", got)
	}
}

func TestDownloadUseCase_UnknownJob(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUC(t, nil)

	for i := 0; i < 3; i++ {
		_, err := uc.Status(ctx, "no-such-job")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	}
}

func TestDownloadUseCase_SpawnRejected(t *testing.T) {
	ctx := context.Background()
	deps := &ucDeps{
		fetcher: &mockFetcher{},
		remuxer: &mockRemuxer{},
		logRepo: &mockLogRepo{},
		store:   memstore.NewStatusRepo(),
		dir:     t.TempDir(),
	}
	logger := zerolog.Nop()
	uc := usecase.NewDownloadUseCase(
		deps.store, deps.logRepo, deps.fetcher, deps.remuxer, nil,
		noopSweeper{}, rejectingSpawner{}, nil,
		deps.dir, nil, &logger,
	)

	_, err := uc.Submit(ctx, "https://example.com/v", "mp4", "1.2.3.4")
	if !errors.Is(err, domain.ErrServerBusy) {
		t.Fatalf("expected ErrServerBusy, got %v", err)
	}
}
