//go:build !integration

package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/adapter"
)

// mockFetcher simulates the retrieval tool. When Produce is set it drops a
// file named "<prefix>-<Produce>" into the template's directory, the way
// yt-dlp substitutes the media title.
type mockFetcher struct {
	mu       sync.Mutex
	calls    []adapter.FetchRequest
	FetchErr error
	Produce  string
}

func (m *mockFetcher) Fetch(ctx context.Context, req adapter.FetchRequest) error {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.FetchErr != nil {
		return m.FetchErr
	}
	if m.Produce != "" {
		dir := filepath.Dir(req.OutputTemplate)
		prefix := strings.SplitN(filepath.Base(req.OutputTemplate), "-", 2)[0]
		return os.WriteFile(filepath.Join(dir, prefix+"-"+m.Produce), []byte("media"), 0o644)
	}
	return nil
}

func (m *mockFetcher) Calls() []adapter.FetchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.FetchRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

type mockRemuxer struct {
	mu       sync.Mutex
	calls    []string
	RemuxErr error
}

func (m *mockRemuxer) Remux(ctx context.Context, path string, format model.Format) error {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()
	return m.RemuxErr
}

func (m *mockRemuxer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockGeo struct {
	Country string
	City    string
}

func (m *mockGeo) Resolve(ctx context.Context, ip string) (string, string) {
	return m.Country, m.City
}

// mockLogRepo counts audit inserts and keeps the records for inspection.
type mockLogRepo struct {
	mu        sync.Mutex
	records   []*model.DownloadRecord
	InsertErr error
}

func (m *mockLogRepo) Insert(ctx context.Context, rec *model.DownloadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockLogRepo) Records() []*model.DownloadRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.DownloadRecord, len(m.records))
	copy(out, m.records)
	return out
}

type noopSweeper struct{}

func (noopSweeper) Sweep() {}

type rejectingSpawner struct{}

func (rejectingSpawner) Spawn(task func()) error {
	return errSpawnRejected
}
