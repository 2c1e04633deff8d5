package storage

import (
	"os"
	"path/filepath"
	"time"

	"video-download-service/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Sweeper deletes downloaded files older than the retention window.
// It runs on the dispatcher path before each accepted job rather than on
// a schedule, so the cost lands on the request that triggers it.
type Sweeper struct {
	dir    string
	maxAge time.Duration
	remove func(string) error
	log    *zerolog.Logger
}

func NewSweeper(dir string, retentionHours int, logger *zerolog.Logger) *Sweeper {
	l := logger.With().Str("component", "Sweeper").Logger()
	return &Sweeper{
		dir:    dir,
		maxAge: time.Duration(retentionHours) * time.Hour,
		remove: os.Remove,
		log:    &l,
	}
}

// Sweep is best-effort: one failing deletion never stops the rest.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Error().Err(err).Str("dir", s.dir).Msg("retention scan failed")
		return
	}

	cutoff := time.Now().Add(-s.maxAge)
	swept := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := s.remove(path); err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("could not remove expired file")
			continue
		}
		s.log.Info().Str("file", entry.Name()).Msg("removed expired file")
		swept++
	}
	metrics.AddFilesSwept(swept)
}
