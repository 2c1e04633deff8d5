package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"video-download-service/internal/domain/model"
	"video-download-service/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Remuxer = (*Remuxer)(nil)

// Remuxer rewrites container metadata with a stream copy, no re-encode.
type Remuxer struct {
	binaryPath string
	log        *zerolog.Logger
}

func NewRemuxer(binaryPath string, logger *zerolog.Logger) *Remuxer {
	l := logger.With().Str("component", "FfmpegRemuxer").Logger()
	return &Remuxer{binaryPath: binaryPath, log: &l}
}

// Remux runs ffmpeg -c copy into a temp file and renames it over the
// original, so the job's filename stays stable.
func (r *Remuxer) Remux(ctx context.Context, path string, format model.Format) error {
	tmp := fmt.Sprintf("%s.remux.%s", path, format)

	cmd := exec.CommandContext(ctx, r.binaryPath, "-y", "-i", path, "-c", "copy", tmp)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.log.Debug().Str("path", path).Msg("remuxing")
	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return fmt.Errorf("ffmpeg remux failed: %s", diag)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg remux rename: %w", err)
	}
	return nil
}
