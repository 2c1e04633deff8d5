package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"video-download-service/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.MediaFetcher = (*Fetcher)(nil)

// Fetcher drives the local yt-dlp binary.
type Fetcher struct {
	binaryPath  string
	cookiesFile string
	maxFileSize string
	log         *zerolog.Logger
}

func NewFetcher(binaryPath, cookiesFile, maxFileSize string, logger *zerolog.Logger) *Fetcher {
	l := logger.With().Str("component", "YtdlpFetcher").Logger()
	return &Fetcher{
		binaryPath:  binaryPath,
		cookiesFile: cookiesFile,
		maxFileSize: maxFileSize,
		log:         &l,
	}
}

// Fetch runs yt-dlp and blocks until it exits. There is deliberately no
// timeout here: the size cap is the only brake the tool gets.
func (f *Fetcher) Fetch(ctx context.Context, req adapter.FetchRequest) error {
	args := f.buildArgs(req)
	f.log.Debug().Strs("args", args).Msg("running yt-dlp")

	cmd := exec.CommandContext(ctx, f.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		return fmt.Errorf("yt-dlp command failed: %s", diag)
	}

	f.log.Debug().Str("output", strings.TrimSpace(stdout.String())).Msg("yt-dlp finished")
	return nil
}

// buildArgs assembles the argument list: fixed flags, then the
// format-specific block, then the target URL as the final positional.
func (f *Fetcher) buildArgs(req adapter.FetchRequest) []string {
	args := []string{
		"--cookies", f.cookiesFile,
		"--max-filesize", f.maxFileSize,
		"-o", req.OutputTemplate,
	}
	args = append(args, formatArgs(req)...)
	return append(args, req.URL)
}

func formatArgs(req adapter.FetchRequest) []string {
	switch req.Format {
	case "mp3":
		return []string{"-x", "--audio-format", "mp3"}
	default: // mp4
		if isYouTube(req.URL) {
			// YouTube reliably serves mp4/m4a streams; pin them so no
			// merge into another container is needed.
			return []string{
				"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]",
				"--merge-output-format", "mp4",
			}
		}
		return []string{
			"-f", "bestvideo*+bestaudio/best",
			"--merge-output-format", "mp4",
		}
	}
}

func isYouTube(rawURL string) bool {
	u := strings.ToLower(rawURL)
	return strings.Contains(u, "youtube.com") || strings.Contains(u, "youtu.be")
}
