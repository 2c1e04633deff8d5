package model

import (
	"strings"
	"time"

	"video-download-service/internal/domain"
)

type JobStatus string

const (
	JobStatusPending     JobStatus = "pending"
	JobStatusDownloading JobStatus = "downloading"
	JobStatusDone        JobStatus = "done"
	JobStatusError       JobStatus = "error"
)

// Terminal reports whether the status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// Format is the requested output container.
type Format string

const (
	FormatMP4 Format = "mp4"
	FormatMP3 Format = "mp3"
)

// ParseFormat normalizes and validates a client-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMP4:
		return FormatMP4, nil
	case FormatMP3:
		return FormatMP3, nil
	default:
		return "", domain.ErrUnsupportedFormat
	}
}

// JobState is the value stored per job ID in the status store.
// The runner goroutine is the sole writer; everyone else only reads.
type JobState struct {
	Status      JobStatus `json:"status"`
	Format      Format    `json:"format"`
	File        string    `json:"file,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
