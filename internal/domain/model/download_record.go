package model

import "time"

// DownloadRecord is the audit row written to the log sink once per
// completed download.
type DownloadRecord struct {
	IP              string
	Country         string
	City            string
	Format          Format
	Filename        string
	StartedAt       time.Time
	FinishedAt      time.Time
	DurationSeconds int
}
