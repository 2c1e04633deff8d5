package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(downloadsTotal, downloadDurationSeconds) }

var downloadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "downloads_total",
		Help: "Total number of download jobs reaching a terminal state, by status and format.",
	},
	[]string{"status", "format"}, // 'done', 'error'
)

var downloadDurationSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "download_duration_seconds",
		Help:    "Wall-clock duration of download jobs from start to terminal state.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	},
	[]string{"format"},
)

func IncDownload(status, format string) {
	downloadsTotal.WithLabelValues(norm(status), norm(format)).Inc()
}

func ObserveDownloadDuration(format string, seconds float64) {
	downloadDurationSeconds.WithLabelValues(norm(format)).Observe(seconds)
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
