package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(retentionFilesSwept) }

var retentionFilesSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "retention_files_swept_total",
		Help: "Total number of expired files removed by the retention sweeper.",
	},
)

func AddFilesSwept(n int) {
	if n > 0 {
		retentionFilesSwept.Add(float64(n))
	}
}
