package adapter

import (
	"context"

	"video-download-service/internal/domain/model"
)

// FetchRequest describes one retrieval-tool invocation.
type FetchRequest struct {
	URL string
	// Format selects the flag set appended to the base command.
	Format model.Format
	// OutputTemplate is the tool's output naming template, already scoped
	// to the job's short prefix inside the shared download directory.
	OutputTemplate string
}

// MediaFetcher drives the external retrieval tool. Fetch blocks until the
// child process exits and returns an error carrying the captured
// diagnostic output on failure.
type MediaFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) error
}

// Remuxer rewrites a downloaded file into a clean container in place.
// Used as a post-processing pass for sources known to emit streams that
// players choke on.
type Remuxer interface {
	Remux(ctx context.Context, path string, format model.Format) error
}
