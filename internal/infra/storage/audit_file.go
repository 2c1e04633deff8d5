package storage

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditFile is the optional local append-only record of completed
// downloads, one line per file. It exists next to the remote log sink so
// a box with no database still keeps a trace.
type AuditFile struct {
	mu   sync.Mutex
	path string
}

func NewAuditFile(path string) *AuditFile {
	return &AuditFile{path: path}
}

// Append writes one line; errors are returned for the caller to log and
// ignore.
func (a *AuditFile) Append(filename string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\t%s\n", time.Now().Format(time.RFC3339), filename)
	return err
}
