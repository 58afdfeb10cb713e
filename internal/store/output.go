package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/clausegen/internal/model"
)

// OutputLog is an append-only JSONL file of ClauseRecords.
// It is not safe for concurrent use; callers serialize Append.
type OutputLog struct {
	path string
	f    *os.File
}

// OpenOutput creates the parent directory and opens the log. With resume the
// file is opened for append, otherwise it is truncated.
func OpenOutput(path string, resume bool) (*OutputLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if resume {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return &OutputLog{path: path, f: f}, nil
}

// Path returns the log location
func (o *OutputLog) Path() string {
	return o.path
}

// Append writes the record as one complete line and flushes it to disk
func (o *OutputLog) Append(rec *model.ClauseRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil { // Encode terminates with '\n'
		return fmt.Errorf("encode record %s: %w", rec.ClauseHash, err)
	}

	if _, err := o.f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write record %s: %w", rec.ClauseHash, err)
	}
	if err := o.f.Sync(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (o *OutputLog) Close() error {
	return o.f.Close()
}

// DefaultOutputName names a fresh log after the run start time
func DefaultOutputName(now time.Time) string {
	return fmt.Sprintf("variations_%s.jsonl", now.Format("20060102_150405"))
}
