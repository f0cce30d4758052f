package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/CrazyDud/swansa-peacefulplay-website-fixed/internal/domain/model"
)

// EntrySeparator follows every entry of the contact log.
const EntrySeparator = "\n---\n"

// FileContactLog appends submissions as indented JSON blocks, each followed
// by a separator line. The file is not a JSON document as a whole.
type FileContactLog struct {
	path string
	opts fileOptions
	mu   sync.Mutex
}

var _ ContactLog = (*FileContactLog)(nil)

// NewFileContactLog returns a log appending to path.
func NewFileContactLog(path string, opts ...Option) *FileContactLog {
	o := defaultFileOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FileContactLog{path: path, opts: o}
}

// Append implements ContactLog.
func (l *FileContactLog) Append(_ context.Context, sub model.ContactSubmission) error {
	entry, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return fmt.Errorf("encode submission %s: %w", sub.ID, err)
	}
	var buf bytes.Buffer
	buf.Grow(len(entry) + len(EntrySeparator))
	buf.Write(entry)
	buf.WriteString(EntrySeparator)

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, l.opts.perm)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	if l.opts.sync {
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("sync %s: %w", l.path, err)
		}
	}
	return f.Close()
}

// ReadContactLog splits a contact log back into submissions. Blank chunks
// are skipped and a missing log reads as empty.
func ReadContactLog(path string) ([]model.ContactSubmission, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.ContactSubmission{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var out []model.ContactSubmission
	for _, chunk := range bytes.Split(data, []byte(EntrySeparator)) {
		if len(bytes.TrimSpace(chunk)) == 0 {
			continue
		}
		var sub model.ContactSubmission
		if err := json.Unmarshal(chunk, &sub); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
		}
		out = append(out, sub)
	}
	return out, nil
}
