package runlog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
)

// TableSink appends records to a space-separated text table. A header line
// is written when the file is new or empty.
type TableSink struct {
	path string
	mu   sync.Mutex
}

// NewTableSink creates a sink for path. The file is created on first Append.
func NewTableSink(path string) *TableSink {
	return &TableSink{path: path}
}

// Append implements Sink.
func (s *TableSink) Append(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open timing table: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat timing table: %w", err)
	}

	var b strings.Builder
	if info.Size() == 0 {
		b.WriteString(strings.Join(columns, " "))
		b.WriteByte('\n')
	}
	b.WriteString(strings.Join(r.fields(), " "))
	b.WriteByte('\n')

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append timing table: %w", err)
	}
	return f.Sync()
}
