// Package emitter writes sealed batches as line-delimited JSON records.
package emitter

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/offlinefirst/actioncap/pkg/session"
)

// Stdout is the output path that selects the process standard output.
const Stdout = "-"

// Writer encodes one record per line and flushes after every record so the
// consumer sees each action as soon as it is sealed.
type Writer struct {
	mu      sync.Mutex
	buf     *bufio.Writer
	enc     *json.Encoder
	closer  io.Closer
	records int
	closed  bool
}

// NewWriter wraps out. The caller keeps ownership of out.
func NewWriter(out io.Writer) *Writer {
	buf := bufio.NewWriter(out)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{buf: buf, enc: enc}
}

// Open creates a writer for path, truncating an existing file. An empty path
// or Stdout writes to standard output.
func Open(path string) (*Writer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == Stdout {
		return NewWriter(os.Stdout), nil
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open record output: %w", err)
	}
	w := NewWriter(file)
	w.closer = file
	return w, nil
}

// Emit writes batch as a single JSON line.
func (w *Writer) Emit(batch session.Batch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	if err := w.enc.Encode(batch); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("flush record: %w", err)
	}
	w.records++
	return nil
}

// Records returns the number of records written.
func (w *Writer) Records() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.records
}

// Close flushes buffered output and closes the underlying file if the writer
// opened it.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.buf.Flush()
	if w.closer != nil {
		err = errors.Join(err, w.closer.Close())
	}
	if err != nil {
		return fmt.Errorf("close record output: %w", err)
	}
	return nil
}

// ErrClosed is returned by Emit after Close.
var ErrClosed = errors.New("record output closed")
