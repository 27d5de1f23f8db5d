// Package tasklog captures the log output of a single task run so it can be
// persisted next to the run record.
package tasklog

import (
	"bytes"
	"sync"
)

// DefaultFlushLines is the number of buffered lines that triggers an
// automatic flush.
const DefaultFlushLines = 100

// FlushFunc receives buffered text. It is never called with an empty string.
type FlushFunc func(text string) error

// Buffer is an io.Writer that accumulates log lines and hands them to a
// FlushFunc in batches.
type Buffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	pending int
	total   int
	every   int
	flush   FlushFunc
	err     error
}

// NewBuffer creates a buffer flushing every `every` lines. A non-positive
// value selects DefaultFlushLines.
func NewBuffer(every int, flush FlushFunc) *Buffer {
	if every <= 0 {
		every = DefaultFlushLines
	}
	return &Buffer{every: every, flush: flush}
}

// Write appends p. It never fails; flush errors are kept for Err.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf.Write(p)
	n := bytes.Count(p, []byte{'\n'})
	b.pending += n
	b.total += n
	if b.pending >= b.every {
		b.flushLocked()
	}
	return len(p), nil
}

// Flush hands any buffered text to the FlushFunc.
func (b *Buffer) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
	return b.err
}

func (b *Buffer) flushLocked() {
	if b.buf.Len() == 0 {
		return
	}
	text := b.buf.String()
	b.buf.Reset()
	b.pending = 0
	if b.flush == nil {
		return
	}
	if err := b.flush(text); err != nil && b.err == nil {
		b.err = err
	}
}

// Lines returns the number of lines written so far.
func (b *Buffer) Lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Err returns the first flush error.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
