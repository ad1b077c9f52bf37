// Package logbuf keeps a fixed-capacity ring of recent log lines so they can
// be inspected over HTTP without shelling into the box.
package logbuf

import (
	"bytes"
	"sync"
)

type Buffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 256
	}

	return &Buffer{
		lines: make([]string, capacity),
	}
}

// Write implements io.Writer so the buffer can sit behind the logger's
// mirror output. Each call is treated as one log line.
func (b *Buffer) Write(p []byte) (int, error) {
	line := string(bytes.TrimRight(p, "\n"))
	if line == "" {
		return len(p), nil
	}

	b.mu.Lock()
	b.lines[b.next] = line
	b.next = (b.next + 1) % len(b.lines)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()

	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		out := make([]string, b.next)
		copy(out, b.lines[:b.next])
		return out
	}

	out := make([]string, 0, len(b.lines))
	out = append(out, b.lines[b.next:]...)
	out = append(out, b.lines[:b.next]...)
	return out
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.full {
		return len(b.lines)
	}
	return b.next
}
