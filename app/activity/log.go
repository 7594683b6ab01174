// Package activity keeps a bounded, most-recent-first feed of user-visible
// events for the dashboard.
package activity

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DisplayLimit is the number of entries the dashboard shows by default.
const DisplayLimit = 50

type Entry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s", e.Time.Format("2006-01-02 15:04:05"), e.Message)
}

// Log is a fixed-capacity ring buffer; the oldest entry is overwritten when full.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	size    int
	now     func() time.Time
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DisplayLimit
	}
	return &Log{
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

func (l *Log) Add(level slog.Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = Entry{Time: l.now(), Level: level.String(), Message: message}
	l.next = (l.next + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
}

// Recent returns up to limit entries, newest first. A non-positive limit returns all.
func (l *Log) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > l.size {
		limit = l.size
	}

	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Log) Capacity() int {
	return len(l.entries)
}
