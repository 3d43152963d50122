package handler

import (
	"sync"

	"github.com/pavelanni/mockinterview/internal/session"
)

// DefaultEventCapacity is the number of events kept for polling clients.
const DefaultEventCapacity = 256

// EventEntry is a session event with its position in the log and, when
// served, its localized text.
type EventEntry struct {
	Seq uint64 `json:"seq"`
	session.Event
	Message string `json:"message,omitempty"`
}

// EventLog keeps the most recent session events so clients can poll with
// ?since=N. It implements session.Observer.
type EventLog struct {
	mu      sync.Mutex
	seq     uint64
	limit   int
	entries []EventEntry
}

// NewEventLog creates a log holding at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &EventLog{limit: capacity}
}

// Notify appends ev, dropping the oldest entry when full.
func (l *EventLog) Notify(ev session.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.entries = append(l.entries, EventEntry{Seq: l.seq, Event: ev})
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// Since returns the entries after seq and the latest sequence number.
func (l *EventLog) Since(seq uint64) ([]EventEntry, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out, l.seq
}
