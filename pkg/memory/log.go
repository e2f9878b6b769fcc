package memory

import (
	"sync"

	"github.com/aaaravM/PathLearn/pkg/model"
)

// DefaultCapacity bounds how many interactions a learner's log retains.
const DefaultCapacity = 100

// InteractionLog is a bounded, ordered record of a learner's recent answer
// events. Insertion order is chronological order; when the log overflows the
// oldest events are dropped first.
type InteractionLog struct {
	mu       sync.Mutex
	events   []model.InteractionEvent
	capacity int
}

// NewInteractionLog creates an empty log. A non-positive capacity falls back
// to DefaultCapacity.
func NewInteractionLog(capacity int) *InteractionLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InteractionLog{capacity: capacity}
}

// Record appends an event, evicting the oldest entries if capacity is
// exceeded. It always succeeds.
func (l *InteractionLog) Record(ev model.InteractionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, ev)
	if len(l.events) > l.capacity {
		l.events = l.events[len(l.events)-l.capacity:]
	}
}

// Recent returns a copy of the last min(n, len) events, oldest first.
func (l *InteractionLog) Recent(n int) []model.InteractionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.events) {
		n = len(l.events)
	}
	if n <= 0 {
		return nil
	}
	out := make([]model.InteractionEvent, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// All returns a copy of the full log, oldest first.
func (l *InteractionLog) All() []model.InteractionEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.InteractionEvent, len(l.events))
	copy(out, l.events)
	return out
}

// Len reports the number of retained events.
func (l *InteractionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}
