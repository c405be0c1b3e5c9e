package builder

import (
	"sync"
	"time"
)

// Event is a progress notification emitted while a build or modification is
// in flight. Stages are coarse on purpose; the payload is for display, not
// for driving client logic.
type Event struct {
	ProjectID string    `json:"projectId"`
	BuildID   string    `json:"buildId,omitempty"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	StageGenerate = "generate"
	StageValidate = "validate"
	StageGuard    = "guard"
	StageWrite    = "write"
	StageReject   = "reject"
	StageDone     = "done"
)

// EventSink receives build events. Publish must not block.
type EventSink interface {
	Publish(Event)
}

// Bus is a fan-out EventSink. Slow subscribers drop events instead of
// stalling the build.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a buffered listener. The returned cancel func closes
// the channel and must be called exactly once.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 64)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
}
