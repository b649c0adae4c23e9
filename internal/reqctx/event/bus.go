package event

import (
	"sync"

	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// Bus is a bounded in-process queue of analytics events.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	ch     chan entity.TrackEvent
}

func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}

	return &Bus{
		ch: make(chan entity.TrackEvent, buffer),
	}
}

// Offer enqueues event without waiting. It reports false when the queue is
// full or closed.
func (b *Bus) Offer(event entity.TrackEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}

	select {
	case b.ch <- event:
		return true
	default:
		return false
	}
}

func (b *Bus) Subscribe() <-chan entity.TrackEvent {
	return b.ch
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.ch)
}
