package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/penxle/penxle-go/internal/reqctx/entity"
)

// Sink delivers one analytics event to its destination.
type Sink interface {
	Deliver(ctx context.Context, event entity.TrackEvent) error
}

// Runner starts named background tasks.
type Runner interface {
	Go(ctx context.Context, name string, f func(ctx context.Context) error) bool
}

type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
	// DedupWindow is how many recent event ids are remembered.
	DedupWindow int
}

// DeliveryConsumer drains the bus into a sink with retries.
type DeliveryConsumer struct {
	bus         *Bus
	sink        Sink
	workers     int
	maxRetries  int
	baseBackoff time.Duration
	seen        *window
	wg          sync.WaitGroup
}

func NewDeliveryConsumer(bus *Bus, sink Sink, cfg ConsumerConfig) *DeliveryConsumer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	dedup := cfg.DedupWindow
	if dedup < 1 {
		dedup = 4096
	}

	return &DeliveryConsumer{
		bus:         bus,
		sink:        sink,
		workers:     workers,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		seen:        newWindow(dedup),
	}
}

// Start launches the workers through runner, or plain goroutines when runner
// is nil. Workers stop once the bus is closed and drained. ctx bounds delivery
// and backoff, not the worker lifetime.
func (c *DeliveryConsumer) Start(ctx context.Context, runner Runner) {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)

		work := func(ctx context.Context) error {
			defer c.wg.Done()
			c.worker(ctx)
			return nil
		}

		if runner == nil {
			go func() { _ = work(ctx) }()
			continue
		}

		if !runner.Go(ctx, fmt.Sprintf("analytics-delivery-%d", i), work) {
			c.wg.Done()
		}
	}
}

// Stop closes the bus and waits for in-flight events to be delivered.
func (c *DeliveryConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *DeliveryConsumer) worker(ctx context.Context) {
	for event := range c.bus.Subscribe() {
		c.processEvent(ctx, event)
	}
}

func (c *DeliveryConsumer) processEvent(ctx context.Context, event entity.TrackEvent) {
	if c.sink == nil {
		return
	}

	if event.ID != 0 && !c.seen.add(event.ID) {
		slog.InfoContext(ctx, "skip duplicate analytics event", "event_id", event.ID, "event", event.Name)
		return
	}

	backoff := c.baseBackoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		err := c.sink.Deliver(ctx, event)
		if err == nil {
			return
		}

		if attempt == c.maxRetries {
			slog.ErrorContext(ctx, "failed to deliver analytics event after retries", "event_id", event.ID, "event", event.Name, "error", err)
			return
		}

		if !sleepBackoff(ctx, backoff) {
			slog.WarnContext(ctx, "analytics delivery abandoned", "event_id", event.ID, "event", event.Name, "because", ctx.Err())
			return
		}
		backoff *= 2
	}
}

func sleepBackoff(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// window remembers the last n ids added.
type window struct {
	mu   sync.Mutex
	set  map[int64]struct{}
	ring []int64
	next int
}

func newWindow(n int) *window {
	return &window{
		set:  make(map[int64]struct{}, n),
		ring: make([]int64, 0, n),
	}
}

// add reports false when id is already in the window.
func (w *window) add(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.set[id]; ok {
		return false
	}

	if len(w.ring) < cap(w.ring) {
		w.ring = append(w.ring, id)
	} else {
		delete(w.set, w.ring[w.next])
		w.ring[w.next] = id
		w.next = (w.next + 1) % len(w.ring)
	}
	w.set[id] = struct{}{}

	return true
}
