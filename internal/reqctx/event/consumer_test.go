package event

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/penxle/penxle-go/internal/pkg/pkgroutine"
	"github.com/penxle/penxle-go/internal/reqctx/entity"
	"github.com/stretchr/testify/require"
)

type sinkFunc func(ctx context.Context, event entity.TrackEvent) error

func (f sinkFunc) Deliver(ctx context.Context, event entity.TrackEvent) error {
	return f(ctx, event)
}

func TestDeliveryConsumerRetriesAndIdempotent(t *testing.T) {
	bus := NewBus(10)

	var attempts int32
	done := make(chan struct{})
	sink := sinkFunc(func(ctx context.Context, event entity.TrackEvent) error {
		n := atomic.AddInt32(&attempts, 1)
		if n < 3 {
			return errors.New("temporary failure")
		}
		select {
		case <-done:
		default:
			close(done)
		}
		return nil
	})

	consumer := NewDeliveryConsumer(bus, sink, ConsumerConfig{
		Workers:     1,
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
	})
	runner := pkgroutine.NewManager(2)
	consumer.Start(context.Background(), runner)

	event := entity.TrackEvent{ID: 42, Name: "post_view"}
	require.True(t, bus.Offer(event))
	require.True(t, bus.Offer(event))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for sink")
	}

	require.NoError(t, consumer.Stop(context.Background()))
	require.NoError(t, runner.Wait())
	require.EqualValues(t, 3, atomic.LoadInt32(&attempts))
}

func TestDeliveryConsumerGivesUp(t *testing.T) {
	bus := NewBus(10)

	var attempts int32
	sink := sinkFunc(func(context.Context, entity.TrackEvent) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("down")
	})

	consumer := NewDeliveryConsumer(bus, sink, ConsumerConfig{
		Workers:     2,
		MaxRetries:  1,
		BaseBackoff: time.Millisecond,
	})
	consumer.Start(context.Background(), nil)

	require.True(t, bus.Offer(entity.TrackEvent{ID: 1, Name: "a"}))
	require.True(t, bus.Offer(entity.TrackEvent{ID: 2, Name: "b"}))
	require.NoError(t, consumer.Stop(context.Background()))

	require.EqualValues(t, 4, atomic.LoadInt32(&attempts))
}

func TestDeliveryConsumerDrainsOnStop(t *testing.T) {
	bus := NewBus(100)

	var (
		mu   sync.Mutex
		seen []string
	)
	sink := sinkFunc(func(_ context.Context, event entity.TrackEvent) error {
		mu.Lock()
		seen = append(seen, event.Name)
		mu.Unlock()
		return nil
	})

	for _, name := range []string{"a", "b", "c"} {
		require.True(t, bus.Offer(entity.TrackEvent{Name: name}))
	}

	consumer := NewDeliveryConsumer(bus, sink, ConsumerConfig{Workers: 1})
	consumer.Start(context.Background(), nil)
	require.NoError(t, consumer.Stop(context.Background()))

	require.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestDeliveryConsumerBackoffHonorsContext(t *testing.T) {
	bus := NewBus(1)
	ctx, cancel := context.WithCancel(context.Background())

	var attempts int32
	sink := sinkFunc(func(context.Context, entity.TrackEvent) error {
		atomic.AddInt32(&attempts, 1)
		cancel()
		return errors.New("down")
	})

	consumer := NewDeliveryConsumer(bus, sink, ConsumerConfig{
		Workers:     1,
		MaxRetries:  5,
		BaseBackoff: time.Hour,
	})
	consumer.Start(ctx, nil)

	require.True(t, bus.Offer(entity.TrackEvent{ID: 7, Name: "x"}))

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, consumer.Stop(stopCtx))
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestBusOffer(t *testing.T) {
	bus := NewBus(1)

	require.True(t, bus.Offer(entity.TrackEvent{Name: "a"}))
	require.False(t, bus.Offer(entity.TrackEvent{Name: "b"}), "full bus must reject")

	bus.Close()
	bus.Close()
	require.False(t, bus.Offer(entity.TrackEvent{Name: "c"}))
}

func TestWindowForgetsOldest(t *testing.T) {
	w := newWindow(2)

	require.True(t, w.add(1))
	require.True(t, w.add(2))
	require.False(t, w.add(1))
	require.True(t, w.add(3))
	require.True(t, w.add(1), "1 was evicted by 3")
	require.False(t, w.add(3))
}
