package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()
	var calls int32
	var payload atomic.Value

	bus.Subscribe(EventGrantCreated, func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		payload.Store(e.Payload)
		return nil
	})
	bus.Subscribe(EventGrantCreated, func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("handler failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Start(ctx)
	bus.Publish(ctx, EventGrantCreated, "g1")
	cancel()
	bus.Wait()

	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Equal(t, "g1", payload.Load())
}

func TestEventBusIgnoresUnknownEventsAndNilBus(t *testing.T) {
	bus := NewEventBus()
	bus.Publish(context.Background(), "nobody.listens", nil)
	bus.Wait()

	var nilBus *EventBus
	assert.NotPanics(t, func() { nilBus.Publish(context.Background(), EventGrantRemoved, nil) })
}
