// util/event_bus.go
package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/ucook/accessflow/logging"
)

const (
	EventRequestCreated   = "request.created"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
	EventItemApproved     = "item.approved"
	EventItemRejected     = "item.rejected"
	EventItemProvisioned  = "item.provisioned"
	EventGrantCreated     = "grant.created"
	EventGrantToRemove    = "grant.to_remove"
	EventGrantRemoved     = "grant.removed"
	EventGrantReactivated = "grant.reactivated"
	EventGrantsImported   = "grants.imported"
	EventOwnerAdded       = "owner.added"
	EventOwnerRemoved     = "owner.removed"
)

// WorkflowEvents lists every event type the services publish.
var WorkflowEvents = []string{
	EventRequestCreated, EventRequestApproved, EventRequestRejected,
	EventItemApproved, EventItemRejected, EventItemProvisioned,
	EventGrantCreated, EventGrantToRemove, EventGrantRemoved, EventGrantReactivated,
	EventGrantsImported, EventOwnerAdded, EventOwnerRemoved,
}

// Event represents an event in the system
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

// EventBus fans events out to subscribers asynchronously.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	errorChan   chan error
	wg          sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		errorChan:   make(chan error, 100),
	}
}

func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish never blocks on handlers. A nil bus drops the event.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	handlers := eb.subscribers[eventType]
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{Type: eventType, Payload: payload}
	// handlers outlive the request that triggered them
	ctx = context.WithoutCancel(ctx)

	for _, handler := range handlers {
		eb.wg.Add(1)
		go func(h EventHandler) {
			defer eb.wg.Done()
			if err := h(ctx, event); err != nil {
				select {
				case eb.errorChan <- fmt.Errorf("event handler error for %s: %w", eventType, err):
				default:
					logger.Error("Error channel full, logging event handler error",
						zap.Error(err),
						zap.String("eventType", eventType))
				}
			}
		}(handler)
	}
}

// Start drains handler errors until ctx is done.
func (eb *EventBus) Start(ctx context.Context) {
	go eb.processErrors(ctx)
}

// Wait blocks until every in-flight handler has returned.
func (eb *EventBus) Wait() {
	eb.wg.Wait()
}

func (eb *EventBus) processErrors(ctx context.Context) {
	for {
		select {
		case err := <-eb.errorChan:
			logger.Error("Event handler error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}
