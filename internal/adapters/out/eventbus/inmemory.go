// Package eventbus fans domain events out to in-process observers.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/acms/internal/adapters/out/telemetry"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/domain"
)

var _ out.EventBus = (*InMemory)(nil)

var (
	// ErrStopped is returned by Publish once Stop has been called.
	ErrStopped = errors.New("event bus is stopped")
	// ErrFull is returned when the queue has no room for another event.
	ErrFull = errors.New("event queue is full")
)

const (
	defaultQueueSize = 100
	handlerTimeout   = 30 * time.Second
	drainTimeout     = 5 * time.Second
)

// InMemory queues events and hands each one to every interested handler.
// Publish never blocks: mutating operations must not stall behind slow
// observers, so a full queue drops the event and counts it.
type InMemory struct {
	queue chan domain.Event
	done  chan struct{}

	mu       sync.RWMutex
	handlers []out.EventHandler
	metrics  *telemetry.Metrics
	running  bool
	stopped  bool

	stopOnce sync.Once
	log      zerolog.Logger
}

// NewInMemory returns a bus holding up to queueSize undelivered events.
func NewInMemory(queueSize int, log zerowrap.Logger) *InMemory {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &InMemory{
		queue: make(chan domain.Event, queueSize),
		done:  make(chan struct{}),
		log: log.With().
			Str(zerowrap.FieldLayer, "adapter").
			Str(zerowrap.FieldAdapter, "eventbus").
			Logger(),
	}
}

// SetMetrics attaches the instruments that count dropped events.
func (bus *InMemory) SetMetrics(m *telemetry.Metrics) {
	bus.mu.Lock()
	bus.metrics = m
	bus.mu.Unlock()
}

// Publish stamps the payload into an Event and queues it.
func (bus *InMemory) Publish(eventType domain.EventType, payload any) error {
	event := newEvent(eventType, payload)

	bus.mu.RLock()
	defer bus.mu.RUnlock()
	if bus.stopped {
		return ErrStopped
	}

	select {
	case bus.queue <- event:
		bus.log.Debug().
			Str("event_id", event.ID).
			Str(zerowrap.FieldEvent, string(event.Type)).
			Str(zerowrap.FieldEntityID, event.EntityID).
			Msg("event queued")
		return nil
	default:
		bus.log.Warn().
			Str("event_id", event.ID).
			Str(zerowrap.FieldEvent, string(event.Type)).
			Int("queue_size", cap(bus.queue)).
			Msg("event queue full, dropping event")
		if bus.metrics != nil {
			bus.metrics.RecordDropped(event.Type)
		}
		return fmt.Errorf("%w: dropped %s", ErrFull, event.Type)
	}
}

func newEvent(eventType domain.EventType, payload any) domain.Event {
	event := domain.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      payload,
	}
	switch p := payload.(type) {
	case domain.ResourceEventPayload:
		event.Kind, event.EntityID = p.Kind, p.EntityID
	case domain.BuilderEventPayload:
		event.Kind = domain.KindBuilder
	}
	return event
}

// Subscribe registers a handler for future events.
func (bus *InMemory) Subscribe(handler out.EventHandler) error {
	if handler == nil {
		return errors.New("nil event handler")
	}
	bus.mu.Lock()
	bus.handlers = append(bus.handlers, handler)
	n := len(bus.handlers)
	bus.mu.Unlock()

	bus.log.Debug().Str(zerowrap.FieldHandler, fmt.Sprintf("%T", handler)).Int("handlers", n).Msg("handler subscribed")
	return nil
}

// Unsubscribe removes a previously registered handler.
func (bus *InMemory) Unsubscribe(handler out.EventHandler) error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	i := slices.Index(bus.handlers, handler)
	if i < 0 {
		return fmt.Errorf("handler %T is not subscribed", handler)
	}
	bus.handlers = slices.Delete(bus.handlers, i, i+1)
	return nil
}

// Start launches the dispatcher. Calling it twice is an error.
func (bus *InMemory) Start() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	switch {
	case bus.stopped:
		return ErrStopped
	case bus.running:
		return errors.New("event bus already started")
	}
	bus.running = true

	bus.log.Info().Int("queue_size", cap(bus.queue)).Msg("event bus started")
	go bus.dispatch()
	return nil
}

// Stop refuses new events, delivers what is already queued and waits for the
// dispatcher to finish. A bus that never started stops immediately.
func (bus *InMemory) Stop() error {
	var err error
	bus.stopOnce.Do(func() {
		bus.mu.Lock()
		bus.stopped = true
		running := bus.running
		close(bus.queue)
		bus.mu.Unlock()

		if !running {
			return
		}
		select {
		case <-bus.done:
			bus.log.Info().Msg("event bus stopped")
		case <-time.After(drainTimeout):
			err = errors.New("timed out draining event queue")
			bus.log.Warn().Int("pending", len(bus.queue)).Msg("event bus stop timed out")
		}
	})
	return err
}

func (bus *InMemory) dispatch() {
	defer close(bus.done)
	for event := range bus.queue {
		bus.deliver(event)
	}
}

// deliver runs every matching handler concurrently and waits for all of them,
// so events reach a given handler in publish order.
func (bus *InMemory) deliver(event domain.Event) {
	bus.mu.RLock()
	handlers := slices.Clone(bus.handlers)
	bus.mu.RUnlock()

	var g errgroup.Group
	for _, h := range handlers {
		if !h.CanHandle(event.Type) {
			continue
		}
		g.Go(func() error {
			bus.invoke(h, event)
			return nil
		})
	}
	_ = g.Wait()
}

func (bus *InMemory) invoke(h out.EventHandler, event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	start := time.Now()
	err := h.Handle(ctx, event)

	entry := bus.log.Debug()
	msg := "event handled"
	switch {
	case ctx.Err() != nil:
		entry, msg = bus.log.Warn(), "event handler timed out"
	case err != nil:
		entry, msg = bus.log.Error().Err(err), "event handler failed"
	}
	entry.
		Str("event_id", event.ID).
		Str(zerowrap.FieldEvent, string(event.Type)).
		Str(zerowrap.FieldHandler, fmt.Sprintf("%T", h)).
		Dur(zerowrap.FieldDuration, time.Since(start)).
		Msg(msg)
}
