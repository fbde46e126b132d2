package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lifeops/internal/shared/logger"
)

// Wildcard subscribes a handler to every event type
const Wildcard = "*"

// Event is anything that can travel on the bus
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler reacts to one event. A returned error triggers a retry.
type Handler func(ctx context.Context, event Event) error

// Publisher is the narrow side of the bus used by usecases
type Publisher interface {
	PublishAndForget(ctx context.Context, event Event)
}

// Bus is the full bus surface the composition root wires modules against
type Bus interface {
	Publisher
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	GetSubscriberCount(eventType string) int
	Wait()
}

// BusConfig controls delivery
type BusConfig struct {
	// AsyncProcessing runs the handlers of one event concurrently
	AsyncProcessing bool
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultBusConfig delivers in order with two retries
func DefaultBusConfig() BusConfig {
	return BusConfig{
		MaxRetries: 2,
		RetryDelay: 100 * time.Millisecond,
	}
}

// EventBus is an in-process Bus. Handlers for an exact type run before Wildcard handlers.
type EventBus struct {
	cfg BusConfig
	log logger.Logger

	mu   sync.RWMutex
	subs map[string][]Handler

	pending sync.WaitGroup
}

var _ Bus = (*EventBus)(nil)

func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

func NewEventBusWithConfig(log logger.Logger, cfg BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &EventBus{
		cfg:  cfg,
		log:  log.WithComponent("eventbus"),
		subs: make(map[string][]Handler),
	}
}

func (b *EventBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], handler)
	b.mu.Unlock()
	b.log.Debugf("handler subscribed to %s", eventType)
}

// GetSubscriberCount counts the handlers registered under exactly eventType
func (b *EventBus) GetSubscriberCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[eventType])
}

// Publish delivers event to every matching handler and waits for them. The
// result joins the errors of all handlers that still failed after retrying.
func (b *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := b.handlersFor(event.Type())
	if len(handlers) == 0 {
		return nil
	}

	if !b.cfg.AsyncProcessing {
		var errs []error
		for i, h := range handlers {
			if err := b.deliver(ctx, event, h, i); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	errs := make([]error, len(handlers))
	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = b.deliver(ctx, event, h, i)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// PublishAndForget delivers event in the background. Handlers keep the values
// of ctx but not its cancellation.
func (b *EventBus) PublishAndForget(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		if err := b.Publish(ctx, event); err != nil {
			b.log.Errorf("delivery of %s failed: %v", event.Type(), err)
		}
	}()
}

// Wait blocks until every PublishAndForget delivery has finished
func (b *EventBus) Wait() {
	b.pending.Wait()
}

func (b *EventBus) handlersFor(eventType string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	exact, wild := b.subs[eventType], b.subs[Wildcard]
	if eventType == Wildcard {
		wild = nil
	}
	out := make([]Handler, 0, len(exact)+len(wild))
	return append(append(out, exact...), wild...)
}

// deliver runs h until it succeeds, retries run out or ctx is done
func (b *EventBus) deliver(ctx context.Context, event Event, h Handler, idx int) error {
	attempts := b.cfg.MaxRetries + 1
	var err error
	for n := 1; n <= attempts; n++ {
		if err = h(ctx, event); err == nil {
			return nil
		}
		b.log.Warnf("handler %d for %s failed (attempt %d/%d): %v", idx, event.Type(), n, attempts, err)
		if n == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("handler %d for %s: %w", idx, event.Type(), errors.Join(err, ctx.Err()))
		case <-time.After(b.cfg.RetryDelay):
		}
	}
	return fmt.Errorf("handler %d for %s failed after %d attempts: %w", idx, event.Type(), attempts, err)
}

type basicEvent struct {
	typ    string
	data   interface{}
	at     time.Time
	source string
}

// NewBasicEvent builds an event with an "unknown" source
func NewBasicEvent(eventType string, data interface{}) Event {
	return NewBasicEventWithSource(eventType, data, "unknown")
}

// NewBasicEventWithSource builds an event stamped with the current UTC time
func NewBasicEventWithSource(eventType string, data interface{}, source string) Event {
	return basicEvent{typ: eventType, data: data, at: time.Now().UTC(), source: source}
}

func (e basicEvent) Type() string { return e.typ }

func (e basicEvent) Data() interface{} { return e.data }

func (e basicEvent) Timestamp() time.Time { return e.at }

func (e basicEvent) Source() string { return e.source }
