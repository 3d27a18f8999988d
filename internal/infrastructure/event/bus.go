package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vendorhub/console/internal/domain/shared"
	"go.uber.org/zap"
)

// BusConfig tunes asynchronous delivery
type BusConfig struct {
	// Workers is the number of goroutines draining the queue once started
	Workers int
	// QueueSize bounds pending deliveries; a full queue falls back to
	// synchronous delivery on the publisher's goroutine
	QueueSize int
}

// DefaultBusConfig returns the delivery settings used by the server
func DefaultBusConfig() BusConfig {
	return BusConfig{Workers: 2, QueueSize: 256}
}

// BusOption adjusts BusConfig
type BusOption func(*BusConfig)

// WithWorkers sets the number of delivery workers
func WithWorkers(n int) BusOption {
	return func(c *BusConfig) { c.Workers = n }
}

// WithQueueSize sets the delivery queue capacity
func WithQueueSize(n int) BusOption {
	return func(c *BusConfig) { c.QueueSize = n }
}

type delivery struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers events to in-process handlers on a worker pool.
// Before Start, or after Stop, events are delivered synchronously.
// While running they are queued and handled by worker goroutines.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	cfg      BusConfig

	mu      sync.RWMutex
	queue   chan delivery
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	cfg := DefaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
		cfg:      cfg,
	}
}

// Publish hands events to every matching handler. Handler failures are
// logged and never returned to the publisher.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		if b.enqueue(ctx, event) {
			continue
		}
		b.deliver(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) enqueue(ctx context.Context, event shared.DomainEvent) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running.Load() {
		return false
	}
	select {
	case b.queue <- delivery{ctx: context.WithoutCancel(ctx), event: event}:
		return true
	default:
		b.logger.Warn("event queue full, delivering synchronously",
			zap.String("event_type", event.EventType()),
		)
		return false
	}
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start launches the delivery workers
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running.Load() {
		return nil
	}
	b.queue = make(chan delivery, b.cfg.QueueSize)
	for i := 0; i < b.cfg.Workers; i++ {
		b.wg.Add(1)
		go b.worker(b.queue)
	}
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("workers", b.cfg.Workers))
	return nil
}

// Stop drains queued events and waits for the workers, or gives up when
// ctx ends first.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running.Load() {
		b.mu.Unlock()
		return nil
	}
	b.running.Store(false)
	close(b.queue)
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with deliveries pending")
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) worker(queue <-chan delivery) {
	defer b.wg.Done()
	for d := range queue {
		b.deliver(d.ctx, d.event)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.GetHandlers(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("aggregate_id", event.AggregateID()),
				zap.Error(err),
			)
		}
	}
}

// dispatchToHandler shields the bus from panicking handlers
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
