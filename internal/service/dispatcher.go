package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nimafallahian/variant-publisher/internal/ports"
)

// ErrBusClosed is returned by Start when the bus stops delivering without
// reporting an error while the context is still live.
var ErrBusClosed = errors.New("message bus closed")

// unroutedEventType labels messages whose event type has no consumer.
const unroutedEventType = "unrouted"

// Dispatcher orchestrates reading changed-entity messages from the bus,
// routing them by event type to entity consumers, and acknowledging them.
type Dispatcher struct {
	logger      *slog.Logger
	consumer    ports.MessageConsumer
	workerCount int

	mu        sync.RWMutex
	consumers map[string]ports.EntityConsumer
}

// NewDispatcher constructs a new Dispatcher.
func NewDispatcher(logger *slog.Logger, consumer ports.MessageConsumer, workerCount int) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Dispatcher{
		logger:      logger,
		consumer:    consumer,
		workerCount: workerCount,
		consumers:   make(map[string]ports.EntityConsumer),
	}
}

// Register routes messages of eventType to c, replacing any previous route.
func (d *Dispatcher) Register(eventType string, c ports.EntityConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumers[eventType] = c
}

func (d *Dispatcher) route(eventType string) (ports.EntityConsumer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.consumers[eventType]
	return c, ok
}

// Start begins consuming messages and processing them with a worker pool.
// It returns nil once the context is cancelled. If the bus stops first,
// Start returns the error it reported, or ErrBusClosed.
func (d *Dispatcher) Start(ctx context.Context) error {
	msgCh, errCh := d.consumer.Consume(ctx)

	var wg sync.WaitGroup
	wg.Add(d.workerCount)

	for i := 0; i < d.workerCount; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgCh:
					if !ok {
						return
					}
					d.handleMessage(ctx, msg)
				}
			}
		}()
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil
	}

	// Adapters report their terminal error before closing the message channel.
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			d.logger.Error("message bus consumer stopped", "error", err)
			return err
		}
	default:
	}
	return ErrBusClosed
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg ports.BusMessage) {
	eventType := msg.Event.Meta.EventType

	c, ok := d.route(eventType)
	if !ok {
		busMessagesTotal.WithLabelValues(unroutedEventType).Inc()
		d.logger.Warn("no consumer registered for event type", "event_type", eventType)
		d.commit(ctx, msg)
		return
	}

	busMessagesTotal.WithLabelValues(eventType).Inc()

	// Consumers never fail, so the message is acknowledged whatever the
	// import outcome was.
	c.Execute(ctx, msg.Event.EntityIDs(), msg.Event.Meta.Scope)
	d.commit(ctx, msg)
}

func (d *Dispatcher) commit(ctx context.Context, msg ports.BusMessage) {
	if msg.Commit == nil {
		return
	}
	if err := msg.Commit(ctx); err != nil {
		d.logger.Error("failed to acknowledge message", "event_type", msg.Event.Meta.EventType, "error", err)
	}
}
