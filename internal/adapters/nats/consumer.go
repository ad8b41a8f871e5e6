package nats

import (
	"context"
	"fmt"
	"log/slog"

	natspkg "github.com/nats-io/nats.go"

	"github.com/nimafallahian/variant-publisher/internal/domain"
	"github.com/nimafallahian/variant-publisher/internal/ports"
)

// Consumer implements ports.MessageConsumer with a core NATS queue
// subscription. Core NATS has no acknowledgement, so messages carry no
// Commit function.
type Consumer struct {
	nc      *natspkg.Conn
	subject string
	queue   string
	logger  *slog.Logger
}

// NewConsumer connects to url and prepares a queue subscription on subject.
func NewConsumer(logger *slog.Logger, url, subject, queue string) (*Consumer, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject must not be empty")
	}
	if url == "" {
		url = natspkg.DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := natspkg.Connect(url, natspkg.Name("variant-publisher"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}

	return &Consumer{nc: nc, subject: subject, queue: queue, logger: logger}, nil
}

// Consume subscribes and forwards decoded messages until ctx is cancelled.
// Malformed payloads are logged and dropped.
func (c *Consumer) Consume(ctx context.Context) (<-chan ports.BusMessage, <-chan error) {
	msgCh := make(chan ports.BusMessage)
	errCh := make(chan error, 1)

	raw := make(chan *natspkg.Msg, 64)
	sub, err := c.nc.ChanQueueSubscribe(c.subject, c.queue, raw)
	if err != nil {
		errCh <- fmt.Errorf("subscribe %s: %w", c.subject, err)
		close(errCh)
		close(msgCh)
		return msgCh, errCh
	}

	go func() {
		defer close(msgCh)
		defer close(errCh)
		defer func() { _ = sub.Unsubscribe() }()

		for {
			select {
			case <-ctx.Done():
				return
			case m := <-raw:
				event, err := domain.ParseChangedEntities(m.Data)
				if err != nil {
					c.logger.Warn("skipping malformed message", "subject", m.Subject, "error", err)
					continue
				}
				select {
				case <-ctx.Done():
					return
				case msgCh <- ports.BusMessage{Event: event}:
				}
			}
		}
	}()

	return msgCh, errCh
}

// Close drains the connection.
func (c *Consumer) Close() error {
	if c.nc == nil {
		return nil
	}
	return c.nc.Drain()
}
