package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nimafallahian/variant-publisher/internal/domain"
	"github.com/nimafallahian/variant-publisher/internal/ports"
)

// Consumer implements ports.MessageConsumer using segmentio/kafka-go.
type Consumer struct {
	reader *kafkago.Reader
	logger *slog.Logger
}

// NewConsumer constructs a new Consumer configured for manual offset commits.
func NewConsumer(logger *slog.Logger, brokers []string, topic, groupID string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers must not be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("groupID must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0, // manual commits only
	})

	return &Consumer{reader: reader, logger: logger}, nil
}

// Stream starts a goroutine that continuously reads from Kafka and pushes
// decoded messages onto a channel until the context is cancelled.
// Undecodable payloads are committed and skipped so they cannot block the
// partition.
func (c *Consumer) Stream(ctx context.Context) (<-chan ports.BusMessage, <-chan error) {
	msgCh := make(chan ports.BusMessage)
	errCh := make(chan error, 1)

	go func() {
		defer close(msgCh)
		defer close(errCh)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				errCh <- err
				return
			}

			event, err := domain.ParseChangedEntities(m.Value)
			if err != nil {
				c.logger.Warn("skipping malformed message",
					"topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
				if cerr := c.reader.CommitMessages(ctx, m); cerr != nil && !errors.Is(cerr, context.Canceled) {
					errCh <- cerr
					return
				}
				continue
			}

			bmsg := ports.BusMessage{
				Event: event,
				Commit: func(commitCtx context.Context) error {
					return c.reader.CommitMessages(commitCtx, m)
				},
			}

			select {
			case <-ctx.Done():
				return
			case msgCh <- bmsg:
			}
		}
	}()

	return msgCh, errCh
}

// Consume satisfies the ports.MessageConsumer interface by delegating to Stream.
func (c *Consumer) Consume(ctx context.Context) (<-chan ports.BusMessage, <-chan error) {
	return c.Stream(ctx)
}

// Close releases the underlying reader resources.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
