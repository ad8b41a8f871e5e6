package ports

import (
	"context"

	"github.com/nimafallahian/variant-publisher/internal/domain"
)

// BusMessage represents a unit of work received from the message bus along
// with a mechanism to acknowledge it once processing has completed.
type BusMessage struct {
	Event domain.ChangedEntities

	// Commit acknowledges the underlying message. Nil when the transport has
	// no acknowledgement.
	Commit func(ctx context.Context) error
}

// MessageConsumer exposes a streaming interface for consuming bus messages.
// Implementations must be goroutine-safe and compatible with select-based loops.
type MessageConsumer interface {
	// Consume returns a read-only channel of BusMessage instances and a channel
	// for terminal errors from the consumer loop. Both channels must be closed
	// when the provided context is cancelled or the consumer shuts down.
	Consume(ctx context.Context) (<-chan BusMessage, <-chan error)
}

// EntityConsumer handles one batch of changed entity ids. Execute never
// reports failure to its caller.
type EntityConsumer interface {
	Execute(ctx context.Context, entityIDs []string, scope string)
}
