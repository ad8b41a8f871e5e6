package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nimafallahian/variant-publisher/internal/ports"
)

// ErrUnknownService is returned for service names with no registered dialer.
var ErrUnknownService = errors.New("connector: unknown service")

// Dialer opens a connection to a storefront service.
type Dialer func(ctx context.Context) (ports.VariantsConnection, error)

// endpoint serialises dials for one service name.
type endpoint struct {
	mu   sync.Mutex
	dial Dialer
	conn ports.VariantsConnection
}

// Registry implements ports.Connector. Connections are dialed on first use
// and reused afterwards; failed dials are retried on the next request. A
// slow dial only blocks callers of the same service name.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*endpoint
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		endpoints: make(map[string]*endpoint),
	}
}

// Register associates serviceName with dial. A previously dialed connection
// for the same name is dropped.
func (r *Registry) Register(serviceName string, dial Dialer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpoints[serviceName] = &endpoint{dial: dial}
}

// GetConnection implements ports.Connector.
func (r *Registry) GetConnection(ctx context.Context, serviceName string) (ports.VariantsConnection, error) {
	r.mu.RLock()
	ep, ok := r.endpoints[serviceName]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, serviceName)
	}

	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.conn != nil {
		return ep.conn, nil
	}

	conn, err := ep.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial %q: %w", serviceName, err)
	}
	if conn == nil {
		return nil, fmt.Errorf("dial %q: nil connection", serviceName)
	}
	ep.conn = conn
	return conn, nil
}
