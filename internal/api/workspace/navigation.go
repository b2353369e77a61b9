package workspace

import (
	"context"
	"sync"

	"github.com/gramsight/dashboard/internal/core/domain"
)

// Navigation holds the destination the client should move to next. The
// outcome handler writes it; the client collects it with Take.
type Navigation struct {
	mu      sync.Mutex
	pending domain.Destination
}

func (n *Navigation) Navigate(_ context.Context, dest domain.Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = dest
}

// Take returns the pending destination and clears it.
func (n *Navigation) Take() domain.Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	d := n.pending
	n.pending = domain.DestinationNone
	return d
}
