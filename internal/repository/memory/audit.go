package memory

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
)

// AuditStore keeps audit trails in process memory. Nothing survives a restart.
type AuditStore struct {
	mu        sync.RWMutex
	events    map[string][]audit.Event
	maxEvents int
}

// NewAuditStore keeps at most maxEvents per actor, dropping the oldest; 0 means unbounded.
func NewAuditStore(maxEvents int) *AuditStore {
	return &AuditStore{
		events:    make(map[string][]audit.Event),
		maxEvents: maxEvents,
	}
}

func (that *AuditStore) Append(_ context.Context, evt audit.Event) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	trail := append(that.events[evt.Actor], evt.Clone())
	if that.maxEvents > 0 && len(trail) > that.maxEvents {
		trail = append([]audit.Event(nil), trail[len(trail)-that.maxEvents:]...)
	}
	that.events[evt.Actor] = trail

	return nil
}

func (that *AuditStore) List(_ context.Context, actor string) ([]audit.Event, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	trail := that.events[actor]
	out := make([]audit.Event, len(trail))
	for i, evt := range trail {
		out[i] = evt.Clone()
	}

	return out, nil
}
