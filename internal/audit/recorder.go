package audit

import (
	"context"
	"fmt"
	"time"
)

// Store keeps the events of each session in append order.
type Store interface {
	Append(ctx context.Context, evt Event) error
	List(ctx context.Context, actor string) ([]Event, error)
}

// Recorder stamps and stores audit events. It never feeds anything back into the game.
type Recorder struct {
	store Store
	clock func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, clock: time.Now}
}

// Record appends an event, setting a UTC timestamp when none is given.
// It is a no-op when the recorder or its store is nil.
func (that *Recorder) Record(ctx context.Context, evt Event) error {
	if that == nil || that.store == nil {
		return nil
	}

	if evt.Timestamp.IsZero() {
		if that.clock == nil {
			evt.Timestamp = time.Now().UTC()
		} else {
			evt.Timestamp = that.clock().UTC()
		}
	}

	if err := that.store.Append(ctx, evt.Clone()); err != nil {
		return fmt.Errorf("failed to append %s event: %w", evt.Action, err)
	}

	return nil
}

// Events returns the trail of one actor, oldest first.
func (that *Recorder) Events(ctx context.Context, actor string) ([]Event, error) {
	if that == nil || that.store == nil {
		return nil, nil
	}

	events, err := that.store.List(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return events, nil
}
