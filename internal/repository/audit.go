package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
)

// AuditRepository mirrors session audit trails into Redis lists keyed "audit:<actor>".
// Lists expire with the session, so nothing outlives it.
type AuditRepository interface {
	Append(ctx context.Context, evt audit.Event) error
	List(ctx context.Context, actor string) ([]audit.Event, error)
}

type dbAudit struct {
	client    *redis.Client
	ttl       time.Duration
	maxEvents int64
}

// NewAuditRepository keeps at most maxEvents per session (0 means unbounded)
// and refreshes a ttl expiry on every append (0 means no expiry).
func NewAuditRepository(client *redis.Client, ttl time.Duration, maxEvents int) AuditRepository {
	return &dbAudit{
		client:    client,
		ttl:       ttl,
		maxEvents: int64(maxEvents),
	}
}

func (that *dbAudit) Append(ctx context.Context, evt audit.Event) error {
	eventJSON, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("could not marshal audit event: %w", err)
	}

	auditKey := "audit:" + evt.Actor
	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, auditKey, eventJSON)
		if that.maxEvents > 0 {
			pipe.LTrim(ctx, auditKey, -that.maxEvents, -1)
		}
		if that.ttl > 0 {
			pipe.Expire(ctx, auditKey, that.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push audit event: %w", err)
	}

	return nil
}

func (that *dbAudit) List(ctx context.Context, actor string) ([]audit.Event, error) {
	auditKey := "audit:" + actor

	response, err := that.client.LRange(ctx, auditKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}

	events := make([]audit.Event, 0, len(response))
	for _, raw := range response {
		var evt audit.Event
		if err = json.Unmarshal([]byte(raw), &evt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit event: %w", err)
		}
		events = append(events, evt)
	}

	return events, nil
}
