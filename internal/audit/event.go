package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-audit/internal/entity"
)

// Action tags what happened.
type Action string

const (
	ActionMove  Action = "MOVE"
	ActionReset Action = "RESET"
	ActionError Action = "ERROR"
)

var ErrUnknownMetaKind = errors.New("unknown audit meta kind")

// Meta is the action-specific payload of an event: MoveMeta, ResetMeta or ErrorMeta.
type Meta interface {
	Kind() Action
}

type MoveMeta struct {
	Index  int
	Player entity.Mark
}

type ResetMeta struct{}

// ErrorMeta describes a rejected action. Index is nil when the request carried no usable cell.
type ErrorMeta struct {
	Message string
	Index   *int
}

func (MoveMeta) Kind() Action  { return ActionMove }
func (ResetMeta) Kind() Action { return ActionReset }
func (ErrorMeta) Kind() Action { return ActionError }

// Event is one entry of a session's audit trail.
type Event struct {
	Timestamp time.Time
	Action    Action
	Actor     string
	Before    *entity.Board
	After     *entity.Board
	Meta      Meta
}

func NewMoveEvent(actor string, before, after entity.Board, index int, player entity.Mark) Event {
	return Event{
		Action: ActionMove,
		Actor:  actor,
		Before: &before,
		After:  &after,
		Meta:   MoveMeta{Index: index, Player: player},
	}
}

func NewResetEvent(actor string, before, after entity.Board) Event {
	return Event{
		Action: ActionReset,
		Actor:  actor,
		Before: &before,
		After:  &after,
		Meta:   ResetMeta{},
	}
}

// NewErrorEvent records a rejected action against the unchanged board.
func NewErrorEvent(actor string, board entity.Board, message string, index *int) Event {
	if index != nil {
		i := *index
		index = &i
	}

	return Event{
		Action: ActionError,
		Actor:  actor,
		Before: &board,
		Meta:   ErrorMeta{Message: message, Index: index},
	}
}

// Clone returns an event that shares no boards with the receiver.
func (that Event) Clone() Event {
	out := that
	if that.Before != nil {
		board := *that.Before
		out.Before = &board
	}
	if that.After != nil {
		board := *that.After
		out.After = &board
	}
	if meta, ok := that.Meta.(ErrorMeta); ok && meta.Index != nil {
		index := *meta.Index
		meta.Index = &index
		out.Meta = meta
	}

	return out
}

type wireMeta struct {
	Kind    Action      `json:"kind"`
	Index   *int        `json:"index,omitempty"`
	Player  entity.Mark `json:"player,omitempty"`
	Message string      `json:"message,omitempty"`
}

type wireEvent struct {
	Timestamp string        `json:"timestamp"`
	Action    Action        `json:"action"`
	Actor     string        `json:"actor"`
	Before    *entity.Board `json:"before,omitempty"`
	After     *entity.Board `json:"after,omitempty"`
	Meta      *wireMeta     `json:"meta,omitempty"`
}

// MarshalJSON writes the timestamp as ISO-8601 and flattens Meta with a "kind" tag.
func (that Event) MarshalJSON() ([]byte, error) {
	wire := wireEvent{
		Timestamp: that.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    that.Action,
		Actor:     that.Actor,
		Before:    that.Before,
		After:     that.After,
	}

	switch meta := that.Meta.(type) {
	case nil:
	case MoveMeta:
		index := meta.Index
		wire.Meta = &wireMeta{Kind: ActionMove, Index: &index, Player: meta.Player}
	case ResetMeta:
		wire.Meta = &wireMeta{Kind: ActionReset}
	case ErrorMeta:
		wire.Meta = &wireMeta{Kind: ActionError, Index: meta.Index, Message: meta.Message}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownMetaKind, meta)
	}

	return json.Marshal(wire)
}

func (that *Event) UnmarshalJSON(data []byte) error {
	var wire wireEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal audit event: %w", err)
	}

	timestamp, err := time.Parse(time.RFC3339Nano, wire.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to parse audit timestamp: %w", err)
	}

	evt := Event{
		Timestamp: timestamp,
		Action:    wire.Action,
		Actor:     wire.Actor,
		Before:    wire.Before,
		After:     wire.After,
	}

	if wire.Meta != nil {
		switch wire.Meta.Kind {
		case ActionMove:
			meta := MoveMeta{Player: wire.Meta.Player}
			if wire.Meta.Index != nil {
				meta.Index = *wire.Meta.Index
			}
			evt.Meta = meta
		case ActionReset:
			evt.Meta = ResetMeta{}
		case ActionError:
			evt.Meta = ErrorMeta{Message: wire.Meta.Message, Index: wire.Meta.Index}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownMetaKind, wire.Meta.Kind)
		}
	}

	*that = evt

	return nil
}
