package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-audit/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/rocketscienceinc/tictactoe-audit/internal/entity"
	"github.com/rocketscienceinc/tictactoe-audit/internal/tictactoe"
)

type auditRecorder interface {
	Record(ctx context.Context, evt audit.Event) error
	Events(ctx context.Context, actor string) ([]audit.Event, error)
}

// State is what the presentation layer renders.
type State struct {
	SessionID   string           `json:"session_id"`
	Board       entity.Board     `json:"board"`
	Status      tictactoe.Status `json:"status"`
	Turn        entity.Mark      `json:"player_turn,omitempty"`
	Winner      entity.Mark      `json:"winner,omitempty"`
	WinningLine []int            `json:"winning_line,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// IsOver reports a won or drawn game.
func (that State) IsOver() bool {
	return that.Status != tictactoe.StatusInProgress
}

// GameSession owns the board of the single active game and drives it through
// InProgress(player) -> Won(player) | Drawn. Only Reset leaves a terminal state.
type GameSession struct {
	logger   *slog.Logger
	recorder auditRecorder
	id       string

	mu     sync.Mutex
	game   game
	banner string
}

type game struct {
	board  entity.Board
	status tictactoe.Status
	turn   entity.Mark
	winner entity.Mark
}

func NewGameSession(logger *slog.Logger, recorder auditRecorder, id string) *GameSession {
	session := &GameSession{
		logger:   logger.With("component", "session", "sessionID", id),
		recorder: recorder,
		id:       id,
	}
	session.start(tictactoe.CreateEmptyBoard())

	return session
}

// State returns a snapshot; later moves do not change it.
func (that *GameSession) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

// HandleCellClick plays the current player's mark at index.
// Rejections leave the game untouched, set the error banner and are audited.
func (that *GameSession) HandleCellClick(ctx context.Context, index int) (state State, err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	log := that.logger.With("method", "HandleCellClick", "index", index)

	saved := that.game

	defer func() {
		if r := recover(); r != nil {
			log.Error("recovered from panic", "panic", r)
			that.game = saved
			err = fmt.Errorf("%w: %v", apperror.ErrUnexpectedFault, r)
			that.reject(ctx, err, &index)
			state = that.snapshot()
		}
	}()

	before := that.game.board
	player := that.game.turn

	if err = that.checkMove(index); err != nil {
		log.Info("move rejected", "error", err)
		that.reject(ctx, err, &index)

		return that.snapshot(), err
	}

	that.game.board = tictactoe.ApplyMove(that.game.board, index, player)
	that.updateGameState()
	that.banner = ""

	that.record(ctx, audit.NewMoveEvent(that.id, before, that.game.board, index, player))

	log.Debug("move applied", "player", player, "status", that.game.status)

	return that.snapshot(), nil
}

// RejectMalformedCell handles a click whose cell could not be read as a number.
func (that *GameSession) RejectMalformedCell(ctx context.Context, raw string) (State, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	err := fmt.Errorf("%w: %q", apperror.ErrOutOfRangeIndex, raw)
	if that.game.status != tictactoe.StatusInProgress {
		err = apperror.ErrGameAlreadyOver
	}

	that.logger.Info("move rejected", "method", "RejectMalformedCell", "error", err)
	that.reject(ctx, err, nil)

	return that.snapshot(), err
}

// Reset starts a new game with X to move, whatever state the old one was in.
func (that *GameSession) Reset(ctx context.Context) State {
	that.mu.Lock()
	defer that.mu.Unlock()

	before := that.game.board
	that.start(tictactoe.ResetGame())

	that.record(ctx, audit.NewResetEvent(that.id, before, that.game.board))
	that.logger.Info("game reset", "method", "Reset")

	return that.snapshot()
}

// AuditLog returns this session's events, oldest first.
func (that *GameSession) AuditLog(ctx context.Context) ([]audit.Event, error) {
	events, err := that.recorder.Events(ctx, that.id)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}

	return events, nil
}

func (that *GameSession) start(board entity.Board) {
	that.game = game{
		board:  board,
		status: tictactoe.StatusInProgress,
		turn:   tictactoe.NextPlayer(board),
	}
	that.banner = ""
}

func (that *GameSession) checkMove(index int) error {
	if that.game.status != tictactoe.StatusInProgress {
		return apperror.ErrGameAlreadyOver
	}

	if index < 0 || index >= entity.BoardSize {
		return fmt.Errorf("%w: %d", apperror.ErrOutOfRangeIndex, index)
	}

	if !tictactoe.IsValidMove(that.game.board, index) {
		return fmt.Errorf("%w: %d", apperror.ErrCellOccupied, index)
	}

	return nil
}

func (that *GameSession) updateGameState() {
	result := tictactoe.GetWinner(that.game.board)

	switch that.game.status = result.Status(); that.game.status {
	case tictactoe.StatusWon:
		that.game.winner = result.Winner
		that.game.turn = entity.EmptyCell
	case tictactoe.StatusDrawn:
		that.game.turn = entity.EmptyCell
	default:
		that.game.turn = tictactoe.NextPlayer(that.game.board)
	}
}

func (that *GameSession) reject(ctx context.Context, err error, index *int) {
	that.banner = apperror.Message(err)

	if !isKnownRejection(err) {
		that.logger.Error("unexpected fault", "error", err)
	}

	that.record(ctx, audit.NewErrorEvent(that.id, that.game.board, that.banner, index))
}

// record never lets the audit trail affect the game.
func (that *GameSession) record(ctx context.Context, evt audit.Event) {
	if err := that.recorder.Record(ctx, evt); err != nil {
		that.logger.Error("failed to record audit event", "action", evt.Action, "error", err)
	}
}

func (that *GameSession) snapshot() State {
	state := State{
		SessionID: that.id,
		Board:     that.game.board,
		Status:    that.game.status,
		Turn:      that.game.turn,
		Winner:    that.game.winner,
		Error:     that.banner,
	}

	if line, ok := tictactoe.WinningLine(that.game.board); ok {
		state.WinningLine = line[:]
	}

	return state
}

func isKnownRejection(err error) bool {
	return errors.Is(err, apperror.ErrGameAlreadyOver) ||
		errors.Is(err, apperror.ErrOutOfRangeIndex) ||
		errors.Is(err, apperror.ErrCellOccupied)
}
