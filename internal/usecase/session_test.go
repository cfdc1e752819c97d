package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rocketscienceinc/tictactoe-audit/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-audit/internal/audit"
	"github.com/rocketscienceinc/tictactoe-audit/internal/entity"
	"github.com/rocketscienceinc/tictactoe-audit/internal/repository/memory"
	"github.com/rocketscienceinc/tictactoe-audit/internal/tictactoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sessionID = "session-1"

var errRedisDown = errors.New("redis down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(t *testing.T) (*GameSession, *audit.Recorder) {
	t.Helper()

	recorder := audit.NewRecorder(memory.NewAuditStore(0))
	return NewGameSession(discardLogger(), recorder, sessionID), recorder
}

func playMoves(t *testing.T, session *GameSession, moves ...int) State {
	t.Helper()

	var state State
	for _, index := range moves {
		var err error
		state, err = session.HandleCellClick(context.Background(), index)
		require.NoError(t, err, "move %d", index)
	}

	return state
}

func TestNewGameSession(t *testing.T) {
	// Given: a new session
	session, _ := newSession(t)

	// Then: it starts in progress with X to move on an empty board
	state := session.State()
	assert.Equal(t, sessionID, state.SessionID)
	assert.Equal(t, tictactoe.CreateEmptyBoard(), state.Board)
	assert.Equal(t, tictactoe.StatusInProgress, state.Status)
	assert.Equal(t, entity.PlayerX, state.Turn)
	assert.Empty(t, state.Winner)
	assert.Empty(t, state.Error)
	assert.False(t, state.IsOver())
}

func TestGameSession_HandleCellClick(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid move switches turn and is audited", func(t *testing.T) {
		// Given: a new session
		session, recorder := newSession(t)

		// When: X plays the center
		state, err := session.HandleCellClick(ctx, 4)

		// Then: the board reflects the move and it is O's turn
		require.NoError(t, err)
		assert.Equal(t, entity.Board{4: entity.PlayerX}, state.Board)
		assert.Equal(t, entity.PlayerO, state.Turn)

		// And: one MOVE event holds before/after snapshots
		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionMove, events[0].Action)
		assert.Equal(t, sessionID, events[0].Actor)
		assert.Equal(t, entity.Board{}, *events[0].Before)
		assert.Equal(t, entity.Board{4: entity.PlayerX}, *events[0].After)
		assert.Equal(t, audit.MoveMeta{Index: 4, Player: entity.PlayerX}, events[0].Meta)
	})

	t.Run("Top row win ends the game", func(t *testing.T) {
		// Given: a new session
		session, _ := newSession(t)

		// When: X plays 0, O plays 4, X plays 1, O plays 7, X plays 2
		state := playMoves(t, session, 0, 4, 1, 7, 2)

		// Then: X has won on the top row and nobody is to move
		assert.Equal(t, tictactoe.StatusWon, state.Status)
		assert.Equal(t, entity.PlayerX, state.Winner)
		assert.Empty(t, state.Turn)
		assert.Equal(t, []int{0, 1, 2}, state.WinningLine)
		assert.True(t, state.IsOver())
	})

	t.Run("Full board without a line is drawn", func(t *testing.T) {
		// Given: a new session
		session, _ := newSession(t)

		// When: the moves produce X O X / X O O / O X X
		state := playMoves(t, session, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		// Then: the game is drawn
		assert.Equal(t, entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerX,
		}, state.Board)
		assert.Equal(t, tictactoe.StatusDrawn, state.Status)
		assert.Empty(t, state.Winner)
		assert.Empty(t, state.Turn)
		assert.Nil(t, state.WinningLine)
	})

	t.Run("Out of range index is rejected and audited", func(t *testing.T) {
		// Given: a new session
		session, recorder := newSession(t)
		before := session.State()

		// When: cell 9 is clicked
		state, err := session.HandleCellClick(ctx, 9)

		// Then: the move is rejected as out of range
		require.ErrorIs(t, err, apperror.ErrOutOfRangeIndex)
		assert.Equal(t, apperror.Message(apperror.ErrOutOfRangeIndex), state.Error)

		// And: the board is unchanged
		assert.Equal(t, before.Board, state.Board)
		assert.Equal(t, entity.PlayerX, state.Turn)

		// And: exactly one ERROR event is appended
		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionError, events[0].Action)
		meta, ok := events[0].Meta.(audit.ErrorMeta)
		require.True(t, ok)
		assert.Equal(t, 9, *meta.Index)
		assert.Equal(t, state.Error, meta.Message)
	})

	t.Run("Negative index is rejected", func(t *testing.T) {
		session, _ := newSession(t)

		_, err := session.HandleCellClick(ctx, -1)

		require.ErrorIs(t, err, apperror.ErrOutOfRangeIndex)
	})

	t.Run("Occupied cell is rejected", func(t *testing.T) {
		// Given: X has played cell 0
		session, recorder := newSession(t)
		playMoves(t, session, 0)

		// When: O tries the same cell
		state, err := session.HandleCellClick(ctx, 0)

		// Then: ErrCellOccupied is returned and it is still O's turn
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.Board{entity.PlayerX}, state.Board)
		assert.Equal(t, entity.PlayerO, state.Turn)
		assert.Equal(t, "That cell is already taken.", state.Error)

		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, audit.ActionError, events[1].Action)
	})

	t.Run("Move after a win is rejected as game over", func(t *testing.T) {
		// Given: X has already won
		session, recorder := newSession(t)
		won := playMoves(t, session, 0, 4, 1, 7, 2)

		// When: O tries to play an empty cell
		state, err := session.HandleCellClick(ctx, 3)

		// Then: ErrGameAlreadyOver is returned and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrGameAlreadyOver)
		assert.Equal(t, won.Board, state.Board)
		assert.Equal(t, tictactoe.StatusWon, state.Status)
		assert.Equal(t, entity.PlayerX, state.Winner)

		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, events, 6)
	})

	t.Run("Game over wins over out of range", func(t *testing.T) {
		session, _ := newSession(t)
		playMoves(t, session, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		_, err := session.HandleCellClick(ctx, 42)

		require.ErrorIs(t, err, apperror.ErrGameAlreadyOver)
	})

	t.Run("Valid move clears the error banner", func(t *testing.T) {
		session, _ := newSession(t)
		_, err := session.HandleCellClick(ctx, 9)
		require.Error(t, err)

		state := playMoves(t, session, 4)

		assert.Empty(t, state.Error)
	})

	t.Run("Earlier snapshots are not changed by later moves", func(t *testing.T) {
		session, _ := newSession(t)
		first := playMoves(t, session, 4)

		playMoves(t, session, 0, 8)

		assert.Equal(t, entity.Board{4: entity.PlayerX}, first.Board)
	})
}

func TestGameSession_RejectMalformedCell(t *testing.T) {
	ctx := context.Background()

	t.Run("Non numeric cell is out of range without index", func(t *testing.T) {
		// Given: a new session
		session, recorder := newSession(t)

		// When: a malformed cell arrives
		state, err := session.RejectMalformedCell(ctx, "abc")

		// Then: it is rejected as out of range and audited without an index
		require.ErrorIs(t, err, apperror.ErrOutOfRangeIndex)
		assert.Equal(t, tictactoe.CreateEmptyBoard(), state.Board)

		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		meta, ok := events[0].Meta.(audit.ErrorMeta)
		require.True(t, ok)
		assert.Nil(t, meta.Index)
	})

	t.Run("Finished game reports game over", func(t *testing.T) {
		session, _ := newSession(t)
		playMoves(t, session, 0, 4, 1, 7, 2)

		_, err := session.RejectMalformedCell(ctx, "")

		require.ErrorIs(t, err, apperror.ErrGameAlreadyOver)
	})
}

func TestGameSession_Reset(t *testing.T) {
	ctx := context.Background()

	t.Run("Reset after a win starts a fresh game", func(t *testing.T) {
		// Given: a game won by X
		session, recorder := newSession(t)
		won := playMoves(t, session, 0, 4, 1, 7, 2)

		// When: the game is reset
		state := session.Reset(ctx)

		// Then: the board is empty and X moves first
		assert.Equal(t, tictactoe.CreateEmptyBoard(), state.Board)
		assert.Equal(t, tictactoe.StatusInProgress, state.Status)
		assert.Equal(t, entity.PlayerX, state.Turn)
		assert.Empty(t, state.Winner)

		// And: a RESET event carries the finished board as before
		events, err := recorder.Events(ctx, sessionID)
		require.NoError(t, err)
		last := events[len(events)-1]
		assert.Equal(t, audit.ActionReset, last.Action)
		assert.Equal(t, won.Board, *last.Before)
		assert.Equal(t, entity.Board{}, *last.After)
		assert.Equal(t, audit.ResetMeta{}, last.Meta)

		// And: play resumes
		_, err = session.HandleCellClick(ctx, 0)
		require.NoError(t, err)
	})

	t.Run("Reset clears the error banner", func(t *testing.T) {
		session, _ := newSession(t)
		_, err := session.HandleCellClick(ctx, 9)
		require.Error(t, err)

		state := session.Reset(ctx)

		assert.Empty(t, state.Error)
	})

	t.Run("Replaying after reset matches a fresh session", func(t *testing.T) {
		moves := []int{4, 0, 8, 2, 1, 7, 6, 3, 5}

		used, _ := newSession(t)
		playMoves(t, used, 0, 1)
		used.Reset(ctx)

		fresh, _ := newSession(t)

		assert.Equal(t, playMoves(t, fresh, moves...), playMoves(t, used, moves...))
	})
}

func TestGameSession_AuditFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("Recording errors do not affect the game", func(t *testing.T) {
		// Given: a recorder that always fails
		recorder := newMockAuditRecorder(t)
		recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(errRedisDown).Twice()
		session := NewGameSession(discardLogger(), recorder, sessionID)

		// When: a move and a reset are made
		state, err := session.HandleCellClick(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, entity.Board{4: entity.PlayerX}, state.Board)

		state = session.Reset(ctx)

		// Then: the game still progressed normally
		assert.Equal(t, entity.Board{}, state.Board)
	})

	t.Run("Panics become unexpected faults and roll back", func(t *testing.T) {
		// Given: a recorder that panics on moves but accepts errors
		recorder := newMockAuditRecorder(t)
		recorder.On("Record", mock.Anything, mock.MatchedBy(func(evt audit.Event) bool {
			return evt.Action == audit.ActionMove
		})).Run(func(mock.Arguments) {
			panic("recorder exploded")
		}).Return(nil).Once()
		recorder.On("Record", mock.Anything, mock.MatchedBy(func(evt audit.Event) bool {
			return evt.Action == audit.ActionError
		})).Return(nil).Once()
		session := NewGameSession(discardLogger(), recorder, sessionID)

		// When: a valid move is made
		state, err := session.HandleCellClick(ctx, 4)

		// Then: the fault is reported with the generic banner and the board is untouched
		require.ErrorIs(t, err, apperror.ErrUnexpectedFault)
		assert.Equal(t, apperror.Message(apperror.ErrUnexpectedFault), state.Error)
		assert.Equal(t, entity.Board{}, state.Board)
		assert.Equal(t, entity.PlayerX, state.Turn)
	})

	t.Run("Audit log errors are wrapped", func(t *testing.T) {
		recorder := newMockAuditRecorder(t)
		recorder.On("Events", mock.Anything, sessionID).Return(nil, errRedisDown).Once()
		session := NewGameSession(discardLogger(), recorder, sessionID)

		_, err := session.AuditLog(ctx)

		require.ErrorIs(t, err, errRedisDown)
	})
}
