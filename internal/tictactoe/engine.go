package tictactoe

import "github.com/rocketscienceinc/tictactoe-audit/internal/entity"

// Status is the derived state of a board.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDrawn      Status = "drawn"
)

// WinCombos lists every line that wins when uniformly marked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Result is the outcome of GetWinner. Winner is entity.EmptyCell when nobody has a line.
type Result struct {
	Winner entity.Mark `json:"winner"`
	Draw   bool        `json:"draw"`
}

// Status folds the result into one of the three game states.
func (that Result) Status() Status {
	switch {
	case that.Winner.IsPlayer():
		return StatusWon
	case that.Draw:
		return StatusDrawn
	default:
		return StatusInProgress
	}
}

// CreateEmptyBoard returns a board with nine empty cells.
func CreateEmptyBoard() entity.Board {
	return entity.Board{}
}

// ResetGame starts a new game. The returned board shares nothing with earlier boards.
func ResetGame() entity.Board {
	return CreateEmptyBoard()
}

// IsValidMove reports whether index is on the board and the cell there is empty.
// Turn order and game-over are the caller's concern.
func IsValidMove(board entity.Board, index int) bool {
	if index < 0 || index >= len(board) {
		return false
	}

	return board[index] == entity.EmptyCell
}

// ApplyMove returns a copy of board with player's mark at index.
// The caller must check IsValidMove first: an out-of-range index panics.
func ApplyMove(board entity.Board, index int, player entity.Mark) entity.Board {
	next := board
	next[index] = player

	return next
}

// WinningLine returns the first completed line, if any.
func WinningLine(board entity.Board) ([3]int, bool) {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return combo, true
		}
	}

	return [3]int{}, false
}

// GetWinner evaluates the board. A completed line wins; otherwise a full board is a draw.
func GetWinner(board entity.Board) Result {
	if line, ok := WinningLine(board); ok {
		return Result{Winner: board[line[0]]}
	}

	// the game will continue until all the squares are full
	return Result{Draw: board.IsFull()}
}

// IsDraw reports a full board without a winner.
func IsDraw(board entity.Board) bool {
	return GetWinner(board).Draw
}

// NextPlayer is X on an even number of filled cells and O otherwise.
// It only makes sense for boards produced by alternating play.
func NextPlayer(board entity.Board) entity.Mark {
	if board.Filled()%2 == 0 {
		return entity.PlayerX
	}

	return entity.PlayerO
}
