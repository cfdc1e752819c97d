package entity

import "strings"

// Mark is the content of a single cell.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Board is a 3x3 grid stored row-major: row = index / 3, col = index % 3.
// It is a value type, so every assignment or return is an independent snapshot.
type Board [BoardSize]Mark

// IsPlayer reports whether the mark belongs to one of the two players.
func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// Opponent returns the other player. Empty stays empty.
func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Cell returns the mark at the given row and column.
func (that Board) Cell(row, col int) Mark {
	return that[row*3+col]
}

// Filled counts occupied cells.
func (that Board) Filled() int {
	filled := 0
	for _, cell := range that {
		if cell != EmptyCell {
			filled++
		}
	}

	return filled
}

// IsFull reports whether no empty cell is left.
func (that Board) IsFull() bool {
	return that.Filled() == BoardSize
}

// String renders the board as three rows, e.g. "X|O| \n |X| \n | |O".
func (that Board) String() string {
	var sb strings.Builder
	for row := range 3 {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range 3 {
			if col > 0 {
				sb.WriteByte('|')
			}
			mark := that.Cell(row, col)
			if mark == EmptyCell {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(string(mark))
		}
	}

	return sb.String()
}
