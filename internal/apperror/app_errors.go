package apperror

import "errors"

var (
	ErrOutOfRangeIndex = errors.New("cell index is out of range")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrGameAlreadyOver = errors.New("game is already over")
	ErrUnexpectedFault = errors.New("something went wrong")
)

// Message returns the short banner text shown to the player for a rejected action.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrOutOfRangeIndex):
		return "Pick a cell between 0 and 8."
	case errors.Is(err, ErrCellOccupied):
		return "That cell is already taken."
	case errors.Is(err, ErrGameAlreadyOver):
		return "The game is over. Start a new game to keep playing."
	default:
		return "Something went wrong. Please try again."
	}
}
