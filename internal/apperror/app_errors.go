package apperror

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is already full")
	ErrInvalidPhase        = errors.New("action is not allowed in the current phase")
	ErrNotYourTurn         = errors.New("it's not your turn")
	ErrCellAlreadyAttacked = errors.New("cell was already attacked")
	ErrOutOfBounds         = errors.New("coordinate is out of bounds")
	ErrIncompleteFleet     = errors.New("fleet placement is incomplete")
	ErrInvalidPlacement    = errors.New("invalid ship placement")
	ErrPlayerNotInRoom     = errors.New("player is not in this room")
)

// Code - maps an application error to a stable wire code for clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrRoomFull):
		return "ROOM_FULL"
	case errors.Is(err, ErrInvalidPhase):
		return "INVALID_PHASE"
	case errors.Is(err, ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, ErrCellAlreadyAttacked):
		return "CELL_ALREADY_ATTACKED"
	case errors.Is(err, ErrOutOfBounds):
		return "OUT_OF_BOUNDS"
	case errors.Is(err, ErrIncompleteFleet):
		return "INCOMPLETE_FLEET"
	case errors.Is(err, ErrInvalidPlacement):
		return "INVALID_PLACEMENT"
	case errors.Is(err, ErrPlayerNotInRoom):
		return "PLAYER_NOT_IN_ROOM"
	default:
		return "INTERNAL"
	}
}
