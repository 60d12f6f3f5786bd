package apperror

import "errors"

// rules violations returned by the game engine.
var (
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameAlreadyOver    = errors.New("game is already over")
	ErrNotPlayersTurn     = errors.New("it's not your turn")
	ErrTileOutOfBounds    = errors.New("tile is out of bounds")
	ErrTileAlreadySet     = errors.New("tile is already set")
	ErrGameNotStarted     = errors.New("game is not started")
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrSamePlayers       = errors.New("players must be different")
)
