package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

// Game - state of a single tic-tac-toe match. The zero value is an unstarted game.
//
// Game performs no locking: callers serialize Play calls on the same record.
type Game struct {
	players [2]PlayerID
	turn    uint8
	board   Board
	status  Status
}

func New() *Game {
	return &Game{status: Active{}}
}

func (that *Game) Players() [2]PlayerID {
	return that.players
}

// Turn - 0 before Start, then the number of the move being played.
func (that *Game) Turn() uint8 {
	return that.turn
}

func (that *Game) Board() Board {
	return that.board
}

func (that *Game) Status() Status {
	if that.status == nil {
		return Active{}
	}
	return that.status
}

func (that *Game) IsStarted() bool {
	return that.turn != 0
}

func (that *Game) IsActive() bool {
	return !IsTerminal(that.Status())
}

// CurrentPlayer - the player whose turn it is.
func (that *Game) CurrentPlayer() (PlayerID, error) {
	if !that.IsStarted() {
		return PlayerID{}, apperror.ErrGameNotStarted
	}

	return that.players[playerIndex(that.turn)], nil
}

// Start - seats the players. Player one moves first and plays X.
func (that *Game) Start(players [2]PlayerID) error {
	if that.turn != 0 {
		return apperror.ErrGameAlreadyStarted
	}

	that.players = players
	that.turn = 1
	that.board = Board{}
	that.status = Active{}

	return nil
}

// Play - places the current player's sign on tile.
// On error the game is left untouched.
func (that *Game) Play(tile Tile, player PlayerID) error {
	if err := that.validateMove(tile, player); err != nil {
		return err
	}

	that.board[tile.Row][tile.Column] = Marked(SignOf(that.turn))
	that.status = Evaluate(that.board, player)

	if that.IsActive() {
		that.turn++
	}

	return nil
}

// validateMove - checks are ordered, the first failing one is reported.
func (that *Game) validateMove(tile Tile, player PlayerID) error {
	current, err := that.CurrentPlayer()
	if err != nil || current != player {
		return apperror.ErrNotPlayersTurn
	}

	if !that.IsActive() {
		return apperror.ErrGameAlreadyOver
	}

	if !tile.InBounds() {
		return apperror.ErrTileOutOfBounds
	}

	if !that.board.cell(tile).IsEmpty() {
		return apperror.ErrTileAlreadySet
	}

	return nil
}
