package entity

import (
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const EmptyCell = ""

// GameView - read-only JSON form of a game sent to clients.
type GameView struct {
	ID      string       `json:"id"`
	Players [2]string    `json:"players"`
	Turn    uint8        `json:"turn"`
	Board   [3][3]string `json:"board"`
	Status  string       `json:"status"`
	Winner  string       `json:"winner,omitempty"`
	Next    string       `json:"next,omitempty"`
}

func NewGameView(id string, game *tictactoe.Game) *GameView {
	players := game.Players()

	view := &GameView{
		ID:      id,
		Players: [2]string{players[0].String(), players[1].String()},
		Turn:    game.Turn(),
		Status:  game.Status().String(),
	}

	for r, row := range game.Board() {
		for c, cell := range row {
			if sign, ok := cell.Sign(); ok {
				view.Board[r][c] = sign.String()
			}
		}
	}

	if winner, ok := tictactoe.WinnerOf(game.Status()); ok {
		view.Winner = winner.String()
	}

	if current, err := game.CurrentPlayer(); err == nil && game.IsActive() {
		view.Next = current.String()
	}

	return view
}
