package entity

import "time"

const (
	OutcomeWon = "won"
	OutcomeTie = "tie"
)

// Result - archived outcome of a finished game.
type Result struct {
	GameID     string    `json:"game_id"`
	PlayerOne  string    `json:"player_one"`
	PlayerTwo  string    `json:"player_two"`
	Outcome    string    `json:"outcome"`
	Winner     string    `json:"winner,omitempty"`
	Turns      int       `json:"turns"`
	FinishedAt time.Time `json:"finished_at"`
}
