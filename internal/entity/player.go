package entity

// Player - a connected participant. GameID is the game they currently play, if any.
type Player struct {
	ID     string `json:"id"`
	GameID string `json:"game_id,omitempty"`
}

func (that *Player) InGame() bool {
	return that.GameID != ""
}
