package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	actionConnect  = "connect"
	actionGameNew  = "game:new"
	actionGameTurn = "game:turn"
	actionGameGet  = "game:get"
)

var (
	errUnknownAction   = errors.New("unknown action")
	errNotConnected    = errors.New("connect first")
	errGameIDRequired  = errors.New("game id is required")
	errTileRequired    = errors.New("tile is required")
	errOpponentMissing = errors.New("opponent is required")
	errInternal        = errors.New("internal error")
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player   *entity.Player   `json:"player,omitempty"`
	GameID   string           `json:"game_id,omitempty"`
	Opponent string           `json:"opponent,omitempty"`
	Tile     *tictactoe.Tile  `json:"tile,omitempty"`
	Game     *entity.GameView `json:"game,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func (that *connection) sendMessage(action string, payload Payload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{
		Action:  action,
		Payload: payloadJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = that.write(websocket.TextMessage, response); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendError(action string, err error) error {
	return that.sendMessage(action, Payload{Error: err.Error()})
}

func decodePayload(message *Message) (Payload, error) {
	var payload Payload

	if len(message.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
