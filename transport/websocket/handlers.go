package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

// clientErrors - errors whose message is sent to the client as is.
var clientErrors = []error{
	apperror.ErrGameAlreadyStarted,
	apperror.ErrGameAlreadyOver,
	apperror.ErrNotPlayersTurn,
	apperror.ErrTileOutOfBounds,
	apperror.ErrTileAlreadySet,
	apperror.ErrGameNotFound,
	apperror.ErrPlayerNotFound,
	apperror.ErrSamePlayers,
	tictactoe.ErrInvalidPlayerID,
}

func publicError(err error) error {
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return target
		}
	}

	return errInternal
}

func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	var id string
	if payloadReq.Player != nil {
		id = payloadReq.Player.ID
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, id)
	if err != nil {
		log.Error("failed to create or get player", "error", err)
		return conn.sendError(msg.Action, publicError(err))
	}

	that.bind(conn, player.ID)

	payloadResp := Payload{
		Player: player,
	}

	if player.InGame() {
		game, err := that.gameUseCase.GetGame(ctx, player.GameID)
		if err != nil {
			log.Warn("failed to resume game", "gameID", player.GameID, "error", err)
		} else {
			payloadResp.Game = entity.NewGameView(player.GameID, game)
		}
	}

	if err = conn.sendMessage(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected player", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewGame")

	playerID := conn.player()
	if playerID == "" {
		return conn.sendError(msg.Action, errNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	if payloadReq.Opponent == "" {
		return conn.sendError(msg.Action, errOpponentMissing)
	}

	gameID, game, err := that.gameUseCase.CreateGame(ctx, playerID, payloadReq.Opponent)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return conn.sendError(msg.Action, publicError(err))
	}

	that.broadcast(msg.Action, gameID, game)

	log.Info("game created", "gameID", gameID, "playerID", playerID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameTurn")

	playerID := conn.player()
	if playerID == "" {
		return conn.sendError(msg.Action, errNotConnected)
	}

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	if payloadReq.GameID == "" {
		return conn.sendError(msg.Action, errGameIDRequired)
	}

	if payloadReq.Tile == nil {
		return conn.sendError(msg.Action, errTileRequired)
	}

	log = log.With("playerID", playerID, "gameID", payloadReq.GameID)

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.GameID, playerID, *payloadReq.Tile)
	if err != nil {
		log.Info("turn rejected", "error", err)
		return conn.sendError(msg.Action, publicError(err))
	}

	that.broadcast(msg.Action, payloadReq.GameID, game)

	log.Info("Player made a turn")

	return nil
}

func (that *Server) handleGetGame(ctx context.Context, conn *connection, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return conn.sendError(msg.Action, err)
	}

	if payloadReq.GameID == "" {
		return conn.sendError(msg.Action, errGameIDRequired)
	}

	game, err := that.gameUseCase.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return conn.sendError(msg.Action, publicError(err))
	}

	return conn.sendMessage(msg.Action, Payload{Game: entity.NewGameView(payloadReq.GameID, game)})
}

// broadcast - sends the game to every connected player of it.
func (that *Server) broadcast(action, gameID string, game *tictactoe.Game) {
	log := that.logger.With("method", "broadcast", "gameID", gameID)

	view := entity.NewGameView(gameID, game)

	for _, playerID := range view.Players {
		conn, ok := that.connectionOf(playerID)
		if !ok {
			log.Warn("connection not found for player", "playerID", playerID)
			continue
		}

		player := &entity.Player{ID: playerID}
		if game.IsActive() {
			player.GameID = gameID
		}

		payloadResp := Payload{
			Player: player,
			Game:   view,
		}

		if err := conn.sendMessage(action, payloadResp); err != nil {
			log.Error("failed to send game update", "playerID", playerID, "error", err)
		}
	}
}
