package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const defaultHistoryLimit = 20

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	Create(ctx context.Context, id string, game *tictactoe.Game) error
	GetByID(ctx context.Context, id string) (*tictactoe.Game, error)
	Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) (*tictactoe.Game, error)
}

type resultRepo interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
	resultRepo resultRepo

	now func() time.Time
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo, resultRepo resultRepo) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		resultRepo: resultRepo,

		now: time.Now,
	}
}

// GetOrCreatePlayer - an empty id registers a new player with a fresh identity.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player, err := that.createPlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create new player: %w", err)
		}

		return player, nil
	}

	if _, err := tictactoe.ParsePlayerID(id); err != nil {
		return nil, err
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateGame - playerOne sets up a game against playerTwo and moves first.
func (that *GameManager) CreateGame(ctx context.Context, playerOneID, playerTwoID string) (string, *tictactoe.Game, error) {
	log := that.logger.With("method", "CreateGame")

	if playerOneID == playerTwoID {
		return "", nil, apperror.ErrSamePlayers
	}

	playerOne, err := that.getPlayerByID(ctx, playerOneID)
	if err != nil {
		return "", nil, err
	}

	playerTwo, err := that.getPlayerByID(ctx, playerTwoID)
	if err != nil {
		return "", nil, err
	}

	ids, err := parsePlayerIDs(playerOne.ID, playerTwo.ID)
	if err != nil {
		return "", nil, err
	}

	game := tictactoe.New()
	if err = game.Start(ids); err != nil {
		return "", nil, fmt.Errorf("failed to start game: %w", err)
	}

	gameID := uuid.NewString()
	if err = that.gameRepo.Create(ctx, gameID, game); err != nil {
		return "", nil, fmt.Errorf("failed to create game: %w", err)
	}

	for _, player := range []*entity.Player{playerOne, playerTwo} {
		player.GameID = gameID
		if err = that.updatePlayer(ctx, player); err != nil {
			return "", nil, err
		}
	}

	log.Info("game created", "gameID", gameID)

	return gameID, game, nil
}

// MakeTurn - plays tile for playerID. Rules violations come back unchanged from the engine.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, playerID string, tile tictactoe.Tile) (*tictactoe.Game, error) {
	log := that.logger.With("method", "MakeTurn", "gameID", gameID)

	acting, err := tictactoe.ParsePlayerID(playerID)
	if err != nil {
		return nil, err
	}

	game, err := that.gameRepo.Update(ctx, gameID, func(game *tictactoe.Game) error {
		return game.Play(tile, acting)
	})
	if err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	if game.IsActive() {
		return game, nil
	}

	log.Info("game finished", "status", game.Status().String(), "turn", game.Turn())

	that.finishGame(ctx, gameID, game)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*tictactoe.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// History - finished games of a player, most recent first.
func (that *GameManager) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	results, err := that.resultRepo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}

// finishGame - archives the result and frees both players. Failures are logged only:
// the finished game itself is already stored.
func (that *GameManager) finishGame(ctx context.Context, gameID string, game *tictactoe.Game) {
	log := that.logger.With("method", "finishGame", "gameID", gameID)

	if err := that.resultRepo.Save(ctx, NewResult(gameID, game, that.now())); err != nil {
		log.Error("failed to save result", "error", err)
	}

	for _, id := range game.Players() {
		player, err := that.playerRepo.GetByID(ctx, id.String())
		if err != nil {
			log.Error("failed to get player", "playerID", id.String(), "error", err)
			continue
		}

		if player.GameID != gameID {
			continue
		}

		player.GameID = ""
		if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to update player", "playerID", player.ID, "error", err)
		}
	}
}

// NewResult - archive record of a finished game.
func NewResult(gameID string, game *tictactoe.Game, finishedAt time.Time) *entity.Result {
	players := game.Players()

	result := &entity.Result{
		GameID:     gameID,
		PlayerOne:  players[0].String(),
		PlayerTwo:  players[1].String(),
		Outcome:    entity.OutcomeTie,
		Turns:      int(game.Turn()),
		FinishedAt: finishedAt.UTC(),
	}

	if winner, ok := tictactoe.WinnerOf(game.Status()); ok {
		result.Outcome = entity.OutcomeWon
		result.Winner = winner.String()
	}

	return result
}

func (that *GameManager) createPlayer(ctx context.Context) (*entity.Player, error) {
	id, err := tictactoe.NewPlayerID()
	if err != nil {
		return nil, err
	}

	player := &entity.Player{
		ID: id.String(),
	}

	if err = that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return player, nil
}

func (that *GameManager) getPlayerByID(ctx context.Context, id string) (*entity.Player, error) {
	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	return player, nil
}

func (that *GameManager) updatePlayer(ctx context.Context, player *entity.Player) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}

func parsePlayerIDs(one, two string) ([2]tictactoe.PlayerID, error) {
	first, err := tictactoe.ParsePlayerID(one)
	if err != nil {
		return [2]tictactoe.PlayerID{}, err
	}

	second, err := tictactoe.ParsePlayerID(two)
	if err != nil {
		return [2]tictactoe.PlayerID{}, err
	}

	return [2]tictactoe.PlayerID{first, second}, nil
}

// IsRulesError - the error is a rejected move or start, safe to report to the player.
func IsRulesError(err error) bool {
	return errors.Is(err, apperror.ErrGameAlreadyStarted) ||
		errors.Is(err, apperror.ErrGameAlreadyOver) ||
		errors.Is(err, apperror.ErrNotPlayersTurn) ||
		errors.Is(err, apperror.ErrTileOutOfBounds) ||
		errors.Is(err, apperror.ErrTileAlreadySet)
}
