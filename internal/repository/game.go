package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const maxUpdateRetries = 10

var ErrTooManyConflicts = errors.New("game was modified concurrently too many times")

// getter - implemented by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type GameRepository interface {
	Create(ctx context.Context, id string, game *tictactoe.Game) error
	GetByID(ctx context.Context, id string) (*tictactoe.Game, error)
	Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) (*tictactoe.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository - stores games in their binary form. A zero ttl keeps them forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func gameKey(id string) string {
	return "game:" + id
}

func (that *dbGame) Create(ctx context.Context, id string, game *tictactoe.Game) error {
	data, err := game.MarshalBinary()
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKey(id), data, that.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyExists, id)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*tictactoe.Game, error) {
	return getGame(ctx, that.client, id)
}

// Update - runs fn on the stored game inside a WATCH transaction and saves the result.
// A write by another client between read and save makes the whole read-modify-write start over,
// so at most one move is applied per stored state. When fn fails nothing is written.
func (that *dbGame) Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) (*tictactoe.Game, error) {
	key := gameKey(id)

	var updated *tictactoe.Game

	txf := func(tx *redis.Tx) error {
		game, err := getGame(ctx, tx, id)
		if err != nil {
			return err
		}

		if err = fn(game); err != nil {
			return err
		}

		data, err := game.MarshalBinary()
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, redis.KeepTTL)
			return nil
		})
		if err != nil {
			return err
		}

		updated = game

		return nil
	}

	for range maxUpdateRetries {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: game id %s", ErrTooManyConflicts, id)
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func getGame(ctx context.Context, client getter, id string) (*tictactoe.Game, error) {
	response, err := client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	game := tictactoe.New()
	if err = game.UnmarshalBinary(response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return game, nil
}
