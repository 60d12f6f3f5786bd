package repository

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

var (
	playerOne = tictactoe.PlayerID{1}
	playerTwo = tictactoe.PlayerID{2}
)

func startedGame(t *testing.T) *tictactoe.Game {
	t.Helper()

	game := tictactoe.New()
	require.NoError(t, game.Start([2]tictactoe.PlayerID{playerOne, playerTwo}))

	return game
}

func TestGameRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, time.Hour)

		// When: a started game is created
		err := gameRepo.Create(ctx, "123", startedGame(t))

		// Then: it is stored with the configured ttl
		require.NoError(t, err)

		ttl, err := st.Storage.TTL(ctx, "game:123").Result()
		require.NoError(t, err)
		assert.Positive(t, ttl)
	})

	t.Run("Create_AlreadyExists", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a stored game
		require.NoError(t, gameRepo.Create(ctx, "123", startedGame(t)))

		// When: another game is created with the same id
		err := gameRepo.Create(ctx, "123", tictactoe.New())

		// Then: ErrGameAlreadyExists is returned and the first game is kept
		require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, uint8(1), stored.Turn())
	})
}

func TestGameRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: a stored game with one move played
		game := startedGame(t)
		require.NoError(t, game.Play(tictactoe.Tile{Row: 1, Column: 1}, playerOne))
		require.NoError(t, gameRepo.Create(ctx, "123", game))

		// When: GetByID is called with existing ID
		retrievedGame, err := gameRepo.GetByID(ctx, "123")

		// Then: the retrieved game should match the saved game
		require.NoError(t, err)
		assert.Equal(t, game, retrievedGame)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: GetByID is called with non-existent ID
		retrievedGame, err := gameRepo.GetByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, retrievedGame)
	})

	t.Run("GetByID_Corrupt", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// Given: garbage stored under a game key
		require.NoError(t, st.Storage.Set(ctx, "game:123", "garbage", 0).Err())

		// When: GetByID is called
		_, err := gameRepo.GetByID(ctx, "123")

		// Then: the decode error is reported
		require.ErrorIs(t, err, tictactoe.ErrCorruptGame)
	})
}

func TestGameRepository_Update(t *testing.T) {
	t.Run("Update_AppliesMove", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)
		require.NoError(t, gameRepo.Create(ctx, "123", startedGame(t)))

		// When: a move is applied through Update
		updated, err := gameRepo.Update(ctx, "123", func(game *tictactoe.Game) error {
			return game.Play(tictactoe.Tile{Row: 0, Column: 0}, playerOne)
		})

		// Then: both the returned and the stored game reflect the move
		require.NoError(t, err)
		assert.Equal(t, uint8(2), updated.Turn())

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("Update_RejectedMoveWritesNothing", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)
		require.NoError(t, gameRepo.Create(ctx, "123", startedGame(t)))

		before, err := st.Storage.Get(ctx, "game:123").Bytes()
		require.NoError(t, err)

		// When: the wrong player tries to move
		_, err = gameRepo.Update(ctx, "123", func(game *tictactoe.Game) error {
			return game.Play(tictactoe.Tile{Row: 0, Column: 0}, playerTwo)
		})

		// Then: the rules error comes back and the stored bytes are unchanged
		require.ErrorIs(t, err, apperror.ErrNotPlayersTurn)

		after, err := st.Storage.Get(ctx, "game:123").Bytes()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		_, err := gameRepo.Update(ctx, "missing", func(*tictactoe.Game) error { return nil })
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Update_ConcurrentMovesOnSameTurn", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)
		require.NoError(t, gameRepo.Create(ctx, "123", startedGame(t)))

		// When: player one sends the same turn twice at the same time on different tiles
		var wg sync.WaitGroup
		errs := make([]error, 2)
		tiles := []tictactoe.Tile{{Row: 0, Column: 0}, {Row: 2, Column: 2}}

		for i := range tiles {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = gameRepo.Update(ctx, "123", func(game *tictactoe.Game) error {
					return game.Play(tiles[i], playerOne)
				})
			}()
		}
		wg.Wait()

		// Then: exactly one move is accepted, the other sees player two's turn
		accepted := 0
		for _, err := range errs {
			if err == nil {
				accepted++
				continue
			}
			assert.True(t, errors.Is(err, apperror.ErrNotPlayersTurn), "unexpected error: %v", err)
		}
		assert.Equal(t, 1, accepted)

		stored, err := gameRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, uint8(2), stored.Turn())
	})
}

func TestGameRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)
		require.NoError(t, gameRepo.Create(ctx, "123", startedGame(t)))

		// When: DeleteByID is called with existing ID
		err := gameRepo.DeleteByID(ctx, "123")

		// Then: no error should be returned and the game is gone
		require.NoError(t, err)

		_, err = gameRepo.GetByID(ctx, "123")
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		gameRepo := NewGameRepository(st.Storage, 0)

		// When: DeleteByID is called with non-existent ID
		err := gameRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrGameNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})
}
