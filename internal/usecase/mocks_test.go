package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type mockPlayerRepo struct {
	mock.Mock
}

func (that *mockPlayerRepo) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerRepo) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

// mockGameRepo - Update runs fn against the game registered for the id, like the real repository.
type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) Create(ctx context.Context, id string, game *tictactoe.Game) error {
	args := that.Called(ctx, id, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*tictactoe.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*tictactoe.Game)
	return game, args.Error(1)
}

func (that *mockGameRepo) Update(ctx context.Context, id string, fn func(game *tictactoe.Game) error) (*tictactoe.Game, error) {
	args := that.Called(ctx, id)

	game, _ := args.Get(0).(*tictactoe.Game)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	if err := fn(game); err != nil {
		return nil, err
	}

	return game, nil
}

type mockResultRepo struct {
	mock.Mock
}

func (that *mockResultRepo) Save(ctx context.Context, result *entity.Result) error {
	args := that.Called(ctx, result)
	return args.Error(0)
}

func (that *mockResultRepo) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	args := that.Called(ctx, playerID, limit)
	results, _ := args.Get(0).([]*entity.Result)
	return results, args.Error(1)
}
