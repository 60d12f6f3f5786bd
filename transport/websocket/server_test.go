package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

// fakeGames - in-memory game use case backed by the real engine.
type fakeGames struct {
	mu      sync.Mutex
	players map[string]*entity.Player
	games   map[string]*tictactoe.Game
	seq     byte
}

func newFakeGames() *fakeGames {
	return &fakeGames{
		players: make(map[string]*entity.Player),
		games:   make(map[string]*tictactoe.Game),
	}
}

func (that *fakeGames) GetOrCreatePlayer(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if id == "" {
		that.seq++
		player := &entity.Player{ID: tictactoe.PlayerID{that.seq}.String()}
		that.players[player.ID] = player
		return player, nil
	}

	player, ok := that.players[id]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return player, nil
}

func (that *fakeGames) CreateGame(_ context.Context, playerOneID, playerTwoID string) (string, *tictactoe.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	one, err := tictactoe.ParsePlayerID(playerOneID)
	if err != nil {
		return "", nil, err
	}

	two, err := tictactoe.ParsePlayerID(playerTwoID)
	if err != nil {
		return "", nil, err
	}

	game := tictactoe.New()
	if err = game.Start([2]tictactoe.PlayerID{one, two}); err != nil {
		return "", nil, err
	}

	that.games["game-1"] = game

	return "game-1", game, nil
}

func (that *fakeGames) MakeTurn(_ context.Context, gameID, playerID string, tile tictactoe.Tile) (*tictactoe.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[gameID]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	acting, err := tictactoe.ParsePlayerID(playerID)
	if err != nil {
		return nil, err
	}

	if err = game.Play(tile, acting); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *fakeGames) GetGame(_ context.Context, gameID string) (*tictactoe.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	game, ok := that.games[gameID]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game, nil
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return &testClient{t: t, conn: conn}
}

func (that *testClient) send(action string, payload Payload) {
	that.t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(that.t, err)
	require.NoError(that.t, that.conn.WriteJSON(Message{Action: action, Payload: raw}))
}

func (that *testClient) receive() (string, Payload) {
	that.t.Helper()

	require.NoError(that.t, that.conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var message Message
	require.NoError(that.t, that.conn.ReadJSON(&message))

	var payload Payload
	require.NoError(that.t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv := httptest.NewServer(New(suite.NewLogger(), newFakeGames()).Handler(ctx))
	t.Cleanup(srv.Close)

	return srv
}

func TestServer_GameFlow(t *testing.T) {
	srv := newTestServer(t)

	// Given: two connected players
	first := dial(t, srv)
	first.send(actionConnect, Payload{})
	_, connected := first.receive()
	require.NotNil(t, connected.Player)
	firstID := connected.Player.ID

	second := dial(t, srv)
	second.send(actionConnect, Payload{Player: &entity.Player{}})
	_, connected = second.receive()
	require.NotNil(t, connected.Player)
	secondID := connected.Player.ID

	// When: the first player creates a game against the second
	first.send(actionGameNew, Payload{Opponent: secondID})

	// Then: both players get the started game
	for _, client := range []*testClient{first, second} {
		action, payload := client.receive()
		assert.Equal(t, actionGameNew, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, uint8(1), payload.Game.Turn)
		assert.Equal(t, firstID, payload.Game.Next)
	}

	// When: the second player moves out of turn
	second.send(actionGameTurn, Payload{GameID: "game-1", Tile: &tictactoe.Tile{Row: 0, Column: 0}})

	// Then: only they get the rules error
	action, payload := second.receive()
	assert.Equal(t, actionGameTurn, action)
	assert.Equal(t, apperror.ErrNotPlayersTurn.Error(), payload.Error)

	// When: the first player moves
	first.send(actionGameTurn, Payload{GameID: "game-1", Tile: &tictactoe.Tile{Row: 1, Column: 1}})

	// Then: both players see the X in the center
	for _, client := range []*testClient{first, second} {
		_, payload = client.receive()
		require.NotNil(t, payload.Game)
		assert.Equal(t, "X", payload.Game.Board[1][1])
		assert.Equal(t, secondID, payload.Game.Next)
	}

	// When: the second player plays outside the board
	second.send(actionGameTurn, Payload{GameID: "game-1", Tile: &tictactoe.Tile{Row: 3, Column: 0}})

	// Then: the bounds error is reported
	_, payload = second.receive()
	assert.Equal(t, apperror.ErrTileOutOfBounds.Error(), payload.Error)

	// When: the game is fetched
	first.send(actionGameGet, Payload{GameID: "game-1"})

	// Then: the current state is returned
	_, payload = first.receive()
	require.NotNil(t, payload.Game)
	assert.Equal(t, uint8(2), payload.Game.Turn)
}

func TestServer_Errors(t *testing.T) {
	srv := newTestServer(t)

	t.Run("Turn before connect", func(t *testing.T) {
		client := dial(t, srv)

		client.send(actionGameTurn, Payload{GameID: "game-1", Tile: &tictactoe.Tile{}})

		_, payload := client.receive()
		assert.Equal(t, errNotConnected.Error(), payload.Error)
	})

	t.Run("Unknown action", func(t *testing.T) {
		client := dial(t, srv)

		client.send("game:resign", Payload{})

		action, payload := client.receive()
		assert.Equal(t, "game:resign", action)
		assert.Equal(t, errUnknownAction.Error(), payload.Error)
	})

	t.Run("Unknown player", func(t *testing.T) {
		client := dial(t, srv)

		client.send(actionConnect, Payload{Player: &entity.Player{ID: "missing"}})

		_, payload := client.receive()
		assert.Equal(t, apperror.ErrPlayerNotFound.Error(), payload.Error)
	})

	t.Run("Missing tile", func(t *testing.T) {
		client := dial(t, srv)
		client.send(actionConnect, Payload{})
		client.receive()

		client.send(actionGameTurn, Payload{GameID: "game-1"})

		_, payload := client.receive()
		assert.Equal(t, errTileRequired.Error(), payload.Error)
	})

	t.Run("Unknown game", func(t *testing.T) {
		client := dial(t, srv)

		client.send(actionGameGet, Payload{GameID: "nope"})

		_, payload := client.receive()
		assert.Equal(t, apperror.ErrGameNotFound.Error(), payload.Error)
	})
}
