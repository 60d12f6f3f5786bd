package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error)
	CreateGame(ctx context.Context, playerOneID, playerTwoID string) (string, *tictactoe.Game, error)
	MakeTurn(ctx context.Context, gameID, playerID string, tile tictactoe.Tile) (*tictactoe.Game, error)
	GetGame(ctx context.Context, gameID string) (*tictactoe.Game, error)
}

type handlerFunc func(ctx context.Context, conn *connection, message *Message) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	connections      map[string]*connection
	connectionsMutex sync.RWMutex

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		connections: make(map[string]*connection),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:  server.handleConnect,
		actionGameNew:  server.handleNewGame,
		actionGameTurn: server.handleGameTurn,
		actionGameGet:  server.handleGetGame,
	}

	return server
}

// Handler - http handler serving the websocket endpoint at /ws.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server, returns once ctx is done and the server is shut down.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{ws: ws}
	defer that.handleDisconnect(conn)

	log.Info("WebSocket connection established")

	done := make(chan struct{})
	defer close(done)

	go conn.keepAlive(done)

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Info("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client until the connection fails.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.ws.SetReadLimit(maxMessageSize)
	_ = conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	conn.ws.SetPongHandler(func(string) error {
		return conn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message Message
		if err := conn.ws.ReadJSON(&message); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				log.Warn("failed to unmarshal message", "error", err)
				continue
			}
			return err
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := conn.sendError(message.Action, errUnknownAction); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) handleDisconnect(conn *connection) {
	log := that.logger.With("method", "handleDisconnect")

	playerID := conn.player()

	that.connectionsMutex.Lock()
	if current, ok := that.connections[playerID]; ok && current == conn {
		delete(that.connections, playerID)
	}
	that.connectionsMutex.Unlock()

	if err := conn.ws.Close(); err != nil {
		log.Debug("failed to close connection", "error", err)
	}

	log.Info("player disconnected", "playerID", playerID)
}

func (that *Server) bind(conn *connection, playerID string) {
	conn.setPlayer(playerID)

	that.connectionsMutex.Lock()
	that.connections[playerID] = conn
	that.connectionsMutex.Unlock()
}

func (that *Server) connectionOf(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]
	return conn, ok
}

// connection - one client socket. Writes are serialized, gorilla allows one concurrent writer.
type connection struct {
	ws *websocket.Conn

	mu       sync.Mutex
	playerID string
}

func (that *connection) setPlayer(id string) {
	that.mu.Lock()
	that.playerID = id
	that.mu.Unlock()
}

func (that *connection) player() string {
	that.mu.Lock()
	defer that.mu.Unlock()
	return that.playerID
}

func (that *connection) write(messageType int, data []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	return that.ws.WriteMessage(messageType, data)
}

func (that *connection) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
