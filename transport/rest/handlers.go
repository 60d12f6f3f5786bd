package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameUseCase interface {
	GetGame(ctx context.Context, gameID string) (*tictactoe.Game, error)
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getGame")

	gameID := r.PathValue("id")

	game, err := that.gameUseCase.GetGame(r.Context(), gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, apperror.ErrGameNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get game", "gameID", gameID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
		return
	}

	writeJSON(w, http.StatusOK, entity.NewGameView(gameID, game))
}

func (that *handlers) getResults(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getResults")

	playerID := r.PathValue("id")
	if _, err := tictactoe.ParsePlayerID(playerID); err != nil {
		writeError(w, http.StatusBadRequest, tictactoe.ErrInvalidPlayerID)
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = parsed
	}

	results, err := that.gameUseCase.History(r.Context(), playerID, limit)
	if err != nil {
		log.Error("failed to list results", "playerID", playerID, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
		return
	}

	if results == nil {
		results = []*entity.Result{}
	}

	writeJSON(w, http.StatusOK, results)
}

var errInvalidLimit = errors.New("invalid limit")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
