package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

// Save - archives a finished game. Saving the same game twice keeps the first record.
func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT INTO results (game_id, player_one, player_two, outcome, winner, turns, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO NOTHING`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID,
		result.PlayerOne,
		result.PlayerTwo,
		result.Outcome,
		result.Winner,
		result.Turns,
		result.FinishedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// ListByPlayer - most recent results first.
func (that *resultRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	query := `SELECT game_id, player_one, player_two, outcome, winner, turns, finished_at
		FROM results
		WHERE player_one = ? OR player_two = ?
		ORDER BY finished_at DESC, game_id
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	var results []*entity.Result

	for rows.Next() {
		var (
			result     entity.Result
			finishedAt int64
		)

		err = rows.Scan(
			&result.GameID,
			&result.PlayerOne,
			&result.PlayerTwo,
			&result.Outcome,
			&result.Winner,
			&result.Turns,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		result.FinishedAt = time.UnixMilli(finishedAt).UTC()
		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read results: %w", err)
	}

	return results, nil
}
