package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	// registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

var ErrEmptyPath = errors.New("sqlite storage path is empty")

type Storage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	return &Storage{Connection: conn}, nil
}

// Init - creates the schema if it does not exist yet.
func (that *Storage) Init(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS results (
		game_id     TEXT PRIMARY KEY,
		player_one  TEXT NOT NULL,
		player_two  TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		winner      TEXT NOT NULL DEFAULT '',
		turns       INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	)`

	if _, err := that.Connection.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("can't create table: %w", err)
	}

	index := `CREATE INDEX IF NOT EXISTS results_players ON results (player_one, player_two)`

	if _, err := that.Connection.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("can't create index: %w", err)
	}

	return nil
}

func (that *Storage) Close() error {
	return that.Connection.Close()
}
