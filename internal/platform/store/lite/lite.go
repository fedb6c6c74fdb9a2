// Package lite provides an embedded sqlite database using the pure Go driver
package lite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Config configures the sqlite database
type Config struct {
	Path        string
	BusyTimeout time.Duration
}

// Lite owns the sqlite handle
type Lite struct {
	DB *sql.DB
}

// Open opens (creating if needed) the sqlite file at cfg.Path
// A single connection is kept so writes are serialized
func Open(ctx context.Context, cfg Config) (*Lite, error) {
	if cfg.Path == "" {
		return nil, errors.New("lite: empty path")
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("lite: open %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", busy.Milliseconds()),
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("lite: %s: %w", p, err)
		}
	}
	return &Lite{DB: db}, nil
}

// Ping checks the handle is usable
func (l *Lite) Ping(ctx context.Context) error {
	if l == nil || l.DB == nil {
		return errors.New("lite: nil handle")
	}
	return l.DB.PingContext(ctx)
}

// Close closes the database
func (l *Lite) Close() error {
	if l == nil || l.DB == nil {
		return nil
	}
	return l.DB.Close()
}
