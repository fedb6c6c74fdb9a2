package store

import (
	"context"
	"fmt"
	"time"

	chx "streamtags/internal/platform/store/ch"
	"streamtags/internal/platform/store/lite"
	"streamtags/internal/platform/store/pg"
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	// Connection guardrails: ping with retry/backoff using the *pool* directly
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)
	maxAttempts := cfg.PG.ConnectRetries
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	var lastErr error
	backoff := backoffStart
	for i := 0; i < maxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx) // no adapter, no SQL trace line
		cancel()

		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < backoffCeiling {
			backoff = min(backoff*2, backoffCeiling)
		}
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", maxAttempts, lastErr)
}

// openLite opens the sqlite file and wraps it with the database/sql adapter
func openLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	l, err := lite.Open(ctx, lite.Config{
		Path:        cfg.Lite.Path,
		BusyTimeout: cfg.Lite.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("path", cfg.Lite.Path).Msg("sqlite opened")
	return newLiteAdapter(l), nil
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:  cfg.CH.URL,
		Role: cfg.CH.Role,
		Tag:  cfg.CH.Tag,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
