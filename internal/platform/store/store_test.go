package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen_CHOnly_SetsCHAndLeavesOthersNil(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, Config{CH: CHConfig{
		Enabled: true,
		URL:     "clickhouse://default:@127.0.0.1:9/streamtags", // dialed lazily
		Role:    "enrich",
	}})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if s.CH == nil {
		t.Fatalf("CH not initialized")
	}
	if s.PG != nil || s.Lite != nil {
		t.Fatalf("unexpected seams set PG=%T Lite=%T", s.PG, s.Lite)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestOpen_PGEnabled_BadURL_BubblesError(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad", MaxConns: 1}})
	if err == nil {
		t.Fatalf("expected Open error for bad PG URL, got store=%#v", s)
	}
	if s != nil {
		t.Fatalf("expected nil store on error, got %#v", s)
	}
}

func TestOpen_LiteAndBadCH_ClosesLite(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{
		Lite: LiteConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "x.db")},
		CH:   CHConfig{Enabled: true, URL: "://bad"},
	})
	if err == nil || s != nil {
		t.Fatalf("expected CH failure to abort Open, got %v / %#v", err, s)
	}
}

func TestOpen_OptionsApplied_NoPanicOnWithLogger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var zl zerolog.Logger

	s, err := Open(ctx, Config{}, WithLogger(zl))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if e := s.Close(ctx); e != nil {
		t.Fatalf("Close on empty store returned error: %v", e)
	}
}
