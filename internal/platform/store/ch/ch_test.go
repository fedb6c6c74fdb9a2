package ch

import (
	"context"
	"testing"
)

func TestOpen_ParsesDSNWithoutDialing(t *testing.T) {
	t.Parallel()

	cl, err := Open(context.Background(), Config{URL: "clickhouse://default:@127.0.0.1:9/streamtags", Role: "enrich", Tag: "test"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if cl == nil {
		t.Fatalf("Open returned nil client")
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestOpen_RejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, url := range []string{"", "://nope"} {
		if _, err := Open(context.Background(), Config{URL: url}); err == nil {
			t.Fatalf("Open(%q) expected error", url)
		}
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	t.Parallel()

	// a nil conn would panic if Insert touched it
	cl := &CH{}
	if err := cl.Insert(context.Background(), "enrichment_results", nil); err != nil {
		t.Fatalf("Insert(empty) = %v", err)
	}
}

func TestClose_NilSafe(t *testing.T) {
	t.Parallel()

	var cl *CH
	if err := cl.Close(); err != nil {
		t.Fatalf("nil Close = %v", err)
	}
}

func TestBuildClientInfo_Products(t *testing.T) {
	t.Parallel()

	ci := BuildClientInfo(" enrich ", "")
	if len(ci.Products) != 5 {
		t.Fatalf("products = %d, want 5", len(ci.Products))
	}
	if ci.Products[0].Name != "streamtags" || ci.Products[0].Version != "unknown" {
		t.Fatalf("first product = %+v", ci.Products[0])
	}
	if ci.Products[1].Version != "enrich" {
		t.Fatalf("role not trimmed: %+v", ci.Products[1])
	}
}
