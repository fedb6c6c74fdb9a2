package net_test

import (
	"context"
	"testing"

	pnet "streamtags/internal/platform/net"
)

func TestWithRequest_And_RequestID(t *testing.T) {
	base := context.Background()

	ctx := pnet.WithRequest(base, "req-123")
	if got := pnet.RequestID(ctx); got != "req-123" {
		t.Fatalf("RequestID got %q want %q", got, "req-123")
	}

	same := pnet.WithRequest(base, "")
	if same != base {
		t.Fatalf("expected ctx to be unchanged when id empty")
	}
	if got := pnet.RequestID(same); got != "" {
		t.Fatalf("RequestID got %q want empty", got)
	}
}
