package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "streamtags/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "info"},
		{"   nonsense   ", "info"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

func TestInit_Named_C_RunAndRequest(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:       "info",
		Format:      "console",
		Service:     "streamtags-enrich",
		Component:   "root",
		Writer:      &buf,
		WithCaller:  true,
		SampleEvery: 2,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	// resample to N=1 so every line is emitted
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rv.Info().Msg("root-msg")

	nv := Named("twitch").Sample(&zerolog.BasicSampler{N: 1})
	nv.Info().Msg("named-msg")

	ctx := WithRun(WithRequest(context.Background(), "req-123"), "run-42")
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cv.Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "twitch")
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, "request_id=")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "run_id=")
	kit.MustContain(t, out, "run-42")
	kit.MustContain(t, out, "streamtags-enrich")
}

func TestRunID(t *testing.T) {
	ctx := context.Background()
	if RunID(ctx) != "" {
		t.Fatalf("RunID on empty ctx should be blank")
	}
	if got := RunID(WithRun(ctx, "")); got != "" {
		t.Fatalf("blank run id should not be stored, got %q", got)
	}
	if got := RunID(WithRun(ctx, "abc")); got != "abc" {
		t.Fatalf("RunID = %q", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "svc-b")
	t.Setenv("LOG_COMPONENT", "comp-b")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "svc-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("dropped")
}
