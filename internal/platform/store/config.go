package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	PG   PGConfig
	Lite LiteConfig
	CH   CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// LiteConfig configures the embedded sqlite database
type LiteConfig struct {
	Enabled     bool
	Path        string
	BusyTimeout time.Duration // default 5s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string

	// Role and Tag are reported to the server as client info
	Role string
	Tag  string
}
