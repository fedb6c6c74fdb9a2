package module

import (
	"time"

	"streamtags/internal/platform/config"
)

// Record store backends
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Options controls the enrichment module, its fetchers and the schedule
type Options struct {
	Store string

	BatchSize           int
	ProgressEvery       int
	DryRun              bool
	Platform            string
	IncludePlatformTags bool
	LockPath            string
	PatternsFile        string

	Schedule string
	Timezone string

	// pacing and HTTP behavior shared by the platform clients
	PaceDefault time.Duration
	PaceTwitch  time.Duration
	PaceKick    time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	HTTPTimeout time.Duration

	Twitch TwitchOptions
	Kick   KickOptions
}

// TwitchOptions are the Helix credentials and endpoints
type TwitchOptions struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	APIURL       string
}

// KickOptions are the Kick endpoint settings
type KickOptions struct {
	APIURL    string
	UserAgent string
}

// FromConfig reads ENRICH_*, TWITCH_* and KICK_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	ec := cfg.Prefix("ENRICH_")
	pace := ec.MayDuration("PACE_DEFAULT", 100*time.Millisecond)
	tw := cfg.Prefix("TWITCH_")
	kc := cfg.Prefix("KICK_")
	return Options{
		Store:               ec.MayEnum("STORE", StorePostgres, StorePostgres, StoreSQLite),
		BatchSize:           ec.MayInt("BATCH_SIZE", 100),
		ProgressEvery:       ec.MayInt("PROGRESS_EVERY", 100),
		DryRun:              ec.MayBool("DRYRUN", false),
		Platform:            ec.MayString("PLATFORM", ""),
		IncludePlatformTags: ec.MayBool("INCLUDE_PLATFORM_TAGS", true),
		LockPath:            ec.MayString("LOCK_PATH", ""),
		PatternsFile:        ec.MayString("PATTERNS_FILE", ""),
		Schedule:            ec.MayString("SCHEDULE", ""),
		Timezone:            ec.MayString("TIMEZONE", "UTC"),
		PaceDefault:         pace,
		PaceTwitch:          ec.MayDuration("PACE_TWITCH", pace),
		PaceKick:            ec.MayDuration("PACE_KICK", pace),
		MaxAttempts:         ec.MayInt("MAX_ATTEMPTS", 3),
		RetryBase:           ec.MayDuration("RETRY_BASE", time.Second),
		HTTPTimeout:         ec.MayDuration("HTTP_TIMEOUT", 10*time.Second),
		Twitch: TwitchOptions{
			ClientID:     tw.MayString("CLIENT_ID", ""),
			ClientSecret: tw.MayString("CLIENT_SECRET", ""),
			AuthURL:      tw.MayURL("AUTH_URL", ""),
			APIURL:       tw.MayURL("API_URL", ""),
		},
		Kick: KickOptions{
			APIURL:    kc.MayURL("API_URL", ""),
			UserAgent: kc.MayString("USER_AGENT", ""),
		},
	}
}
