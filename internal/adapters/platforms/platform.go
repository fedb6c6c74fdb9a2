// Package platforms defines the fetcher contract shared by the streaming
// platform adapters and the resilient HTTP core they are built on
package platforms

import (
	"context"
	"strings"

	perr "streamtags/internal/platform/errors"
)

// Platform identifies a streaming platform
type Platform string

// Known platforms
const (
	Twitch    Platform = "twitch"
	Kick      Platform = "kick"
	YouTube   Platform = "youtube"
	TikTok    Platform = "tiktok"
	Instagram Platform = "instagram"
	X         Platform = "x"
)

// Order is the fixed enumeration order used when grouping records
var Order = []Platform{Twitch, Kick, YouTube, TikTok, Instagram, X}

// Parse maps s (case insensitive) onto a known Platform
func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, nil
	}
	return "", perr.InvalidArgf("unknown platform %q", s)
}

// Valid reports whether p is one of Order
func (p Platform) Valid() bool {
	for _, o := range Order {
		if p == o {
			return true
		}
	}
	return false
}

func (p Platform) String() string { return string(p) }

// Fetcher returns raw tag and category strings for one identity.
// An unknown identity yields an empty slice and no error
type Fetcher interface {
	Platform() Platform
	FetchTags(ctx context.Context, username string) ([]string, error)
}

// Signals separates what a fetcher saw on the live channel from
// categories the channel streamed in the past
type Signals struct {
	Live    []string
	History []string
}

// SignalFetcher is a Fetcher that reports historical categories apart
// from live ones
type SignalFetcher interface {
	Fetcher
	FetchSignals(ctx context.Context, username string) (Signals, error)
}

// Fetch returns the signals for username, splitting history out when f supports it
func Fetch(ctx context.Context, f Fetcher, username string) (Signals, error) {
	if sf, ok := f.(SignalFetcher); ok {
		return sf.FetchSignals(ctx, username)
	}
	raw, err := f.FetchTags(ctx, username)
	return Signals{Live: raw}, err
}

// BatchFetcher resolves many identities per call. The result is keyed by
// lowercased username; unresolved identities are absent from the map
type BatchFetcher interface {
	Fetcher
	MaxBatch() int
	FetchTagsBatch(ctx context.Context, usernames []string) (map[string][]string, error)
}

// Registry maps a platform to its fetcher
type Registry map[Platform]Fetcher

// NewRegistry indexes fetchers by their Platform; later entries win
func NewRegistry(fs ...Fetcher) Registry {
	r := make(Registry, len(fs))
	for _, f := range fs {
		if f != nil {
			r[f.Platform()] = f
		}
	}
	return r
}

// Get returns the fetcher for p
func (r Registry) Get(p Platform) (Fetcher, bool) {
	f, ok := r[p]
	return f, ok
}

// Batch returns p's fetcher when it supports batching
func (r Registry) Batch(p Platform) (BatchFetcher, bool) {
	f, ok := r[p]
	if !ok {
		return nil, false
	}
	bf, ok := f.(BatchFetcher)
	return bf, ok
}
