// Package youtube is a placeholder fetcher: YouTube exposes no channel tags
// worth merging, so every identity resolves to an empty result without I/O
package youtube

import (
	"context"

	"streamtags/internal/adapters/platforms"
)

// Fetcher implements platforms.Fetcher as a no-op
type Fetcher struct{}

// New returns the no-op fetcher
func New() Fetcher { return Fetcher{} }

// Platform implements platforms.Fetcher
func (Fetcher) Platform() platforms.Platform { return platforms.YouTube }

// FetchTags always returns an empty result
func (Fetcher) FetchTags(ctx context.Context, _ string) ([]string, error) {
	return nil, ctx.Err()
}
