// Package kick fetches channel tags and categories from Kick's public v2
// channel endpoint. Kick answers 403 to clients it thinks are bots, so the
// fetcher sends a browser User-Agent and treats 403 like 429
package kick

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"streamtags/internal/adapters/platforms"
	"streamtags/internal/core/pacer"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
)

const (
	apiURLDefault = "https://kick.com"
	// DefaultUserAgent mimics a desktop browser
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Options configures the fetcher
type Options struct {
	APIURL      string
	UserAgent   string
	Timeout     time.Duration
	MaxAttempts int
	RetryBase   time.Duration
	Pacer       *pacer.Pacer
	Observer    platforms.Observer
	HTTP        *http.Client
}

// Fetcher implements platforms.Fetcher for Kick
type Fetcher struct {
	c   *platforms.Client
	log logger.Logger
}

// New returns a Kick fetcher
func New(o Options) *Fetcher {
	if o.APIURL == "" {
		o.APIURL = apiURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	return &Fetcher{
		c: platforms.NewClient(platforms.Options{
			Platform:          platforms.Kick,
			BaseURL:           o.APIURL,
			UserAgent:         o.UserAgent,
			Timeout:           o.Timeout,
			MaxAttempts:       o.MaxAttempts,
			RetryBase:         o.RetryBase,
			RateLimitStatuses: []int{http.StatusTooManyRequests, http.StatusForbidden},
			Pacer:             o.Pacer,
			Observer:          o.Observer,
			HTTP:              o.HTTP,
		}),
		log: *logger.Named("kick"),
	}
}

// Platform implements platforms.Fetcher
func (f *Fetcher) Platform() platforms.Platform { return platforms.Kick }

// FetchTags returns channel and livestream tags followed by the current
// category names. An unknown channel or blank username is an empty result
func (f *Fetcher) FetchTags(ctx context.Context, username string) ([]string, error) {
	sig, err := f.FetchSignals(ctx, username)
	return sig.Live, err
}

// FetchSignals implements platforms.SignalFetcher. recent_categories go to History
func (f *Fetcher) FetchSignals(ctx context.Context, username string) (platforms.Signals, error) {
	slug := strings.ToLower(strings.TrimSpace(username))
	if slug == "" {
		f.log.Warn().Msg("kick username empty; skipping")
		return platforms.Signals{}, nil
	}
	var ch channel
	err := f.c.GetJSON(ctx, platforms.Request{Path: "/api/v2/channels/" + url.PathEscape(slug)}, &ch)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			f.log.Warn().Str("username", slug).Msg("kick channel not found")
			return platforms.Signals{}, nil
		}
		return platforms.Signals{}, err
	}
	return platforms.Signals{Live: ch.live(), History: ch.history()}, nil
}

type named struct {
	Name string `json:"name"`
}

type channel struct {
	Slug       string   `json:"slug"`
	Tags       []string `json:"tags"`
	Category   *named   `json:"category"`
	Livestream *struct {
		Tags       []string `json:"tags"`
		Categories []named  `json:"categories"`
	} `json:"livestream"`
	RecentCategories []named `json:"recent_categories"`
}

// live flattens the payload: tags first, then current category names, without repeats
func (ch channel) live() []string {
	var out []string
	add := appender(&out)
	for _, t := range ch.Tags {
		add(t)
	}
	if ch.Livestream != nil {
		for _, t := range ch.Livestream.Tags {
			add(t)
		}
	}
	if ch.Category != nil {
		add(ch.Category.Name)
	}
	if ch.Livestream != nil {
		for _, c := range ch.Livestream.Categories {
			add(c.Name)
		}
	}
	return out
}

func (ch channel) history() []string {
	var out []string
	add := appender(&out)
	for _, c := range ch.RecentCategories {
		add(c.Name)
	}
	return out
}

func appender(out *[]string) func(string) {
	seen := map[string]struct{}{}
	return func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		*out = append(*out, s)
	}
}
