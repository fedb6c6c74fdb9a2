// Package twitch fetches channel tags and the current game from the Twitch
// Helix API using an app access token (client credentials)
package twitch

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"streamtags/internal/adapters/platforms"
	"streamtags/internal/core/pacer"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
)

const (
	authURLDefault = "https://id.twitch.tv/oauth2/token"
	apiURLDefault  = "https://api.twitch.tv"

	// MaxBatch is the Helix limit for login and broadcaster_id query params
	MaxBatch = 100
)

// validLogin is the shape Helix accepts; one malformed login fails the whole request
var validLogin = regexp.MustCompile(`^[a-z0-9_]{1,25}$`)

// Options configures the fetcher
type Options struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	APIURL       string
	Timeout      time.Duration
	MaxAttempts  int
	RetryBase    time.Duration
	Pacer        *pacer.Pacer
	Observer     platforms.Observer
	HTTP         *http.Client
}

// Fetcher implements platforms.BatchFetcher for Twitch
type Fetcher struct {
	opts   Options
	api    *platforms.Client
	auth   *platforms.Client
	tokens *TokenCache
	authMu chan struct{} // single-flight for token fetches
	log    logger.Logger
}

// New returns a Twitch fetcher. Missing credentials are not an error here;
// every fetch reports Unauthorized instead
func New(o Options) *Fetcher {
	if o.AuthURL == "" {
		o.AuthURL = authURLDefault
	}
	if o.APIURL == "" {
		o.APIURL = apiURLDefault
	}
	base := platforms.Options{
		Platform:    platforms.Twitch,
		Timeout:     o.Timeout,
		MaxAttempts: o.MaxAttempts,
		RetryBase:   o.RetryBase,
		Pacer:       o.Pacer,
		Observer:    o.Observer,
		HTTP:        o.HTTP,
	}
	api := base
	api.BaseURL = o.APIURL
	auth := base
	auth.BaseURL = o.AuthURL

	return &Fetcher{
		opts:   o,
		api:    platforms.NewClient(api),
		auth:   platforms.NewClient(auth),
		tokens: &TokenCache{},
		authMu: make(chan struct{}, 1),
		log:    *logger.Named("twitch"),
	}
}

// Platform implements platforms.Fetcher
func (f *Fetcher) Platform() platforms.Platform { return platforms.Twitch }

// MaxBatch implements platforms.BatchFetcher
func (f *Fetcher) MaxBatch() int { return MaxBatch }

// FetchTags resolves a single login through a batch of one
func (f *Fetcher) FetchTags(ctx context.Context, username string) ([]string, error) {
	m, err := f.FetchTagsBatch(ctx, []string{username})
	if err != nil {
		return nil, err
	}
	return m[strings.ToLower(strings.TrimSpace(username))], nil
}

// FetchTagsBatch resolves logins to ids, then ids to channel info, in
// chunks of MaxBatch. Each entry is the channel tags followed by the game name
func (f *Fetcher) FetchTagsBatch(ctx context.Context, usernames []string) (map[string][]string, error) {
	if f.opts.ClientID == "" || f.opts.ClientSecret == "" {
		return nil, perr.Unauthorizedf("twitch client credentials not configured")
	}
	logins, rejected := dedupeLogins(usernames)
	if len(rejected) > 0 {
		f.log.Warn().Strs("logins", rejected).Msg("skipping malformed twitch logins")
	}
	out := make(map[string][]string, len(logins))
	for start := 0; start < len(logins); start += MaxBatch {
		end := min(start+MaxBatch, len(logins))
		if err := f.fetchChunk(ctx, logins[start:end], out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *Fetcher) fetchChunk(ctx context.Context, logins []string, out map[string][]string) error {
	var users usersResponse
	q := url.Values{"login": logins}
	if err := f.helix(ctx, "/helix/users", q, &users); err != nil {
		if isNotFound(err) {
			f.log.Warn().Int("logins", len(logins)).Msg("twitch users not found")
			return nil
		}
		return err
	}
	if len(users.Data) == 0 {
		return nil
	}

	idToLogin := make(map[string]string, len(users.Data))
	ids := make([]string, 0, len(users.Data))
	for _, u := range users.Data {
		idToLogin[u.ID] = strings.ToLower(u.Login)
		ids = append(ids, u.ID)
	}

	var chans channelsResponse
	if err := f.helix(ctx, "/helix/channels", url.Values{"broadcaster_id": ids}, &chans); err != nil {
		if isNotFound(err) {
			f.log.Warn().Int("ids", len(ids)).Msg("twitch channels not found")
			return nil
		}
		return err
	}
	for _, ch := range chans.Data {
		login, ok := idToLogin[ch.BroadcasterID]
		if !ok {
			continue
		}
		raw := make([]string, 0, len(ch.Tags)+1)
		raw = append(raw, ch.Tags...)
		if ch.GameName != "" {
			raw = append(raw, ch.GameName)
		}
		out[login] = raw
	}
	return nil
}

// helix issues an authenticated GET. A 401 drops the cached token, fetches
// a new one and retries exactly once
func (f *Fetcher) helix(ctx context.Context, path string, q url.Values, out any) error {
	for attempt := 0; ; attempt++ {
		tok, err := f.token(ctx)
		if err != nil {
			return err
		}
		err = f.api.GetJSON(ctx, platforms.Request{
			Path:  path,
			Query: q,
			Header: http.Header{
				"Client-Id":     {f.opts.ClientID},
				"Authorization": {"Bearer " + tok},
			},
		}, out)
		if attempt == 0 && platforms.IsUnauthorized(err) {
			f.log.Warn().Str("path", path).Msg("twitch token rejected; re-authenticating")
			f.tokens.Invalidate(tok)
			continue
		}
		return err
	}
}

// token returns the cached app token or fetches one. Concurrent callers
// wait for a single in-flight fetch
func (f *Fetcher) token(ctx context.Context) (string, error) {
	if tok := f.tokens.Get(); tok != "" {
		return tok, nil
	}
	select {
	case f.authMu <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-f.authMu }()

	if tok := f.tokens.Get(); tok != "" {
		return tok, nil
	}

	form := url.Values{
		"client_id":     {f.opts.ClientID},
		"client_secret": {f.opts.ClientSecret},
		"grant_type":    {"client_credentials"},
	}
	var tr tokenResponse
	err := f.auth.GetJSON(ctx, platforms.Request{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": {"application/x-www-form-urlencoded"}},
		Body:   []byte(form.Encode()),
	}, &tr)
	if err != nil {
		if platforms.StatusOf(err) == http.StatusBadRequest || platforms.IsUnauthorized(err) || platforms.StatusOf(err) == http.StatusForbidden {
			return "", perr.Wrap(err, perr.ErrorCodeUnauthorized, "twitch token request rejected")
		}
		return "", err
	}
	if tr.AccessToken == "" {
		return "", perr.Unauthorizedf("twitch token response without access_token")
	}
	f.tokens.Set(tr.AccessToken)
	f.log.Debug().Int("expires_in", tr.ExpiresIn).Msg("twitch app token acquired")
	return tr.AccessToken, nil
}

// dedupeLogins normalizes and dedupes usernames. Blank entries are dropped
// silently; malformed ones are returned in rejected
func dedupeLogins(usernames []string) (out, rejected []string) {
	out = make([]string, 0, len(usernames))
	seen := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		l := strings.ToLower(strings.TrimSpace(u))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		if !validLogin.MatchString(l) {
			rejected = append(rejected, l)
			continue
		}
		out = append(out, l)
	}
	return out, rejected
}

func isNotFound(err error) bool { return perr.IsCode(err, perr.ErrorCodeNotFound) }
