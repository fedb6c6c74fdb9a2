package twitch

import "sync"

// TokenCache holds the app access token. There is no TTL: a token lives
// until the API rejects it with 401
type TokenCache struct {
	mu    sync.Mutex
	token string
}

// Get returns the cached token, empty when none
func (tc *TokenCache) Get() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.token
}

// Set replaces the cached token
func (tc *TokenCache) Set(tok string) {
	tc.mu.Lock()
	tc.token = tok
	tc.mu.Unlock()
}

// Invalidate clears the cache only if it still holds stale, so a token
// refreshed by another caller in the meantime survives
func (tc *TokenCache) Invalidate(stale string) {
	tc.mu.Lock()
	if tc.token == stale {
		tc.token = ""
	}
	tc.mu.Unlock()
}
