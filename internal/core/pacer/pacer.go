// Package pacer spaces out outbound calls per key (platform name) with a
// token bucket per key. One Pacer is shared by every fetcher of a process
package pacer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultDelay is the minimum gap between two calls on the same key
const DefaultDelay = 100 * time.Millisecond

// Pacer hands out per-key limiters. The zero value is not usable; call New
type Pacer struct {
	mu       sync.Mutex
	def      time.Duration
	limiters map[string]*rate.Limiter
}

// New returns a Pacer whose keys default to delay between calls.
// delay <= 0 means DefaultDelay
func New(delay time.Duration) *Pacer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Pacer{def: delay, limiters: make(map[string]*rate.Limiter)}
}

// Set overrides the delay for key. A delay <= 0 disables pacing for that key
func (p *Pacer) Set(key string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiters[key] = newLimiter(delay)
}

// Wait blocks until key's next slot or ctx is done. A nil Pacer never waits
func (p *Pacer) Wait(ctx context.Context, key string) error {
	if p == nil {
		return ctx.Err()
	}
	return p.limiter(key).Wait(ctx)
}

// Delay reports the configured gap for key
func (p *Pacer) Delay(key string) time.Duration {
	lim := p.limiter(key)
	if lim.Limit() == rate.Inf {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(lim.Limit()))
}

func (p *Pacer) limiter(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	lim, ok := p.limiters[key]
	if !ok {
		lim = newLimiter(p.def)
		p.limiters[key] = lim
	}
	return lim
}

func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
