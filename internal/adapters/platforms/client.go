package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"streamtags/internal/core/pacer"
	perr "streamtags/internal/platform/errors"
	"streamtags/internal/platform/logger"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultRetryBase   = time.Second
	maxWait            = 30 * time.Second
	maxBody            = 1 << 20
)

// Observer receives one call per HTTP exchange; status is 0 on transport errors
type Observer interface {
	ObserveRequest(platform string, status int, d time.Duration)
}

// Options configures a Client
type Options struct {
	Platform  Platform
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// MaxAttempts bounds tries per request on rate limit and transient statuses
	MaxAttempts int
	RetryBase   time.Duration
	// RateLimitStatuses are retried with backoff; default 429
	RateLimitStatuses []int

	Pacer    *pacer.Pacer
	Observer Observer
	// HTTP overrides the underlying client (tests); Timeout is ignored when set
	HTTP *http.Client
}

// Request describes one call. Path is joined to BaseURL unless it is absolute
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Client is the shared platform HTTP core: pacing, bounded retry with
// exponential backoff honoring rate limit headers, and status mapping
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a Client with defaults filled in
func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if len(o.RateLimitStatuses) == 0 {
		o.RateLimitStatuses = []int{http.StatusTooManyRequests}
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http:  hc,
		opts:  o,
		log:   *logger.Named(string(o.Platform)),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Platform returns the platform this client talks to
func (c *Client) Platform() Platform { return c.opts.Platform }

// Do sends r, retrying rate limited and transient responses. On success the
// caller owns resp.Body. 404 is ErrNotFound, other failures are perr errors,
// non-2xx ones wrapping a *StatusError
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.url(r)
	platform := string(c.opts.Platform)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.opts.Pacer.Wait(ctx, platform); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bodyReader(r.Body))
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "%s new request failed", platform)
		}
		if c.opts.UserAgent != "" {
			req.Header.Set("User-Agent", c.opts.UserAgent)
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range r.Header {
			req.Header[k] = slices.Clone(vs)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			c.observe(0, lat)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s request failed", platform)
		}
		c.observe(resp.StatusCode, lat)

		rl := parseRateHeaders(resp.Header)
		c.log.Debug().
			Str("method", method).
			Str("path", req.URL.Path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", lat).
			Int("rate_remaining", rl.remaining).
			Msg("platform http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusNotFound:
			_ = drainAndClose(resp.Body)
			return nil, ErrNotFound

		case slices.Contains(c.opts.RateLimitStatuses, resp.StatusCode):
			_ = drainAndClose(resp.Body)
			if attempt+1 >= c.opts.MaxAttempts {
				return nil, perr.Wrap(&StatusError{Status: resp.StatusCode},
					perr.ErrorCodeRateLimitExceeded, platform+" rate limited after retries")
			}
			wait := computeWait(rl, c.now())
			if wait <= 0 {
				wait = c.backoff(attempt)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("sleep", wait).Int("attempt", attempt).Msg("rate limited backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}

		case resp.StatusCode == http.StatusBadGateway,
			resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode == http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if attempt+1 >= c.opts.MaxAttempts {
				return nil, perr.Wrap(&StatusError{Status: resp.StatusCode},
					perr.ErrorCodeUnavailable, platform+" transient server error")
			}
			back := c.backoff(attempt)
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", back).Int("attempt", attempt).Msg("transient error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, err
			}

		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			se := &StatusError{Status: resp.StatusCode, Body: string(body)}
			return nil, perr.Wrapf(se, statusCode(resp.StatusCode), "%s request failed", platform)
		}
	}
}

// GetJSON runs r and decodes a JSON body into out
func (c *Client) GetJSON(ctx context.Context, r Request, out any) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("close body failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s read body failed", c.opts.Platform)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "%s decode body failed", c.opts.Platform)
	}
	return nil
}

func (c *Client) url(r Request) string {
	u := r.Path
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = c.opts.BaseURL + u
	}
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

func (c *Client) observe(status int, d time.Duration) {
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveRequest(string(c.opts.Platform), status, d)
	}
}

// backoff doubles RetryBase per attempt, capped at maxWait
func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxWait {
		return maxWait
	}
	return d
}

func bodyReader(b []byte) io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func statusCode(status int) perr.ErrorCode {
	switch status {
	case http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case http.StatusTooManyRequests:
		return perr.ErrorCodeTooManyRequests
	case http.StatusBadRequest:
		return perr.ErrorCodeInvalidArgument
	}
	if status >= 500 {
		return perr.ErrorCodeUnavailable
	}
	return perr.ErrorCodeUnknown
}
