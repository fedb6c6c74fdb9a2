package platforms

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	perr "streamtags/internal/platform/errors"
)

// ErrNotFound is returned by Client.Do for 404; fetchers turn it into an empty result
var ErrNotFound = perr.NotFoundf("platform identity not found")

// StatusError carries a non-2xx response
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "unexpected status " + strconv.Itoa(e.Status)
	}
	return "unexpected status " + strconv.Itoa(e.Status) + " body " + e.Body
}

// HTTPStatus returns the upstream status
func (e *StatusError) HTTPStatus() int { return e.Status }

// StatusOf returns the upstream status carried by err, 0 when none
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsUnauthorized reports whether err came from a 401
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsRateLimited reports whether err is a rate limit that outlasted the retry budget
func IsRateLimited(err error) bool { return perr.IsCode(err, perr.ErrorCodeRateLimitExceeded) }

type rateHeaders struct {
	remaining  int // -1 when absent
	reset      time.Time
	retryAfter int
}

// parseRateHeaders reads Retry-After plus the Ratelimit-* family (Twitch)
// and the X-RateLimit-* family
func parseRateHeaders(h http.Header) rateHeaders {
	rh := rateHeaders{remaining: -1}
	for _, k := range []string{"Ratelimit-Remaining", "X-Ratelimit-Remaining"} {
		if v := h.Get(k); v != "" {
			rh.remaining = atoi(v)
			break
		}
	}
	for _, k := range []string{"Ratelimit-Reset", "X-Ratelimit-Reset"} {
		if sec := atoi(h.Get(k)); sec > 0 {
			rh.reset = time.Unix(int64(sec), 0).UTC()
			break
		}
	}
	rh.retryAfter = atoi(h.Get("Retry-After"))
	return rh
}

// computeWait decides how long to wait based on headers; 0 means use backoff
func computeWait(rh rateHeaders, now time.Time) time.Duration {
	var d time.Duration
	switch {
	case rh.retryAfter > 0:
		d = time.Duration(rh.retryAfter) * time.Second
	case rh.remaining == 0 && !rh.reset.IsZero() && rh.reset.After(now):
		d = rh.reset.Sub(now)
	}
	if d > maxWait {
		d = maxWait
	}
	return d
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
