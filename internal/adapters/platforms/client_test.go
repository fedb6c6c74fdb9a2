package platforms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	perr "streamtags/internal/platform/errors"
)

type recObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (o *recObserver) ObserveRequest(platform string, status int, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func newTestClient(t *testing.T, h http.HandlerFunc, o Options) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	if o.Platform == "" {
		o.Platform = Kick
	}
	o.BaseURL = srv.URL
	c := NewClient(o)
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestDo_SuccessSetsHeaders(t *testing.T) {
	t.Parallel()
	var gotUA, gotAuth, gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, Options{UserAgent: "ua-test"})

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), Request{
		Path:   "/v1/x",
		Query:  url.Values{"login": {"a", "b"}},
		Header: http.Header{"Authorization": {"Bearer t"}},
	}, &out)
	if err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if !out.OK || gotUA != "ua-test" || gotAuth != "Bearer t" || gotQuery != "login=a&login=b" {
		t.Fatalf("unexpected request: ua=%q auth=%q q=%q out=%+v", gotUA, gotAuth, gotQuery, out)
	}
}

func TestDo_NotFound(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}, Options{})
	_, err := c.Do(context.Background(), Request{Path: "/missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want NotFound code, got %v", perr.CodeOf(err))
	}
}

func TestDo_RateLimitBoundedRetry(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	obs := &recObserver{}
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, Options{RetryBase: 10 * time.Millisecond, Observer: obs})

	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if !IsRateLimited(err) {
		t.Fatalf("want RateLimitExceeded, got %v", err)
	}
	if StatusOf(err) != http.StatusTooManyRequests {
		t.Fatalf("status not carried: %v", err)
	}
	if hits.Load() != 3 {
		t.Fatalf("attempts = %d, want 3", hits.Load())
	}
	if len(*waits) != 2 || (*waits)[0] != 10*time.Millisecond || (*waits)[1] != 20*time.Millisecond {
		t.Fatalf("backoff waits = %v, want [10ms 20ms]", *waits)
	}
	if len(obs.statuses) != 3 || obs.statuses[0] != 429 {
		t.Fatalf("observer saw %v", obs.statuses)
	}
}

func TestDo_RateLimitThenSuccessHonorsRetryAfter(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}, Options{RateLimitStatuses: []int{http.StatusTooManyRequests, http.StatusForbidden}})

	resp, err := c.Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()
	if len(*waits) != 1 || (*waits)[0] != 2*time.Second {
		t.Fatalf("waits = %v, want [2s]", *waits)
	}
}

func TestDo_ForbiddenNotRetriedByDefault(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("nope"))
	}, Options{})
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if StatusOf(err) != http.StatusForbidden || !perr.IsCode(err, perr.ErrorCodeForbidden) {
		t.Fatalf("want forbidden status error, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("attempts = %d, want 1", hits.Load())
	}
}

func TestDo_UnauthorizedSurfaces(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, Options{})
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if !IsUnauthorized(err) || !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestDo_TransientRetried(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}, Options{RetryBase: time.Millisecond})
	resp, err := c.Do(context.Background(), Request{Path: "/x"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()
	if len(*waits) != 2 {
		t.Fatalf("waits = %v", *waits)
	}
}

func TestDo_TransportErrorIsUnavailable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()
	c := NewClient(Options{Platform: Kick, BaseURL: base})
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable, got %v", err)
	}
}

func TestDo_CancelledContext(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Do(ctx, Request{Path: "/x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestGetJSON_BadBody(t *testing.T) {
	t.Parallel()
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}, Options{})
	var out map[string]any
	if err := c.GetJSON(context.Background(), Request{Path: "/x"}, &out); !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error, got %v", err)
	}
}

func TestComputeWaitAndBackoff(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_000, 0)
	h := http.Header{}
	h.Set("Ratelimit-Remaining", "0")
	h.Set("Ratelimit-Reset", "1005")
	if got := computeWait(parseRateHeaders(h), now); got != 5*time.Second {
		t.Fatalf("reset wait = %v", got)
	}
	h.Set("Ratelimit-Remaining", "10")
	if got := computeWait(parseRateHeaders(h), now); got != 0 {
		t.Fatalf("remaining>0 wait = %v", got)
	}
	h = http.Header{}
	h.Set("Retry-After", "3600")
	if got := computeWait(parseRateHeaders(h), now); got != maxWait {
		t.Fatalf("capped wait = %v", got)
	}
	if got := computeWait(parseRateHeaders(http.Header{}), now); got != 0 {
		t.Fatalf("no headers wait = %v", got)
	}

	c := NewClient(Options{Platform: Twitch})
	if c.backoff(0) != time.Second || c.backoff(2) != 4*time.Second || c.backoff(10) != maxWait {
		t.Fatalf("backoff progression wrong: %v %v %v", c.backoff(0), c.backoff(2), c.backoff(10))
	}
}

func TestParseAndRegistry(t *testing.T) {
	t.Parallel()
	p, err := Parse(" TWITCH ")
	if err != nil || p != Twitch {
		t.Fatalf("Parse = %q, %v", p, err)
	}
	if _, err := Parse("myspace"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid arg, got %v", err)
	}
	r := NewRegistry(stubFetcher{p: Kick}, nil)
	if _, ok := r.Get(Kick); !ok {
		t.Fatalf("kick fetcher missing")
	}
	if _, ok := r.Batch(Kick); ok {
		t.Fatalf("stub should not be a batch fetcher")
	}
	if _, ok := r.Get(Twitch); ok {
		t.Fatalf("twitch should be absent")
	}
}

type stubFetcher struct{ p Platform }

func (s stubFetcher) Platform() Platform { return s.p }
func (s stubFetcher) FetchTags(context.Context, string) ([]string, error) {
	return nil, nil
}
