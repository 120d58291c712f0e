package coupon

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingValidator struct {
	calls atomic.Int32
	delay time.Duration
	resp  Response
	err   error
}

func (c *countingValidator) Validate(ctx context.Context, req Request) (Response, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.resp, c.err
}

func TestCachedValidator_ServesRepeatFromCache(t *testing.T) {
	next := &countingValidator{resp: Response{OK: true, Code: "SUMMER10", DiscountAmount: 10}}
	v := NewCachedValidator(next, NewMemoryCache(), time.Minute)

	for i := 0; i < 3; i++ {
		resp, err := v.Validate(context.Background(), sampleRequest())
		if err != nil || !resp.OK {
			t.Fatalf("call %d: unexpected %+v %v", i, resp, err)
		}
	}
	if n := next.calls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}

	other := sampleRequest()
	other.Fingerprint = "changed"
	if _, err := v.Validate(context.Background(), other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := next.calls.Load(); n != 2 {
		t.Fatalf("a new fingerprint must miss the cache, got %d calls", n)
	}
}

func TestCachedValidator_CoalescesConcurrentCalls(t *testing.T) {
	next := &countingValidator{delay: 50 * time.Millisecond, resp: Response{OK: true}}
	v := NewCachedValidator(next, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.Validate(context.Background(), sampleRequest()); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := next.calls.Load(); n > 2 {
		t.Fatalf("expected concurrent calls to be coalesced, got %d upstream calls", n)
	}
}

// gatedValidator blocks until release is closed or its context ends.
type gatedValidator struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedValidator) Validate(ctx context.Context, req Request) (Response, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return Response{OK: true, Code: req.Code}, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func TestCachedValidator_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	next := &gatedValidator{started: make(chan struct{}), release: make(chan struct{})}
	v := NewCachedValidator(next, NewMemoryCache(), time.Minute)

	ctx1, cancel1 := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := v.Validate(ctx1, sampleRequest())
		first <- err
	}()
	<-next.started

	type result struct {
		resp Response
		err  error
	}
	second := make(chan result, 1)
	go func() {
		resp, err := v.Validate(context.Background(), sampleRequest())
		second <- result{resp, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel1()
	select {
	case err := <-first:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller err = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancelled caller did not return")
	}

	close(next.release)
	select {
	case got := <-second:
		if got.err != nil || !got.resp.OK {
			t.Fatalf("remaining caller must get the shared answer, got %+v %v", got.resp, got.err)
		}
	case <-time.After(time.Second):
		t.Fatalf("remaining caller did not return")
	}
}

func TestCachedValidator_ErrorsAreNotCached(t *testing.T) {
	next := &countingValidator{err: errors.New("down")}
	v := NewCachedValidator(next, NewMemoryCache(), time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := v.Validate(context.Background(), sampleRequest()); err == nil {
			t.Fatalf("expected error")
		}
	}
	if n := next.calls.Load(); n != 2 {
		t.Fatalf("errors must not be cached, got %d calls", n)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(context.Background(), "k", Response{OK: true}, time.Minute)
	if _, ok, _ := c.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(context.Background(), "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(context.Background(), k, Response{OK: true}, time.Minute)
	}
	now = now.Add(2 * time.Minute)
	_ = c.Set(context.Background(), "d", Response{OK: true}, time.Minute)

	if n := len(c.entries); n != 1 {
		t.Fatalf("expired one-off keys must be swept, %d entries left", n)
	}
	if _, ok, _ := c.Get(context.Background(), "d"); !ok {
		t.Fatalf("fresh key missing after sweep")
	}
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	c := NewMemoryCache()
	c.MaxEntries = 2

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(context.Background(), k, Response{OK: true}, time.Hour)
	}
	if n := len(c.entries); n != 2 {
		t.Fatalf("cache must stay at MaxEntries, got %d", n)
	}
	if _, ok, _ := c.Get(context.Background(), "c"); !ok {
		t.Fatalf("newest key must be kept")
	}

	// overwriting an existing key never evicts
	_ = c.Set(context.Background(), "c", Response{OK: false}, time.Hour)
	if n := len(c.entries); n != 2 {
		t.Fatalf("overwrite changed size to %d", n)
	}
}

func TestCacheKey(t *testing.T) {
	req := sampleRequest()
	req.Code = " summer10 "
	req.Email = "Rider@Example.com"
	if got := CacheKey(req); got != "abc123:SUMMER10:rider@example.com" {
		t.Fatalf("unexpected key %q", got)
	}
}
