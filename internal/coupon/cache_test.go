package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCache(mr.Addr())
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr, c := newTestRedis(t)
	ctx := context.Background()
	key := CacheKey(sampleRequest())

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	want := Response{OK: true, CouponID: 4, Code: "SUMMER10", DiscountAmount: 10, BaseTotal: 96, FinalTotal: 86, PartnerID: "p-2"}
	if err := c.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("tripquote:coupon:" + key) {
		t.Fatalf("value not stored under the prefixed key")
	}
	if ttl := mr.TTL("tripquote:coupon:" + key); ttl != time.Minute {
		t.Fatalf("ttl = %v, want 1m", ttl)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss after expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCache_CorruptValue(t *testing.T) {
	mr, c := newTestRedis(t)
	if err := mr.Set("tripquote:coupon:bad", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), "bad"); err == nil || ok {
		t.Fatalf("expected decode error, got ok=%v err=%v", ok, err)
	}
}

func TestRedisCache_ServerDown(t *testing.T) {
	mr, c := newTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, ok, err := c.Get(ctx, "k"); err == nil || ok {
		t.Fatalf("unreachable redis must be an error, not a miss: ok=%v err=%v", ok, err)
	}

	// the validator still answers without its cache
	next := &countingValidator{resp: Response{OK: true, Code: "SUMMER10"}}
	v := NewCachedValidator(next, c, time.Minute)
	resp, err := v.Validate(ctx, sampleRequest())
	if err != nil || !resp.OK {
		t.Fatalf("validation must not depend on the cache, got %+v %v", resp, err)
	}
	if n := next.calls.Load(); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
}
