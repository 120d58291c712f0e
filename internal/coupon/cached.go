package coupon

import (
	"context"
	"time"

	"tripquote/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultCallTimeout bounds one shared upstream call when CachedValidator.CallTimeout is zero.
const DefaultCallTimeout = 10 * time.Second

// CachedValidator answers from Cache when it can and coalesces concurrent
// identical requests into one upstream call. Upstream errors are never cached.
// The shared call runs detached from any single caller's context, so one
// caller going away does not fail the others.
type CachedValidator struct {
	Next        Validator
	Cache       Cache
	TTL         time.Duration
	CallTimeout time.Duration

	group singleflight.Group
}

func NewCachedValidator(next Validator, cache Cache, ttl time.Duration) *CachedValidator {
	return &CachedValidator{Next: next, Cache: cache, TTL: ttl}
}

// Validate implements Validator.
func (v *CachedValidator) Validate(ctx context.Context, req Request) (Response, error) {
	key := CacheKey(req)
	if v.Cache != nil {
		resp, ok, err := v.Cache.Get(ctx, key)
		if err != nil {
			utils.LogWarn("", "coupon", "cache_get", "coupon cache read failed", zap.Error(err))
		} else if ok {
			return resp, nil
		}
	}

	ch := v.group.DoChan(key, func() (any, error) {
		timeout := v.CallTimeout
		if timeout <= 0 {
			timeout = DefaultCallTimeout
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		resp, err := v.Next.Validate(callCtx, req)
		if err != nil {
			return Response{}, err
		}
		if v.Cache != nil {
			if err := v.Cache.Set(callCtx, key, resp, v.TTL); err != nil {
				utils.LogWarn("", "coupon", "cache_set", "coupon cache write failed", zap.Error(err))
			}
		}
		return resp, nil
	})

	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Response{}, res.Err
		}
		return res.Val.(Response), nil
	}
}
