package services

import (
	"sync"

	"tripquote/internal/pricing"
)

// QuoteSession holds the current quote while a coupon validation is in
// flight. Only the response for the current fingerprint is ever applied.
type QuoteSession struct {
	mu       sync.Mutex
	current  pricing.TripQuote
	hasQuote bool
	accepted *pricing.CouponResult
}

func NewQuoteSession() *QuoteSession {
	return &QuoteSession{}
}

// Update replaces the current quote with a freshly computed one. A coupon
// accepted for the previous quote is carried over only when the fingerprint
// is unchanged; otherwise it is dropped and must be validated again.
func (s *QuoteSession) Update(t pricing.TripQuote) pricing.TripQuote {
	s.mu.Lock()
	defer s.mu.Unlock()

	t = pricing.StripCoupon(t)
	if s.accepted != nil {
		if s.accepted.Fingerprint == t.Fingerprint {
			t = pricing.ApplyCoupon(t, *s.accepted)
		} else {
			s.accepted = nil
		}
	}
	s.current = t
	s.hasQuote = true
	return t
}

// Accept applies a coupon validation result. A result for any other
// fingerprint is discarded and reported as not accepted.
func (s *QuoteSession) Accept(res pricing.CouponResult) (pricing.TripQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasQuote || pricing.IsStale(s.current, res) {
		return s.current, false
	}
	s.current = pricing.ApplyCoupon(s.current, res)
	if res.OK && s.current.Coupon != nil {
		r := res
		s.accepted = &r
	} else {
		s.accepted = nil
	}
	return s.current, true
}
