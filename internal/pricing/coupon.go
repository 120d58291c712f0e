package pricing

import "strings"

// CouponResult is the outcome of an external coupon validation, tagged with
// the fingerprint key of the quote it was requested for.
type CouponResult struct {
	OK             bool    `json:"ok"`
	CouponID       int64   `json:"couponId"`
	Code           string  `json:"code"`
	DiscountAmount float64 `json:"discountAmount"`
	BaseTotal      float64 `json:"baseTotal"`
	FinalTotal     float64 `json:"finalTotal"`
	PartnerID      string  `json:"partnerId,omitempty"`
	Message        string  `json:"message,omitempty"`
	Fingerprint    string  `json:"fingerprint"`
}

// AppliedCoupon is attached to a TripQuote once a discount has been applied.
type AppliedCoupon struct {
	ID                  int64   `json:"id"`
	Code                string  `json:"code"`
	DiscountAmount      float64 `json:"discountAmount"`
	TotalBeforeCoupon   float64 `json:"totalBeforeCoupon"`
	DepositBeforeCoupon float64 `json:"depositBeforeCoupon"`
	DepositWasEnabled   bool    `json:"depositWasEnabled"`
	PartnerID           string  `json:"partnerId,omitempty"`
	Fingerprint         string  `json:"fingerprint"`
}

const msgCouponRejected = "Coupon could not be applied"

// IsStale reports whether res was computed for a different quote than t.
func IsStale(t TripQuote, res CouponResult) bool {
	return res.Fingerprint == "" || res.Fingerprint != t.Fingerprint
}

// ApplyCoupon post-processes t with an external coupon result. Fare
// components are never re-derived. A stale result leaves t untouched; a
// rejected one clears any previous discount and only sets CouponMessage.
func ApplyCoupon(t TripQuote, res CouponResult) TripQuote {
	if IsStale(t, res) {
		return t
	}
	out := StripCoupon(t)

	if !res.OK {
		out.CouponMessage = strings.TrimSpace(res.Message)
		if out.CouponMessage == "" {
			out.CouponMessage = msgCouponRejected
		}
		return out
	}

	discount := round2(clamp(nonNeg(res.DiscountAmount), 0, out.Total))
	finalTotal := round2(out.Total - discount)
	finalDeposit := out.DepositAmount
	if finalDeposit > finalTotal {
		finalDeposit = finalTotal
	}

	out.Coupon = &AppliedCoupon{
		ID:                  res.CouponID,
		Code:                strings.ToUpper(strings.TrimSpace(res.Code)),
		DiscountAmount:      discount,
		TotalBeforeCoupon:   out.Total,
		DepositBeforeCoupon: out.DepositAmount,
		DepositWasEnabled:   out.DepositEnabled,
		PartnerID:           res.PartnerID,
		Fingerprint:         out.Fingerprint,
	}
	out.Total = finalTotal
	out.DepositAmount = finalDeposit
	if finalDeposit <= 0 {
		out.DepositAmount = 0
		out.DepositEnabled = false
	}
	out.CouponMessage = strings.TrimSpace(res.Message)
	return out
}

// StripCoupon restores the pre-coupon totals and clears coupon fields.
func StripCoupon(t TripQuote) TripQuote {
	if t.Coupon != nil {
		t.Total = t.Coupon.TotalBeforeCoupon
		t.DepositAmount = t.Coupon.DepositBeforeCoupon
		t.DepositEnabled = t.Coupon.DepositWasEnabled
	}
	t.Coupon = nil
	t.CouponMessage = ""
	return t
}
