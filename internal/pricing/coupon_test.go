package pricing

import (
	"testing"

	"tripquote/internal/domain/models"
)

func depositTrip(t *testing.T) TripQuote {
	t.Helper()
	rule := sampleRule()
	rule.DepositEnabled = true
	rule.DepositMode = models.DepositFixedAmount
	rule.DepositValue = 20
	return BuildTrip(PriceLeg(sampleRoute(), rule, sampleScenario("14:30")), nil, true)
}

func TestApplyCoupon_Discount(t *testing.T) {
	trip := depositTrip(t)
	got := ApplyCoupon(trip, CouponResult{OK: true, CouponID: 4, Code: "summer10", DiscountAmount: 6, Fingerprint: trip.Fingerprint})

	if got.Coupon == nil {
		t.Fatal("expected applied coupon")
	}
	if got.Coupon.Code != "SUMMER10" || got.Coupon.DiscountAmount != 6 || got.Coupon.TotalBeforeCoupon != 66 {
		t.Fatalf("unexpected coupon %+v", got.Coupon)
	}
	if got.Total != 60 {
		t.Fatalf("total = %v, want 60", got.Total)
	}
	if got.DepositAmount != 20 || !got.DepositEnabled {
		t.Fatalf("deposit = %v enabled=%v", got.DepositAmount, got.DepositEnabled)
	}
	if trip.Total != 66 || trip.Coupon != nil {
		t.Fatal("input quote must not be mutated")
	}
}

func TestApplyCoupon_DiscountClampedAndDepositCapped(t *testing.T) {
	trip := depositTrip(t)

	got := ApplyCoupon(trip, CouponResult{OK: true, Code: "ALL", DiscountAmount: 500, Fingerprint: trip.Fingerprint})
	if got.Coupon.DiscountAmount != 66 || got.Total != 0 {
		t.Fatalf("discount=%v total=%v, want 66/0", got.Coupon.DiscountAmount, got.Total)
	}
	if got.DepositEnabled || got.DepositAmount != 0 {
		t.Fatalf("deposit must be disabled when nothing is left, got %v/%v", got.DepositEnabled, got.DepositAmount)
	}

	got = ApplyCoupon(trip, CouponResult{OK: true, Code: "BIG", DiscountAmount: 50, Fingerprint: trip.Fingerprint})
	if got.Total != 16 || got.DepositAmount != 16 {
		t.Fatalf("total=%v deposit=%v, want 16/16", got.Total, got.DepositAmount)
	}

	got = ApplyCoupon(trip, CouponResult{OK: true, Code: "NEG", DiscountAmount: -5, Fingerprint: trip.Fingerprint})
	if got.Coupon.DiscountAmount != 0 || got.Total != 66 {
		t.Fatalf("negative discount must clamp to zero, got %v total %v", got.Coupon.DiscountAmount, got.Total)
	}
}

func TestApplyCoupon_DiscountBoundsHold(t *testing.T) {
	trip := depositTrip(t)
	for _, d := range []float64{-100, 0, 0.004, 1, 65.99, 66, 66.01, 1e9} {
		got := ApplyCoupon(trip, CouponResult{OK: true, Code: "X", DiscountAmount: d, Fingerprint: trip.Fingerprint})
		c := got.Coupon
		if c.DiscountAmount < 0 || c.DiscountAmount > c.TotalBeforeCoupon {
			t.Fatalf("discount %v outside [0, %v]", c.DiscountAmount, c.TotalBeforeCoupon)
		}
		if got.Total < 0 || got.Total != round2(c.TotalBeforeCoupon-c.DiscountAmount) {
			t.Fatalf("final total %v inconsistent with %v - %v", got.Total, c.TotalBeforeCoupon, c.DiscountAmount)
		}
		if got.DepositAmount > got.Total {
			t.Fatalf("deposit %v above total %v", got.DepositAmount, got.Total)
		}
	}
}

func TestApplyCoupon_RejectedLeavesPriceUnchanged(t *testing.T) {
	trip := depositTrip(t)
	got := ApplyCoupon(trip, CouponResult{OK: false, Message: "Coupon expired", DiscountAmount: 30, Fingerprint: trip.Fingerprint})
	if got.Coupon != nil || got.Total != 66 || got.DepositAmount != 20 {
		t.Fatalf("rejected coupon changed the quote: %+v", got)
	}
	if got.CouponMessage != "Coupon expired" {
		t.Fatalf("message = %q", got.CouponMessage)
	}
}

func TestApplyCoupon_StaleResultIgnored(t *testing.T) {
	trip := depositTrip(t)
	got := ApplyCoupon(trip, CouponResult{OK: true, Code: "OLD", DiscountAmount: 10, Fingerprint: "somethingelse"})
	if got.Coupon != nil || got.Total != 66 || got.CouponMessage != "" {
		t.Fatalf("stale result must be discarded silently: %+v", got)
	}
	if !IsStale(trip, CouponResult{OK: true}) {
		t.Fatal("result without fingerprint must count as stale")
	}
}

func TestApplyCoupon_ReapplyReplacesPrevious(t *testing.T) {
	trip := depositTrip(t)
	first := ApplyCoupon(trip, CouponResult{OK: true, Code: "A", DiscountAmount: 60, Fingerprint: trip.Fingerprint})
	second := ApplyCoupon(first, CouponResult{OK: true, Code: "B", DiscountAmount: 6, Fingerprint: trip.Fingerprint})
	if second.Total != 60 || second.DepositAmount != 20 || !second.DepositEnabled {
		t.Fatalf("second coupon must apply on the undiscounted quote, got total=%v deposit=%v", second.Total, second.DepositAmount)
	}
	if StripCoupon(second).Total != 66 {
		t.Fatal("strip must restore the undiscounted total")
	}
}
