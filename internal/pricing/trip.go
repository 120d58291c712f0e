package pricing

import (
	"fmt"
	"strings"
)

const (
	LabelOutbound = "Outbound"
	LabelReturn   = "Return"
)

// TripQuote is the bookable-or-not aggregate of one or two priced legs.
type TripQuote struct {
	Legs []LegQuote `json:"legs"`

	Currency         string `json:"currency"`
	CurrencyMismatch bool   `json:"currencyMismatch"`

	OutboundTotal   float64 `json:"outboundTotal"`
	ReturnTotal     float64 `json:"returnTotal"`
	BaseFare        float64 `json:"baseFare"`
	ExtraPassengers float64 `json:"extraPassengers"`
	ExtraBags       float64 `json:"extraBags"`
	Oversize        float64 `json:"oversize"`
	Seats           float64 `json:"seats"`
	Waiting         float64 `json:"waiting"`
	Total           float64 `json:"total"`

	DepositEnabled bool    `json:"depositEnabled"`
	DepositAmount  float64 `json:"depositAmount"`

	HasBlockingCapacity bool     `json:"hasBlockingCapacity"`
	IsBookable          bool     `json:"isBookable"`
	Warnings            []string `json:"warnings"`

	Fingerprint string `json:"fingerprint"`

	Coupon        *AppliedCoupon `json:"coupon,omitempty"`
	CouponMessage string         `json:"couponMessage,omitempty"`
}

// HasReturn reports whether the trip carries a return leg.
func (t TripQuote) HasReturn() bool {
	return len(t.Legs) > 1
}

// BuildTrip merges the outbound leg and an optional return leg. The return
// leg may use a different route and scenario. bookableHint is the caller's
// verdict on input completeness; currency mismatch and capacity violations
// override it.
func BuildTrip(outbound LegQuote, ret *LegQuote, bookableHint bool) TripQuote {
	legs := []LegQuote{outbound}
	labels := []string{LabelOutbound}
	if ret != nil {
		legs = append(legs, *ret)
		labels = append(labels, LabelReturn)
	}

	t := TripQuote{
		Legs:     legs,
		Currency: outbound.Currency,
		Warnings: []string{},
	}

	var base, pax, bags, oversize, seats, waiting, total, deposit []float64
	for i, leg := range legs {
		base = append(base, leg.BaseFare)
		pax = append(pax, leg.ExtraPassengersCost)
		bags = append(bags, leg.ExtraBagsCost)
		oversize = append(oversize, leg.OversizeCost)
		seats = append(seats, leg.ChildSeatCost, leg.BoosterSeatCost)
		waiting = append(waiting, leg.WaitingCost)
		total = append(total, leg.Total)
		deposit = append(deposit, leg.DepositAmount)

		if leg.DepositEnabled {
			t.DepositEnabled = true
		}
		if leg.CapacityExceeded || exceedsCapacity(leg.Scenario, leg.MaxPassengers, leg.MaxBags) {
			t.HasBlockingCapacity = true
		}
		for _, w := range leg.Warnings {
			t.Warnings = append(t.Warnings, labels[i]+": "+w)
		}
	}

	t.OutboundTotal = round2(outbound.Total)
	if ret != nil {
		t.ReturnTotal = round2(ret.Total)
	}
	t.BaseFare = sum2(base...)
	t.ExtraPassengers = sum2(pax...)
	t.ExtraBags = sum2(bags...)
	t.Oversize = sum2(oversize...)
	t.Seats = sum2(seats...)
	t.Waiting = sum2(waiting...)
	t.Total = sum2(total...)
	t.DepositAmount = clamp(sum2(deposit...), 0, t.Total)

	if currencies := distinctCurrencies(legs); len(currencies) > 1 {
		t.CurrencyMismatch = true
		t.Warnings = append(t.Warnings, fmt.Sprintf("Legs are priced in different currencies (%s); this trip cannot be booked", strings.Join(currencies, ", ")))
	}

	t.IsBookable = bookableHint && !t.CurrencyMismatch && !t.HasBlockingCapacity
	t.Fingerprint = FingerprintOf(t).Key()
	return t
}

func distinctCurrencies(legs []LegQuote) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, leg := range legs {
		c := strings.ToUpper(strings.TrimSpace(leg.Currency))
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
