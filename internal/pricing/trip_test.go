package pricing

import (
	"strings"
	"testing"

	"tripquote/internal/domain/models"
)

func TestBuildTrip_SingleLeg(t *testing.T) {
	leg := PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30"))
	trip := BuildTrip(leg, nil, true)

	if !trip.IsBookable {
		t.Fatalf("expected bookable trip, warnings=%v", trip.Warnings)
	}
	if trip.HasReturn() {
		t.Fatal("did not expect a return leg")
	}
	if trip.Total != 66 || trip.OutboundTotal != 66 || trip.ReturnTotal != 0 {
		t.Fatalf("unexpected totals: total=%v outbound=%v return=%v", trip.Total, trip.OutboundTotal, trip.ReturnTotal)
	}
	if trip.Currency != "EUR" || trip.CurrencyMismatch {
		t.Fatalf("unexpected currency state: %s %v", trip.Currency, trip.CurrencyMismatch)
	}
	if trip.Fingerprint == "" {
		t.Fatal("expected fingerprint")
	}
}

func TestBuildTrip_AsymmetricReturnLeg(t *testing.T) {
	outRule := sampleRule()
	outRule.DepositEnabled = true
	outRule.DepositMode = models.DepositFixedAmount
	outRule.DepositValue = 10
	outbound := PriceLeg(sampleRoute(), outRule, sampleScenario("14:30"))

	backRoute := sampleRoute()
	backRoute.ID = 8
	backRoute.OriginID, backRoute.DestinationID = 3, 1
	backRoute.DayPrice = 30
	back := PriceLeg(backRoute, nil, models.Scenario{Passengers: 1, ChildSeats: 1, TravelDate: "2026-07-08", TravelTime: "09:00"})

	trip := BuildTrip(outbound, &back, true)
	if !trip.HasReturn() || len(trip.Legs) != 2 {
		t.Fatalf("expected two legs, got %d", len(trip.Legs))
	}
	if trip.OutboundTotal != 66 || trip.ReturnTotal != 30 || trip.Total != 96 {
		t.Fatalf("totals outbound=%v return=%v total=%v", trip.OutboundTotal, trip.ReturnTotal, trip.Total)
	}
	if trip.BaseFare != 70 || trip.Waiting != 10 || trip.Oversize != 8 {
		t.Fatalf("category sums base=%v waiting=%v oversize=%v", trip.BaseFare, trip.Waiting, trip.Oversize)
	}
	if !trip.DepositEnabled || trip.DepositAmount != 10 {
		t.Fatalf("deposit enabled=%v amount=%v, want true/10", trip.DepositEnabled, trip.DepositAmount)
	}
	if !trip.IsBookable {
		t.Fatalf("expected bookable, warnings=%v", trip.Warnings)
	}
}

func TestBuildTrip_CurrencyMismatchIsNeverBookable(t *testing.T) {
	outbound := PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30"))
	usdRoute := sampleRoute()
	usdRoute.ID = 9
	usdRoute.Currency = "USD"
	back := PriceLeg(usdRoute, sampleRule(), sampleScenario("10:00"))

	trip := BuildTrip(outbound, &back, true)
	if trip.IsBookable {
		t.Fatal("expected non-bookable trip on currency mismatch")
	}
	if !trip.CurrencyMismatch {
		t.Fatal("expected mismatch flag")
	}
	found := false
	for _, w := range trip.Warnings {
		if strings.Contains(w, "different currencies") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected currency warning, got %v", trip.Warnings)
	}
}

func TestBuildTrip_CapacityBlocksBooking(t *testing.T) {
	outbound := PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30"))
	back := PriceLeg(sampleRoute(), sampleRule(), models.Scenario{Passengers: 9, TravelTime: "10:00"})

	trip := BuildTrip(outbound, &back, true)
	if !trip.HasBlockingCapacity || trip.IsBookable {
		t.Fatalf("expected capacity block, got blocking=%v bookable=%v", trip.HasBlockingCapacity, trip.IsBookable)
	}
	if trip.Total <= 0 {
		t.Fatal("price should still be shown")
	}
	if len(trip.Warnings) == 0 || !strings.HasPrefix(trip.Warnings[0], LabelReturn+": ") {
		t.Fatalf("expected warnings attributed to the return leg, got %v", trip.Warnings)
	}
}

func TestBuildTrip_HintFalseIsNotBookable(t *testing.T) {
	leg := PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30"))
	if BuildTrip(leg, nil, false).IsBookable {
		t.Fatal("incomplete input must not be bookable")
	}
}

func TestBuildTrip_WarningsPrefixedPerLeg(t *testing.T) {
	route := sampleRoute()
	route.AllowsRoundTrip = false
	sc := sampleScenario("14:30")
	sc.TripType = models.TripRoundTrip
	leg := PriceLeg(route, sampleRule(), sc)

	trip := BuildTrip(leg, nil, true)
	if len(trip.Warnings) != 1 || !strings.HasPrefix(trip.Warnings[0], LabelOutbound+": ") {
		t.Fatalf("unexpected warnings %v", trip.Warnings)
	}
	if !trip.IsBookable {
		t.Fatal("a round trip downgrade alone must not block booking")
	}
}

func TestFingerprint_ChangesWithTravelDate(t *testing.T) {
	a := BuildTrip(PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30")), nil, true)
	sc := sampleScenario("14:30")
	sc.TravelDate = "2026-07-02"
	b := BuildTrip(PriceLeg(sampleRoute(), sampleRule(), sc), nil, true)
	c := BuildTrip(PriceLeg(sampleRoute(), sampleRule(), sampleScenario("14:30")), nil, true)

	if a.Fingerprint == b.Fingerprint {
		t.Fatal("fingerprint must change with travel date")
	}
	if a.Fingerprint != c.Fingerprint {
		t.Fatal("fingerprint must be deterministic")
	}
}
