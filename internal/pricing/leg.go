package pricing

import (
	"fmt"
	"math"

	"tripquote/internal/domain/models"
)

// DepositAppliedMode records which policy determined a deposit amount: the
// configured models.DepositMode, the base floor, or none.
type DepositAppliedMode string

const (
	DepositAppliedNone      DepositAppliedMode = "none"
	DepositAppliedBaseFloor DepositAppliedMode = "base_floor"
)

// LegQuote is one fully itemized priced ride.
type LegQuote struct {
	RouteID  int64  `json:"routeId"`
	Currency string `json:"currency"`

	Period         Period  `json:"period"`
	PeriodFallback bool    `json:"periodFallback,omitempty"`
	BaseFare       float64 `json:"baseFare"`

	ExtraPassengers       int `json:"extraPassengers"`
	ExtraBags             int `json:"extraBags"`
	ExtraLargeBags        int `json:"extraLargeBags"`
	WaitingChargedMinutes int `json:"waitingChargedMinutes"`
	WaitingBilledHours    int `json:"waitingBilledHours"`

	ExtraPassengersCost float64 `json:"extraPassengersCost"`
	ExtraBagsCost       float64 `json:"extraBagsCost"`
	OversizeCost        float64 `json:"oversizeCost"`
	ChildSeatCost       float64 `json:"childSeatCost"`
	BoosterSeatCost     float64 `json:"boosterSeatCost"`
	WaitingCost         float64 `json:"waitingCost"`
	ExtrasTotal         float64 `json:"extrasTotal"`

	OneWayTotal         float64         `json:"oneWayTotal"`
	TripType            models.TripType `json:"tripType"`
	RoundTripMultiplier float64         `json:"roundTripMultiplier"`
	Total               float64         `json:"total"`

	MaxPassengers    int  `json:"maxPassengers"`
	MaxBags          int  `json:"maxBags"`
	CapacityExceeded bool `json:"capacityExceeded"`

	DepositEnabled     bool               `json:"depositEnabled"`
	DepositAmount      float64            `json:"depositAmount"`
	DepositAppliedMode DepositAppliedMode `json:"depositAppliedMode"`

	Warnings []string        `json:"warnings"`
	Scenario models.Scenario `json:"scenario"`
}

// PriceLeg prices one ride. A nil rule is priced as DefaultRule. Negative or
// garbage numbers are clamped to zero; the function never fails.
func PriceLeg(route models.Route, rule *models.PricingRule, scenario models.Scenario) LegQuote {
	r := DefaultRule()
	if rule != nil {
		r = *rule
	}
	sc := sanitizeScenario(scenario)

	q := LegQuote{
		RouteID:       route.ID,
		Currency:      route.Currency,
		MaxPassengers: nonNegInt(route.MaxPassengers),
		MaxBags:       nonNegInt(route.MaxBags),
		Warnings:      []string{},
		Scenario:      sc,
	}

	period, err := SelectPeriod(sc.TravelTime, r.NightStart, r.NightEnd)
	q.Period = period
	q.PeriodFallback = err != nil
	if period == PeriodNight {
		q.BaseFare = round2(nonNeg(route.NightPrice))
	} else {
		q.BaseFare = round2(nonNeg(route.DayPrice))
	}

	q.ExtraPassengers = nonNegInt(sc.Passengers - nonNegInt(route.IncludedPassengers))
	q.ExtraBags = nonNegInt(sc.Bags - nonNegInt(route.IncludedBags))
	q.ExtraLargeBags = nonNegInt(sc.LargeBags - nonNegInt(route.IncludedLargeBags))

	q.ExtraPassengersCost = round2(float64(q.ExtraPassengers) * nonNeg(r.ExtraPassengerFee))
	q.ExtraBagsCost = round2(float64(q.ExtraBags) * nonNeg(r.ExtraBagFee))
	q.OversizeCost = round2(float64(q.ExtraLargeBags) * nonNeg(r.OversizeBagFee))
	q.ChildSeatCost = round2(float64(sc.ChildSeats) * nonNeg(r.ChildSeatFee))
	q.BoosterSeatCost = round2(float64(sc.BoosterSeats) * nonNeg(r.BoosterSeatFee))
	q.WaitingChargedMinutes, q.WaitingBilledHours, q.WaitingCost = waitingCharge(r, sc.WaitingMinutes)

	q.ExtrasTotal = sum2(
		q.ExtraPassengersCost,
		q.ExtraBagsCost,
		q.OversizeCost,
		q.ChildSeatCost,
		q.BoosterSeatCost,
		q.WaitingCost,
	)
	q.OneWayTotal = sum2(q.BaseFare, q.ExtrasTotal)

	q.TripType = models.TripOneWay
	q.RoundTripMultiplier = 1
	q.Total = q.OneWayTotal
	if sc.TripType == models.TripRoundTrip {
		total, mult, warning := RoundTripTotal(route, q.OneWayTotal)
		if warning != "" {
			q.Warnings = append(q.Warnings, warning)
		} else {
			q.TripType = models.TripRoundTrip
			q.RoundTripMultiplier = mult
		}
		q.Total = total
	}

	q.Warnings = append(q.Warnings, capacityWarnings(sc, q.MaxPassengers, q.MaxBags)...)
	q.CapacityExceeded = exceedsCapacity(sc, q.MaxPassengers, q.MaxBags)

	q.DepositEnabled, q.DepositAmount, q.DepositAppliedMode = computeDeposit(r, q.Total, sc.Passengers)
	return q
}

// RoundTripTotal is the single-route round trip shortcut: the one-way total
// times the route multiplier (never below 1). Routes that do not allow round
// trips keep the one-way total and return a warning instead.
// TODO: drop once product confirms the two-leg flow is the only round trip mode.
func RoundTripTotal(route models.Route, oneWayTotal float64) (total, multiplier float64, warning string) {
	if !route.AllowsRoundTrip {
		return round2(oneWayTotal), 1, "Round trip is not available on this route; priced as one way"
	}
	multiplier = route.RoundTripMultiplier
	if math.IsNaN(multiplier) || multiplier < 1 {
		multiplier = 1
	}
	return round2(oneWayTotal * multiplier), multiplier, ""
}

func waitingCharge(r models.PricingRule, waitingMinutes int) (charged, hours int, cost float64) {
	charged = nonNegInt(waitingMinutes - nonNegInt(r.WaitingIncludedMinutes))
	if charged == 0 {
		return 0, 0, 0
	}

	perMinute := nonNeg(r.WaitingFeePerMinute)
	if r.WaitingBilling == models.WaitingPerMinute && perMinute > 0 {
		return charged, 0, round2(float64(charged) * perMinute)
	}

	perHour := nonNeg(r.WaitingFeePerHour)
	if perHour == 0 && perMinute > 0 {
		perHour = perMinute * 60
	}
	hours = (charged + 59) / 60
	return charged, hours, round2(float64(hours) * perHour)
}

func exceedsCapacity(sc models.Scenario, maxPassengers, maxBags int) bool {
	if maxPassengers > 0 && sc.Passengers > maxPassengers {
		return true
	}
	return maxBags > 0 && sc.Bags+sc.LargeBags > maxBags
}

func capacityWarnings(sc models.Scenario, maxPassengers, maxBags int) []string {
	var out []string
	if maxPassengers > 0 && sc.Passengers > maxPassengers {
		out = append(out, fmt.Sprintf("%d passengers exceed the vehicle capacity of %d", sc.Passengers, maxPassengers))
	}
	if bags := sc.Bags + sc.LargeBags; maxBags > 0 && bags > maxBags {
		out = append(out, fmt.Sprintf("%d bags exceed the luggage capacity of %d", bags, maxBags))
	}
	return out
}

func computeDeposit(r models.PricingRule, total float64, passengers int) (bool, float64, DepositAppliedMode) {
	if !r.DepositEnabled || total <= 0 {
		return false, 0, DepositAppliedNone
	}

	mode := r.DepositMode
	value := nonNeg(r.DepositValue)
	var dynamic float64
	switch mode {
	case models.DepositFixedAmount:
		dynamic = value
	case models.DepositPerPerson:
		dynamic = float64(passengers) * value
	default:
		mode = models.DepositPercentTotal
		dynamic = total * value / 100
	}
	dynamic = clamp(round2(dynamic), 0, total)

	amount, applied := dynamic, DepositAppliedMode(mode)
	if floor := round2(nonNeg(r.DepositBaseFloor)); floor > dynamic {
		amount, applied = clamp(floor, 0, total), DepositAppliedBaseFloor
	}
	if amount <= 0 {
		return false, 0, DepositAppliedNone
	}
	return true, amount, applied
}

func sanitizeScenario(sc models.Scenario) models.Scenario {
	sc.Passengers = nonNegInt(sc.Passengers)
	sc.Bags = nonNegInt(sc.Bags)
	sc.LargeBags = nonNegInt(sc.LargeBags)
	sc.ChildSeats = nonNegInt(sc.ChildSeats)
	sc.BoosterSeats = nonNegInt(sc.BoosterSeats)
	sc.WaitingMinutes = nonNegInt(sc.WaitingMinutes)
	if sc.TripType == "" {
		sc.TripType = models.TripOneWay
	}
	return sc
}
