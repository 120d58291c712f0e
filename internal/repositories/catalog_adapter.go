package repositories

import (
	"database/sql"
	"strings"

	"tripquote/internal/domain/models"
)

// Defaults substituted for absent or NULL catalog columns. This file is the
// only place catalog rows are turned into strict models.
const (
	DefaultMaxPassengers       = 8
	DefaultMaxBags             = 8
	DefaultPriority            = 100
	DefaultNightStart          = "22:00"
	DefaultNightEnd            = "06:00"
	DefaultRoundTripMultiplier = 1.0
)

type locationRow struct {
	ID       int64
	Name     string
	NameAlt  sql.NullString
	Code     sql.NullString
	Kind     sql.NullString
	IsActive sql.NullBool
}

type routeRow struct {
	ID                  int64
	OriginID            int64
	DestinationID       int64
	DayPrice            float64
	NightPrice          sql.NullFloat64
	Currency            sql.NullString
	IncludedPassengers  sql.NullInt64
	IncludedBags        sql.NullInt64
	IncludedLargeBags   sql.NullInt64
	MaxPassengers       sql.NullInt64
	MaxBags             sql.NullInt64
	AllowsRoundTrip     sql.NullBool
	RoundTripMultiplier sql.NullFloat64
	IsActive            sql.NullBool
}

type ruleRow struct {
	ID                     int64
	RouteID                int64
	ExtraPassengerFee      sql.NullFloat64
	ExtraBagFee            sql.NullFloat64
	OversizeBagFee         sql.NullFloat64
	ChildSeatFee           sql.NullFloat64
	BoosterSeatFee         sql.NullFloat64
	WaitingIncludedMinutes sql.NullInt64
	WaitingFeePerHour      sql.NullFloat64
	WaitingFeePerMinute    sql.NullFloat64
	WaitingBilling         sql.NullString
	NightStart             sql.NullString
	NightEnd               sql.NullString
	ValidFrom              sql.NullTime
	ValidTo                sql.NullTime
	Priority               sql.NullInt64
	DepositEnabled         sql.NullBool
	DepositMode            sql.NullString
	DepositValue           sql.NullFloat64
	DepositBaseFloor       sql.NullFloat64
	IsActive               sql.NullBool
	UpdatedAt              sql.NullTime
}

func locationFromRow(r locationRow) models.Location {
	kind := models.LocationKind(strings.ToLower(strings.TrimSpace(r.Kind.String)))
	switch kind {
	case models.LocationCity, models.LocationAirport, models.LocationPort, models.LocationStation,
		models.LocationHotel, models.LocationLandmark, models.LocationCustom:
	default:
		kind = models.LocationCustom
	}
	return models.Location{
		ID:       r.ID,
		Name:     strings.TrimSpace(r.Name),
		NameAlt:  strings.TrimSpace(r.NameAlt.String),
		Code:     strings.ToUpper(strings.TrimSpace(r.Code.String)),
		Kind:     kind,
		IsActive: boolOr(r.IsActive, true),
	}
}

func routeFromRow(r routeRow, defaultCurrency string) models.Route {
	out := models.Route{
		ID:                  r.ID,
		OriginID:            r.OriginID,
		DestinationID:       r.DestinationID,
		Currency:            strings.ToUpper(strings.TrimSpace(r.Currency.String)),
		DayPrice:            nonNegative(r.DayPrice),
		NightPrice:          nonNegative(floatOr(r.NightPrice, r.DayPrice)),
		IncludedPassengers:  intOr(r.IncludedPassengers, 1),
		IncludedBags:        intOr(r.IncludedBags, 0),
		IncludedLargeBags:   intOr(r.IncludedLargeBags, 0),
		MaxPassengers:       intOr(r.MaxPassengers, DefaultMaxPassengers),
		MaxBags:             intOr(r.MaxBags, DefaultMaxBags),
		AllowsRoundTrip:     boolOr(r.AllowsRoundTrip, false),
		RoundTripMultiplier: floatOr(r.RoundTripMultiplier, DefaultRoundTripMultiplier),
		IsActive:            boolOr(r.IsActive, true),
	}
	if out.Currency == "" {
		out.Currency = strings.ToUpper(defaultCurrency)
	}
	if out.IncludedPassengers < 1 {
		out.IncludedPassengers = 1
	}
	if out.IncludedBags < 0 {
		out.IncludedBags = 0
	}
	if out.IncludedLargeBags < 0 {
		out.IncludedLargeBags = 0
	}
	if out.MaxPassengers < out.IncludedPassengers {
		out.MaxPassengers = out.IncludedPassengers
	}
	if minBags := out.IncludedBags + out.IncludedLargeBags; out.MaxBags < minBags {
		out.MaxBags = minBags
	}
	if out.RoundTripMultiplier < 1 {
		out.RoundTripMultiplier = 1
	}
	return out
}

func ruleFromRow(r ruleRow) models.PricingRule {
	out := models.PricingRule{
		ID:                     r.ID,
		RouteID:                r.RouteID,
		ExtraPassengerFee:      nonNegative(floatOr(r.ExtraPassengerFee, 0)),
		ExtraBagFee:            nonNegative(floatOr(r.ExtraBagFee, 0)),
		OversizeBagFee:         nonNegative(floatOr(r.OversizeBagFee, 0)),
		ChildSeatFee:           nonNegative(floatOr(r.ChildSeatFee, 0)),
		BoosterSeatFee:         nonNegative(floatOr(r.BoosterSeatFee, 0)),
		WaitingIncludedMinutes: intOr(r.WaitingIncludedMinutes, 0),
		WaitingFeePerHour:      nonNegative(floatOr(r.WaitingFeePerHour, 0)),
		WaitingFeePerMinute:    nonNegative(floatOr(r.WaitingFeePerMinute, 0)),
		WaitingBilling:         models.WaitingHourly,
		NightStart:             clockOr(r.NightStart, DefaultNightStart),
		NightEnd:               clockOr(r.NightEnd, DefaultNightEnd),
		Priority:               intOr(r.Priority, DefaultPriority),
		DepositEnabled:         boolOr(r.DepositEnabled, false),
		DepositMode:            models.DepositPercentTotal,
		DepositValue:           nonNegative(floatOr(r.DepositValue, 0)),
		DepositBaseFloor:       nonNegative(floatOr(r.DepositBaseFloor, 0)),
		IsActive:               boolOr(r.IsActive, true),
	}
	if strings.EqualFold(strings.TrimSpace(r.WaitingBilling.String), string(models.WaitingPerMinute)) {
		out.WaitingBilling = models.WaitingPerMinute
	}
	switch mode := models.DepositMode(strings.ToLower(strings.TrimSpace(r.DepositMode.String))); mode {
	case models.DepositFixedAmount, models.DepositPercentTotal, models.DepositPerPerson:
		out.DepositMode = mode
	}
	if r.ValidFrom.Valid {
		t := r.ValidFrom.Time
		out.ValidFrom = &t
	}
	if r.ValidTo.Valid {
		t := r.ValidTo.Time
		out.ValidTo = &t
	}
	if r.UpdatedAt.Valid {
		out.UpdatedAt = r.UpdatedAt.Time
	}
	return out
}

func floatOr(v sql.NullFloat64, def float64) float64 {
	if v.Valid {
		return v.Float64
	}
	return def
}

func intOr(v sql.NullInt64, def int) int {
	if v.Valid {
		return int(v.Int64)
	}
	return def
}

func boolOr(v sql.NullBool, def bool) bool {
	if v.Valid {
		return v.Bool
	}
	return def
}

// clockOr trims TIME values like "22:00:00" to "22:00".
func clockOr(v sql.NullString, def string) string {
	s := strings.TrimSpace(v.String)
	if !v.Valid || s == "" {
		return def
	}
	parts := strings.Split(s, ":")
	if len(parts) >= 2 {
		return parts[0] + ":" + parts[1]
	}
	return s
}

func nonNegative(x float64) float64 {
	if x < 0 || x != x {
		return 0
	}
	return x
}
