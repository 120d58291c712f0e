package models

import "time"

// LocationKind tags what kind of place a Location is.
type LocationKind string

const (
	LocationCity     LocationKind = "city"
	LocationAirport  LocationKind = "airport"
	LocationPort     LocationKind = "port"
	LocationStation  LocationKind = "station"
	LocationHotel    LocationKind = "hotel"
	LocationLandmark LocationKind = "landmark"
	LocationCustom   LocationKind = "custom"
)

// Location is catalog reference data for a pickup / drop-off point.
type Location struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	NameAlt  string       `json:"nameAlt,omitempty"`
	Code     string       `json:"code"`
	Kind     LocationKind `json:"kind"`
	IsActive bool         `json:"isActive"`
}

// Route prices one ordered origin/destination pair.
type Route struct {
	ID            int64  `json:"id"`
	OriginID      int64  `json:"originId"`
	DestinationID int64  `json:"destinationId"`
	Currency      string `json:"currency"`

	DayPrice   float64 `json:"dayPrice"`
	NightPrice float64 `json:"nightPrice"`

	IncludedPassengers int `json:"includedPassengers"`
	IncludedBags       int `json:"includedBags"`
	IncludedLargeBags  int `json:"includedLargeBags"`
	MaxPassengers      int `json:"maxPassengers"`
	MaxBags            int `json:"maxBags"`

	// AllowsRoundTrip and RoundTripMultiplier only matter for the single-route
	// round trip shortcut; the booking flow prices the return as its own leg.
	AllowsRoundTrip     bool    `json:"allowsRoundTrip"`
	RoundTripMultiplier float64 `json:"roundTripMultiplier"`

	IsActive bool `json:"isActive"`
}

// DepositMode selects how the dynamic deposit amount is derived.
type DepositMode string

const (
	DepositFixedAmount  DepositMode = "fixed_amount"
	DepositPercentTotal DepositMode = "percent_total"
	DepositPerPerson    DepositMode = "per_person"
)

// WaitingBilling selects how chargeable waiting minutes are billed.
type WaitingBilling string

const (
	// WaitingHourly bills every started hour in full.
	WaitingHourly WaitingBilling = "hourly"
	// WaitingPerMinute bills each chargeable minute at the legacy per-minute fee.
	WaitingPerMinute WaitingBilling = "per_minute"
)

// PricingRule is the fee and deposit policy attached to a Route.
type PricingRule struct {
	ID      int64 `json:"id"`
	RouteID int64 `json:"routeId"`

	ExtraPassengerFee float64 `json:"extraPassengerFee"`
	ExtraBagFee       float64 `json:"extraBagFee"`
	OversizeBagFee    float64 `json:"oversizeBagFee"`
	ChildSeatFee      float64 `json:"childSeatFee"`
	BoosterSeatFee    float64 `json:"boosterSeatFee"`

	WaitingIncludedMinutes int            `json:"waitingIncludedMinutes"`
	WaitingFeePerHour      float64        `json:"waitingFeePerHour"`
	WaitingFeePerMinute    float64        `json:"waitingFeePerMinute"`
	WaitingBilling         WaitingBilling `json:"waitingBilling"`

	// NightStart and NightEnd are "HH:MM"; the window may wrap midnight.
	NightStart string `json:"nightStart"`
	NightEnd   string `json:"nightEnd"`

	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
	Priority  int        `json:"priority"`

	DepositEnabled   bool        `json:"depositEnabled"`
	DepositMode      DepositMode `json:"depositMode"`
	DepositValue     float64     `json:"depositValue"`
	DepositBaseFloor float64     `json:"depositBaseFloor"`

	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TripType is what the rider asked for on a single leg.
type TripType string

const (
	TripOneWay    TripType = "one_way"
	TripRoundTrip TripType = "round_trip"
)

// Scenario is the rider-supplied input for one leg.
type Scenario struct {
	Passengers     int      `json:"passengers"`
	Bags           int      `json:"bags"`
	LargeBags      int      `json:"largeBags"`
	ChildSeats     int      `json:"childSeats"`
	BoosterSeats   int      `json:"boosterSeats"`
	WaitingMinutes int      `json:"waitingMinutes"`
	TravelDate     string   `json:"travelDate"` // YYYY-MM-DD
	TravelTime     string   `json:"travelTime"` // HH:MM
	TripType       TripType `json:"tripType,omitempty"`
}

// Catalog is one consistent snapshot of active reference data.
type Catalog struct {
	Locations []Location    `json:"locations"`
	Routes    []Route       `json:"routes"`
	Rules     []PricingRule `json:"-"`
}

// Location returns the location with id, if present.
func (c Catalog) Location(id int64) (Location, bool) {
	for _, l := range c.Locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// FindRoute returns the active route for the ordered origin/destination pair.
// When several rows are active for the pair the lowest id wins.
func (c Catalog) FindRoute(originID, destinationID int64) (Route, bool) {
	var (
		found Route
		ok    bool
	)
	for _, r := range c.Routes {
		if !r.IsActive || r.OriginID != originID || r.DestinationID != destinationID {
			continue
		}
		if !ok || r.ID < found.ID {
			found, ok = r, true
		}
	}
	return found, ok
}
