package pricing

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// LegFingerprint is the part of a leg a coupon decision depends on.
type LegFingerprint struct {
	RouteID    int64
	TravelDate string
	TravelTime string
	Total      float64
}

// Fingerprint identifies the quote a coupon result was computed against.
type Fingerprint struct {
	Legs []LegFingerprint
}

// FingerprintOf extracts route ids, travel dates/times and leg totals.
func FingerprintOf(t TripQuote) Fingerprint {
	f := Fingerprint{Legs: make([]LegFingerprint, 0, len(t.Legs))}
	for _, leg := range t.Legs {
		f.Legs = append(f.Legs, LegFingerprint{
			RouteID:    leg.RouteID,
			TravelDate: strings.TrimSpace(leg.Scenario.TravelDate),
			TravelTime: strings.TrimSpace(leg.Scenario.TravelTime),
			Total:      round2(leg.Total),
		})
	}
	return f
}

// Key is a stable hex digest of the fingerprint.
func (f Fingerprint) Key() string {
	parts := make([]string, 0, len(f.Legs))
	for _, l := range f.Legs {
		parts = append(parts, fmt.Sprintf("%d|%s|%s|%.2f", l.RouteID, l.TravelDate, l.TravelTime, l.Total))
	}
	sum := blake2b.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:16])
}
