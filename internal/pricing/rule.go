package pricing

import (
	"sort"
	"time"

	"tripquote/internal/domain/models"
)

// SelectRule picks the applicable pricing rule for route on travelDate.
// Active rules for the route are ordered by priority (lower first), then by
// most recent update. Among them the first whose validity window contains the
// date wins; if none does, the first rule overall is used. A nil result means
// the route has no rule and DefaultRule applies.
func SelectRule(route models.Route, candidates []models.PricingRule, travelDate time.Time) *models.PricingRule {
	rules := make([]models.PricingRule, 0, len(candidates))
	for _, r := range candidates {
		if r.RouteID == route.ID && r.IsActive {
			rules = append(rules, r)
		}
	}
	if len(rules) == 0 {
		return nil
	}

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].UpdatedAt.After(rules[j].UpdatedAt)
	})

	if !travelDate.IsZero() {
		for i := range rules {
			if ruleCoversDate(rules[i], travelDate) {
				return &rules[i]
			}
		}
	}
	return &rules[0]
}

func ruleCoversDate(r models.PricingRule, d time.Time) bool {
	day := dateOnly(d)
	if r.ValidFrom != nil && day.Before(dateOnly(*r.ValidFrom)) {
		return false
	}
	if r.ValidTo != nil && day.After(dateOnly(*r.ValidTo)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultRule is what a route without any pricing rule is priced with:
// no fees, no deposit, the standard night window.
func DefaultRule() models.PricingRule {
	return models.PricingRule{
		NightStart:     DefaultNightStart,
		NightEnd:       DefaultNightEnd,
		WaitingBilling: models.WaitingHourly,
		DepositMode:    models.DepositPercentTotal,
		Priority:       DefaultPriority,
		IsActive:       true,
	}
}

const (
	DefaultNightStart = "22:00"
	DefaultNightEnd   = "06:00"
	DefaultPriority   = 100
)
