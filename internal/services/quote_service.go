package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tripquote/internal/coupon"
	"tripquote/internal/domain"
	"tripquote/internal/domain/models"
	"tripquote/internal/metrics"
	"tripquote/internal/pricing"
	"tripquote/internal/utils"

	"go.uber.org/zap"
)

const (
	msgCouponUnavailable = "Coupon service is unavailable; the price is shown without discount"
	msgCouponNotEligible = "Coupons cannot be applied to this trip"
)

// CatalogLoader returns one consistent snapshot of the active catalog.
type CatalogLoader interface {
	Load(ctx context.Context) (models.Catalog, error)
}

// LegRequest is one requested ride: an ordered location pair plus the
// rider's scenario for it.
type LegRequest struct {
	OriginID      int64 `json:"originId"`
	DestinationID int64 `json:"destinationId"`
	models.Scenario
}

// QuoteRequest asks for an outbound leg and an optional return leg. The
// return leg may use a different route and scenario.
type QuoteRequest struct {
	Outbound LegRequest  `json:"outbound"`
	Return   *LegRequest `json:"return,omitempty"`
}

// CouponQuery names the coupon to apply. Fingerprint, when set, is the
// fingerprint of the quote the caller is showing; if the same inputs now
// price differently the request is refused with a ConflictError.
type CouponQuery struct {
	Code        string `json:"couponCode"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// LegPlace names the endpoints of one priced leg.
type LegPlace struct {
	Origin      models.Location
	Destination models.Location
}

// QuoteService turns a QuoteRequest into a TripQuote: catalog lookup, rule
// selection, leg pricing, aggregation and the optional coupon round trip.
type QuoteService struct {
	Catalog   CatalogLoader
	Coupons   coupon.Validator
	Metrics   *metrics.Metrics
	Docs      DocsService
	RequestID string
}

// WithRequestID returns a copy of s that tags its log lines with id.
func (s QuoteService) WithRequestID(id string) QuoteService {
	s.RequestID = id
	return s
}

// Quote prices the request. Pricing itself never fails; errors are limited
// to malformed requests, unknown routes and catalog failures.
func (s QuoteService) Quote(ctx context.Context, req QuoteRequest) (pricing.TripQuote, error) {
	trip, _, err := s.quote(ctx, req)
	return trip, err
}

// QuoteWithCoupon prices the request and, when a code is set, asks the coupon
// service for a discount. A failed or rejected validation leaves the quote
// undiscounted with CouponMessage set.
func (s QuoteService) QuoteWithCoupon(ctx context.Context, req QuoteRequest, q CouponQuery, who domain.RequestContext) (pricing.TripQuote, error) {
	trip, _, err := s.couponQuote(ctx, req, q, who)
	return trip, err
}

// QuoteSheet renders the coupon-adjusted quote as a PDF.
func (s QuoteService) QuoteSheet(ctx context.Context, req QuoteRequest, q CouponQuery, who domain.RequestContext) ([]byte, string, error) {
	trip, places, err := s.couponQuote(ctx, req, q, who)
	if err != nil {
		return nil, "", err
	}
	docs := s.Docs
	docs.RequestID = s.RequestID
	return docs.GenerateQuoteSheet(trip, places)
}

func (s QuoteService) couponQuote(ctx context.Context, req QuoteRequest, q CouponQuery, who domain.RequestContext) (pricing.TripQuote, []LegPlace, error) {
	trip, places, err := s.quote(ctx, req)
	if err != nil {
		return pricing.TripQuote{}, nil, err
	}
	if want := strings.TrimSpace(q.Fingerprint); want != "" && want != trip.Fingerprint {
		s.countError("conflict")
		utils.LogWarn(s.RequestID, "quote", "fingerprint_conflict", "caller quote is out of date",
			zap.String("expected", want), zap.String("fingerprint", trip.Fingerprint))
		return pricing.TripQuote{}, nil, domain.ConflictError{
			Resource: "quote",
			Msg:      "harga sudah berubah, minta quote ulang sebelum memakai kupon",
		}
	}
	return s.applyCoupon(ctx, req, trip, places, q.Code, who), places, nil
}

func (s QuoteService) quote(ctx context.Context, req QuoteRequest) (pricing.TripQuote, []LegPlace, error) {
	start := time.Now()
	trip, places, kind, err := s.price(ctx, req, true)
	if err != nil {
		s.countError(kind)
		return pricing.TripQuote{}, nil, err
	}

	if s.Metrics != nil {
		s.Metrics.QuotesTotal.WithLabelValues(strconv.Itoa(len(trip.Legs)), strconv.FormatBool(trip.IsBookable)).Inc()
		s.Metrics.QuoteDuration.Observe(time.Since(start).Seconds())
	}
	utils.LogEvent(s.RequestID, "quote", "priced", "trip priced",
		zap.Int("legs", len(trip.Legs)),
		zap.Float64("total", trip.Total),
		zap.Bool("bookable", trip.IsBookable),
		zap.String("fingerprint", trip.Fingerprint),
	)
	return trip, places, nil
}

// price runs the pricing pipeline against a fresh catalog snapshot. On
// failure kind names the error metric label. observe enables the per-leg
// fallback logs and counters.
func (s QuoteService) price(ctx context.Context, req QuoteRequest, observe bool) (pricing.TripQuote, []LegPlace, string, error) {
	if err := validateQuoteRequest(req); err != nil {
		return pricing.TripQuote{}, nil, "validation", err
	}
	if s.Catalog == nil {
		return pricing.TripQuote{}, nil, "catalog", domain.InternalError{Msg: "catalog belum dikonfigurasi"}
	}
	cat, err := s.Catalog.Load(ctx)
	if err != nil {
		if domain.IsInternal(err) {
			return pricing.TripQuote{}, nil, "catalog", err
		}
		return pricing.TripQuote{}, nil, "catalog", domain.InternalError{Msg: "gagal memuat katalog", Err: err}
	}

	outReq := req.Outbound
	if req.Return != nil {
		// a separate return leg replaces the single-route round trip shortcut
		outReq.TripType = models.TripOneWay
	}
	out, outPlace, outComplete, err := s.priceLeg(cat, outReq, pricing.LabelOutbound, observe)
	if err != nil {
		return pricing.TripQuote{}, nil, "route", err
	}
	places := []LegPlace{outPlace}
	complete := outComplete

	var ret *pricing.LegQuote
	if req.Return != nil {
		retReq := *req.Return
		retReq.TripType = models.TripOneWay
		leg, place, retComplete, err := s.priceLeg(cat, retReq, pricing.LabelReturn, observe)
		if err != nil {
			return pricing.TripQuote{}, nil, "route", err
		}
		ret = &leg
		places = append(places, place)
		complete = complete && retComplete
	}

	return pricing.BuildTrip(out, ret, complete), places, "", nil
}

// priceLeg resolves route and rule for one leg and prices it. complete is
// false when the rider has not supplied everything a booking needs.
func (s QuoteService) priceLeg(cat models.Catalog, req LegRequest, label string, observe bool) (pricing.LegQuote, LegPlace, bool, error) {
	route, ok := cat.FindRoute(req.OriginID, req.DestinationID)
	if !ok {
		return pricing.LegQuote{}, LegPlace{}, false, domain.NotFoundError{
			Resource: fmt.Sprintf("route %d->%d", req.OriginID, req.DestinationID),
		}
	}
	place := LegPlace{}
	place.Origin, _ = cat.Location(route.OriginID)
	place.Destination, _ = cat.Location(route.DestinationID)

	var travelDate time.Time
	if d := strings.TrimSpace(req.TravelDate); d != "" {
		// format already validated
		travelDate, _ = utils.ParseDate(d)
	}
	rule := pricing.SelectRule(route, cat.Rules, travelDate)
	if rule == nil && observe {
		utils.LogEvent(s.RequestID, "quote", "default_rule", "no active pricing rule; using defaults",
			zap.String("leg", label), zap.Int64("route_id", route.ID))
	}

	leg := pricing.PriceLeg(route, rule, req.Scenario)
	if observe && leg.PeriodFallback && strings.TrimSpace(req.TravelTime) != "" {
		if s.Metrics != nil {
			s.Metrics.PeriodFallbacks.Inc()
		}
		utils.LogWarn(s.RequestID, "quote", "period_fallback", "travel time unparseable; priced at day rate",
			zap.String("leg", label), zap.String("travel_time", req.TravelTime))
	}

	complete := !travelDate.IsZero() &&
		strings.TrimSpace(req.TravelTime) != "" &&
		!leg.PeriodFallback &&
		leg.Scenario.Passengers >= 1
	return leg, place, complete, nil
}

// applyCoupon validates code against trip. The catalog is read again once the
// validation call returns; if prices moved meanwhile the answer no longer
// matches the current quote and is dropped without a message.
func (s QuoteService) applyCoupon(ctx context.Context, req QuoteRequest, trip pricing.TripQuote, places []LegPlace, code string, who domain.RequestContext) pricing.TripQuote {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return trip
	}

	if trip.CurrencyMismatch || trip.Total <= 0 {
		trip.CouponMessage = msgCouponNotEligible
		return trip
	}
	if s.Coupons == nil {
		s.countCoupon(metrics.CouponFailed)
		trip.CouponMessage = msgCouponUnavailable
		return trip
	}

	session := NewQuoteSession()
	session.Update(trip)

	creq := buildCouponRequest(trip, places, code, who)
	start := time.Now()
	resp, err := s.Coupons.Validate(ctx, creq)
	if s.Metrics != nil {
		s.Metrics.CouponCallDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		s.countCoupon(metrics.CouponFailed)
		utils.LogWarn(s.RequestID, "coupon", "validate", "coupon validation failed", zap.Error(err))
		trip.CouponMessage = msgCouponUnavailable
		return trip
	}

	result := pricing.CouponResult{
		OK:             resp.OK,
		CouponID:       resp.CouponID,
		Code:           resp.Code,
		DiscountAmount: resp.DiscountAmount,
		BaseTotal:      resp.BaseTotal,
		FinalTotal:     resp.FinalTotal,
		PartnerID:      resp.PartnerID,
		Message:        resp.Message,
		Fingerprint:    creq.Fingerprint,
	}
	if result.Code == "" {
		result.Code = code
	}

	if current, _, _, err := s.price(ctx, req, false); err != nil {
		utils.LogWarn(s.RequestID, "coupon", "reprice", "catalog re-read failed; keeping the validated quote", zap.Error(err))
	} else {
		session.Update(current)
	}
	adjusted, accepted := session.Accept(result)
	switch {
	case !accepted:
		s.countCoupon(metrics.CouponStale)
	case adjusted.Coupon != nil:
		s.countCoupon(metrics.CouponApplied)
	default:
		s.countCoupon(metrics.CouponRejected)
	}
	utils.LogEvent(s.RequestID, "coupon", "validate", "coupon validated",
		zap.String("code", code),
		zap.Bool("ok", resp.OK),
		zap.Bool("accepted", accepted),
		zap.Float64("total", adjusted.Total),
	)
	return adjusted
}

// buildCouponRequest derives the validation call from the priced trip.
// Category keys are slugs of every leg endpoint name, deduplicated.
func buildCouponRequest(trip pricing.TripQuote, places []LegPlace, code string, who domain.RequestContext) coupon.Request {
	req := coupon.Request{
		Category:     coupon.CategoryTransport,
		Code:         code,
		BaseTotal:    trip.Total,
		Currency:     trip.Currency,
		CategoryKeys: []string{},
		Email:        strings.TrimSpace(who.Email),
		Fingerprint:  trip.Fingerprint,
	}
	if len(trip.Legs) > 0 {
		first := trip.Legs[0]
		req.ResourceID = first.RouteID
		req.ServiceDateTime = utils.JoinDateTime(first.Scenario.TravelDate, first.Scenario.TravelTime)
	}
	seen := map[string]bool{}
	for _, p := range places {
		for _, name := range []string{p.Origin.Name, p.Destination.Name} {
			key := utils.Slug(name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			req.CategoryKeys = append(req.CategoryKeys, key)
		}
	}
	return req
}

func validateQuoteRequest(req QuoteRequest) error {
	if err := validateLeg("outbound", req.Outbound); err != nil {
		return err
	}
	if req.Return != nil {
		if err := validateLeg("return", *req.Return); err != nil {
			return err
		}
	}
	return nil
}

func validateLeg(prefix string, leg LegRequest) error {
	if leg.OriginID <= 0 {
		return domain.ValidationError{Field: prefix + ".originId", Msg: "wajib diisi"}
	}
	if leg.DestinationID <= 0 {
		return domain.ValidationError{Field: prefix + ".destinationId", Msg: "wajib diisi"}
	}
	if leg.OriginID == leg.DestinationID {
		return domain.ValidationError{Field: prefix + ".destinationId", Msg: "harus berbeda dari origin"}
	}
	if d := strings.TrimSpace(leg.TravelDate); d != "" {
		if _, err := utils.ParseDate(d); err != nil {
			return domain.ValidationError{Field: prefix + ".travelDate", Msg: "format harus YYYY-MM-DD", Err: err}
		}
	}
	switch leg.TripType {
	case "", models.TripOneWay, models.TripRoundTrip:
	default:
		return domain.ValidationError{Field: prefix + ".tripType", Msg: "harus one_way atau round_trip"}
	}
	return nil
}

func (s QuoteService) countError(kind string) {
	if s.Metrics != nil {
		s.Metrics.QuoteErrors.WithLabelValues(kind).Inc()
	}
}

func (s QuoteService) countCoupon(outcome string) {
	if s.Metrics != nil {
		s.Metrics.CouponOutcomes.WithLabelValues(outcome).Inc()
	}
}
