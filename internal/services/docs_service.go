package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"tripquote/internal/pricing"
	"tripquote/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService menghasilkan PDF ringkasan quote untuk dicetak / dikirim ke rider.
type DocsService struct {
	RequestID string
	Now       func() time.Time
}

func (s DocsService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GenerateQuoteSheet renders legs, category breakdown, deposit, coupon and
// warnings. places is indexed like trip.Legs; missing names print as "-".
func (s DocsService) GenerateQuoteSheet(trip pricing.TripQuote, places []LegPlace) ([]byte, string, error) {
	if len(trip.Legs) == 0 {
		return nil, "", fmt.Errorf("quote has no legs")
	}
	utils.LogEvent(s.RequestID, "docs", "generate_quote_sheet", fmt.Sprintf("legs=%d fingerprint=%s", len(trip.Legs), trip.Fingerprint))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Quote", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRIP QUOTE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Ref     : "+quoteRef(trip))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Issued  : "+s.now().Format("2006-01-02 15:04"))
	pdf.Ln(6)
	kind := "One way"
	if trip.HasReturn() {
		kind = "Outbound + return"
	}
	pdf.Cell(0, 6, "Trip    : "+kind)
	pdf.Ln(10)

	cur := trip.Currency
	labels := []string{pricing.LabelOutbound, pricing.LabelReturn}
	for i, leg := range trip.Legs {
		origin, destination := "-", "-"
		if i < len(places) {
			origin = safe(places[i].Origin.Name, "-")
			destination = safe(places[i].Destination.Name, "-")
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("%s: %s -> %s", labels[i], origin, destination))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 11)
		lines := []string{
			fmt.Sprintf("Date / time     : %s (%s rate)", safe(utils.JoinDateTime(leg.Scenario.TravelDate, leg.Scenario.TravelTime), "-"), leg.Period),
			fmt.Sprintf("Passengers      : %d   Bags: %d   Large bags: %d", leg.Scenario.Passengers, leg.Scenario.Bags, leg.Scenario.LargeBags),
			fmt.Sprintf("Base fare       : %s", utils.FormatAmount(leg.BaseFare, leg.Currency)),
		}
		lines = append(lines, costLine("Extra passengers", leg.ExtraPassengersCost, leg.Currency)...)
		lines = append(lines, costLine("Extra bags", leg.ExtraBagsCost, leg.Currency)...)
		lines = append(lines, costLine("Oversize bags", leg.OversizeCost, leg.Currency)...)
		lines = append(lines, costLine("Child seats", leg.ChildSeatCost, leg.Currency)...)
		lines = append(lines, costLine("Booster seats", leg.BoosterSeatCost, leg.Currency)...)
		lines = append(lines, costLine("Waiting", leg.WaitingCost, leg.Currency)...)
		if leg.RoundTripMultiplier > 1 {
			lines = append(lines, fmt.Sprintf("Round trip      : x%.2f", leg.RoundTripMultiplier))
		}
		lines = append(lines, fmt.Sprintf("Leg total       : %s", utils.FormatAmount(leg.Total, leg.Currency)))
		for _, l := range lines {
			pdf.Cell(0, 6, l)
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 12)
	if trip.Coupon != nil {
		pdf.Cell(0, 7, "Subtotal: "+utils.FormatAmount(trip.Coupon.TotalBeforeCoupon, cur))
		pdf.Ln(7)
		pdf.Cell(0, 7, fmt.Sprintf("Coupon %s: -%s", trip.Coupon.Code, utils.FormatAmount(trip.Coupon.DiscountAmount, cur)))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, "Total: "+utils.FormatAmount(trip.Total, cur))
	pdf.Ln(8)
	if trip.DepositEnabled {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 7, "Deposit due now: "+utils.FormatAmount(trip.DepositAmount, cur))
		pdf.Ln(7)
	}

	notes := append([]string{}, trip.Warnings...)
	if trip.CouponMessage != "" {
		notes = append(notes, trip.CouponMessage)
	}
	if !trip.IsBookable {
		notes = append(notes, "This quote cannot be booked as is.")
	}
	if len(notes) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		for _, n := range notes {
			pdf.MultiCell(0, 5, "- "+n, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("QUOTE_%s.pdf", safeFilenamePart(quoteRef(trip)))
	return buf.Bytes(), filename, nil
}

func costLine(label string, amount float64, currency string) []string {
	if amount <= 0 {
		return nil
	}
	return []string{fmt.Sprintf("%-16s: %s", label, utils.FormatAmount(amount, currency))}
}

func quoteRef(trip pricing.TripQuote) string {
	fp := trip.Fingerprint
	if len(fp) > 10 {
		fp = fp[:10]
	}
	return "Q-" + strings.ToUpper(safe(fp, "NA"))
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
