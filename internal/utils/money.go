package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatAmount renders "1,234.50 EUR" for documents.
func FormatAmount(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	out := fmt.Sprintf("%s%s.%02d", sign, formatThousand(cents/100), cents%100)
	if c := strings.TrimSpace(currency); c != "" {
		out += " " + strings.ToUpper(c)
	}
	return out
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}
