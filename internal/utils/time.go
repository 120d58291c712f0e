package utils

import (
	"strings"
	"time"
)

const layoutDate = "2006-01-02"

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// JoinDateTime returns "YYYY-MM-DD HH:MM", or just the date when the time is empty.
func JoinDateTime(date, clock string) string {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if clock == "" {
		return date
	}
	return date + " " + clock
}
