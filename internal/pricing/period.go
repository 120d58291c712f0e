package pricing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Period is the base fare band a ride falls into.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodNight Period = "night"
)

// ErrUnparseableTime is wrapped by SelectPeriod when any clock value cannot be read.
var ErrUnparseableTime = errors.New("unparseable time of day")

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseClock reads "HH:MM" (also "H:MM" and "HH:MM:SS") into minutes of day.
// Anything else, including a 12-hour "11:30 PM", is unparseable.
func ParseClock(s string) (int, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) < 3 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	ss := 0
	if m[3] != "" {
		ss, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mm > 59 || ss > 59 {
		return 0, fmt.Errorf("%w: %q", ErrUnparseableTime, s)
	}
	return h*60 + mm, nil
}

// SelectPeriod decides whether travelTime falls in the night window
// [nightStart, nightEnd). A window with equal bounds is empty. When any value
// cannot be parsed the day period is returned together with the error.
func SelectPeriod(travelTime, nightStart, nightEnd string) (Period, error) {
	start, err := ParseClock(nightStart)
	if err != nil {
		return PeriodDay, err
	}
	end, err := ParseClock(nightEnd)
	if err != nil {
		return PeriodDay, err
	}
	t, err := ParseClock(travelTime)
	if err != nil {
		return PeriodDay, err
	}

	switch {
	case start == end:
		return PeriodDay, nil
	case start < end:
		if t >= start && t < end {
			return PeriodNight, nil
		}
	default:
		// window wraps midnight
		if t >= start || t < end {
			return PeriodNight, nil
		}
	}
	return PeriodDay, nil
}
