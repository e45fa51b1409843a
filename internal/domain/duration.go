package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tracksync/internal/errors"
)

var (
	isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
	clockPattern       = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)

	errEmptyInterval = errors.NewValidationError("time interval has neither a duration nor an end time", nil)
)

// ParseHours converts a duration string into decimal hours with minute
// granularity. Two formats are accepted: ISO-8601 "PTnHnMnS" (the S
// component is parsed but does not contribute) and clock-style "HH:MM".
// Fractional minutes come out as minutes/60; whole hours truncate
// toward zero when converted to integers by callers.
func ParseHours(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.NewValidationError("duration is empty", nil)
	}

	if m := isoDurationPattern.FindStringSubmatch(value); m != nil {
		if m[1] == "" && m[2] == "" && m[3] == "" {
			return 0, errors.NewValidationError("malformed duration", nil).WithContext("duration", value)
		}
		hours := atoiOrZero(m[1])
		minutes := atoiOrZero(m[2])
		return float64(hours) + float64(minutes)/60, nil
	}

	if m := clockPattern.FindStringSubmatch(value); m != nil {
		hours := atoiOrZero(m[1])
		minutes := atoiOrZero(m[2])
		return float64(hours) + float64(minutes)/60, nil
	}

	return 0, errors.NewValidationError("malformed duration", nil).WithContext("duration", value)
}

// HoursBetween converts an explicit start/end interval into decimal
// hours at minute granularity. Intervals that end before they start
// yield zero.
func HoursBetween(start, end time.Time) float64 {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	minutes := int64(elapsed / time.Minute)
	return float64(minutes) / 60
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
