package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// InvalidInputError is returned for a date or time that cannot be parsed.
// It is distinct from a well-formed request for an unavailable slot.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// ParseRequested combines a YYYY-MM-DD date and an HH:MM clock in loc.
func ParseRequested(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)

	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, &InvalidInputError{Field: "date", Value: date}
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, &InvalidInputError{Field: "time", Value: clock}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}
