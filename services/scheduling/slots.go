package scheduling

import (
	"time"

	"vetflow/models"
)

const (
	OpeningHour = 9
	ClosingHour = 18

	// GridStep is the spacing of candidate appointment starts.
	GridStep = 30 * time.Minute
	// MaxProbes bounds FindNext: seven business days of 18 half-hour slots.
	MaxProbes = 7 * 18

	DefaultConflictWindow = 30 * time.Minute
)

// Rules are the per-tenant inputs to slot evaluation.
type Rules struct {
	Location       *time.Location
	ConflictWindow time.Duration
}

func (r Rules) loc() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Rules) window() time.Duration {
	if r.ConflictWindow <= 0 {
		return DefaultConflictWindow
	}
	return r.ConflictWindow
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// conflicts reports whether an eligible booking starts in [t-w, t+w).
func conflicts(t time.Time, bookings []models.Booking, w time.Duration) bool {
	lo, hi := t.Add(-w), t.Add(w)
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		if !b.ScheduledAt.Before(lo) && b.ScheduledAt.Before(hi) {
			return true
		}
	}
	return false
}

// Validate checks requested against working hours, the working week and the
// given bookings, in that order.
func Validate(requested time.Time, bookings []models.Booking, rules Rules) models.SlotValidation {
	local := requested.In(rules.loc())
	if local.Hour() < OpeningHour || local.Hour() >= ClosingHour {
		return models.SlotValidation{Valid: false, Reason: models.ReasonOutsideHours}
	}
	if isWeekend(local.Weekday()) {
		return models.SlotValidation{Valid: false, Reason: models.ReasonClosedDay}
	}
	if conflicts(requested, bookings, rules.window()) {
		return models.SlotValidation{Valid: false, Reason: models.ReasonConflict}
	}
	return models.SlotValidation{Valid: true}
}

func openingOn(local time.Time, addDays int) time.Time {
	return time.Date(local.Year(), local.Month(), local.Day()+addDays, OpeningHour, 0, 0, 0, local.Location())
}

// FindNext returns the first free slot at or after from, probing from itself
// and then every GridStep. Off-hours and closed days snap to the next opening
// at 09:00 without counting; at most MaxProbes open slots are examined. Candidates only move forward, so the result is deterministic.
func FindNext(from time.Time, bookings []models.Booking, rules Rules) (models.Slot, bool) {
	loc := rules.loc()
	w := rules.window()
	candidate := from

	for probes := 0; probes < MaxProbes; {
		local := candidate.In(loc)
		switch {
		case local.Weekday() == time.Saturday:
			candidate = openingOn(local, 2)
			continue
		case local.Weekday() == time.Sunday:
			candidate = openingOn(local, 1)
			continue
		case local.Hour() < OpeningHour:
			candidate = openingOn(local, 0)
			continue
		case local.Hour() >= ClosingHour:
			candidate = openingOn(local, 1)
			continue
		}

		probes++
		if !conflicts(candidate, bookings, w) {
			return models.NewSlot(candidate, loc), true
		}
		candidate = candidate.Add(GridStep)
	}
	return models.Slot{}, false
}
