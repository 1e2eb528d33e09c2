package models

import "time"

// Reasons a requested slot is rejected.
const (
	ReasonOutsideHours = "outside_hours"
	ReasonClosedDay    = "closed_day"
	ReasonConflict     = "conflict"
)

// Slot is a candidate appointment start.
type Slot struct {
	At   time.Time `json:"datetime"`
	Date string    `json:"date"` // YYYY-MM-DD in tenant time
	Time string    `json:"time"` // HH:MM in tenant time
}

// NewSlot formats at in loc.
func NewSlot(at time.Time, loc *time.Location) Slot {
	local := at.In(loc)
	return Slot{
		At:   at.UTC(),
		Date: local.Format("2006-01-02"),
		Time: local.Format("15:04"),
	}
}

// SlotValidation is the result of checking a requested instant.
type SlotValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}
