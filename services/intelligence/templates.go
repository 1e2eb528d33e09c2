package intelligence

import (
	"fmt"

	"vetflow/models"
)

const (
	unavailableReply = "Our assistant is not available right now. Please call the clinic."
	failedReply      = "Sorry, I can't answer right now. Please contact the clinic directly."
)

// FallbackReminder renders a reminder without the generator.
func FallbackReminder(kind models.ReminderKind, contactName, subjectName, detail string) string {
	switch kind {
	case models.KindAppointment:
		return fmt.Sprintf("Dear %s, %s's appointment is coming up. %s", contactName, subjectName, detail)
	case models.KindVaccination:
		return fmt.Sprintf("Dear %s, it's time for %s's vaccination. %s", contactName, subjectName, detail)
	case models.KindFood:
		return fmt.Sprintf("Dear %s, %s's food is about to run out. %s", contactName, subjectName, detail)
	case models.KindMedication:
		return fmt.Sprintf("Dear %s, %s's medication is about to run out. %s", contactName, subjectName, detail)
	case models.KindCheckup:
		return fmt.Sprintf("Dear %s, it's time for %s's check-up. %s", contactName, subjectName, detail)
	default:
		return fmt.Sprintf("Dear %s, a reminder for %s: %s", contactName, subjectName, detail)
	}
}

var reasonText = map[string]string{
	models.ReasonOutsideHours: "that time is outside our working hours (09:00-18:00)",
	models.ReasonClosedDay:    "we are closed at weekends",
	models.ReasonConflict:     "that time is already booked",
}

// AppointmentConfirmed answers a successful chat booking.
func AppointmentConfirmed(slot models.Slot, service string) string {
	return fmt.Sprintf("✅ Your %s appointment is booked for %s at %s. We'll send you a reminder. See you soon! 🐾",
		service, slot.Date, slot.Time)
}

// AppointmentUnavailable explains a rejected request and offers the alternative when there is one.
func AppointmentUnavailable(reason string, alternative *models.Slot) string {
	why, ok := reasonText[reason]
	if !ok {
		why = "that time is not available"
	}
	if alternative != nil {
		return fmt.Sprintf("Sorry, %s. Our nearest free time is %s at %s. Would you like to book it? (Yes/No)",
			why, alternative.Date, alternative.Time)
	}
	return fmt.Sprintf("Sorry, %s. Could you suggest another date and time?", why)
}

// AppointmentInvalid asks the customer to restate an unreadable date or time.
func AppointmentInvalid() string {
	return "Sorry, I couldn't read that date and time. Please send it as YYYY-MM-DD HH:MM."
}
