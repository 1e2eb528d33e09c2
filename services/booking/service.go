package booking

import (
	"time"

	bookingRepo "vetflow/database/repository/booking"
	directoryRepo "vetflow/database/repository/directory"
	messageRepo "vetflow/database/repository/message"
	recordsRepo "vetflow/database/repository/records"
	reminderRepo "vetflow/database/repository/reminder"
	"vetflow/services/notification"
	"vetflow/services/scheduling"
	"vetflow/services/tasks"

	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Records   recordsRepo.HealthRecordRepository
	Reminders reminderRepo.ReminderRepository
	Directory directoryRepo.DirectoryRepository
	Messages  messageRepo.MessageRepository
	Searcher  *scheduling.Searcher
	Tasks     tasks.Enqueuer
	Deliverer notification.Deliverer
	Logger    *zap.Logger
	Now       func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
