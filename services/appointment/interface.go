package appointment

import (
	"context"
	"time"

	"campusbook/database/store"
	"campusbook/models"
	"campusbook/services/events"
	"campusbook/services/ledger"

	"go.uber.org/zap"
)

// Service owns the appointment lifecycle: document state and slot-ledger
// occupancy always change in the same transaction.
type Service interface {
	Create(ctx context.Context, uid, date, window, paymentMethod string) (*models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListForUser(ctx context.Context, uid string) ([]models.Appointment, error)

	// MarkPaid is the cashier's idempotent PENDING→PAID transition.
	MarkPaid(ctx context.Context, id string) (*models.Appointment, error)
	Approve(ctx context.Context, id string) (*models.Appointment, error)
	Reject(ctx context.Context, id string) (*models.Appointment, error)

	// Cancel and Delete are owner-checked; pass uid == "" for privileged callers.
	Cancel(ctx context.Context, uid, id string) (*models.Appointment, error)
	Delete(ctx context.Context, uid, id string) error
	Reschedule(ctx context.Context, uid, id, newDate, newWindow string) (*models.Appointment, error)
}

// ReminderScheduler enqueues a reminder for a booked appointment.
// Implemented on asynq in services/tasks.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, appt models.Appointment) error
}

// DefaultService is the production implementation.
type DefaultService struct {
	Store  store.Store
	Ledger *ledger.Ledger
	Bus    events.Bus
	Logger *zap.Logger

	// MaxActive caps simultaneously active appointments per account. The cap
	// is enforced by a read-only pre-check outside the booking transaction,
	// so it can be exceeded by one under heavy concurrency. Deliberate.
	MaxActive int

	// Reminders is optional; scheduling failures are logged, not surfaced.
	Reminders ReminderScheduler

	now func() time.Time
}

// NewService wires a DefaultService.
func NewService(st store.Store, l *ledger.Ledger, bus events.Bus, logger *zap.Logger, maxActive int) *DefaultService {
	return &DefaultService{
		Store:     st,
		Ledger:    l,
		Bus:       bus,
		Logger:    logger,
		MaxActive: maxActive,
		now:       time.Now,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *DefaultService) WithClock(now func() time.Time) *DefaultService {
	s.now = now
	return s
}
