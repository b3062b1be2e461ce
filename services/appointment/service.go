package appointment

import (
	"context"

	"campusbook/database/store"
	"campusbook/models"
	"campusbook/services/events"

	"go.uber.org/zap"
)

// Create validates the request, pre-checks the per-account cap, then books
// the slot and writes the appointment document in one transaction. A live
// appointment at the same deterministic key fails with ErrAlreadyBooked; a
// terminal one is overwritten so the key can be rebooked.
func (s *DefaultService) Create(ctx context.Context, uid, date, window, paymentMethod string) (*models.Appointment, error) {
	if err := s.validateSlot(date, window); err != nil {
		return nil, err
	}

	// Read-only cap pre-check. Runs outside the booking transaction, so two
	// racing creates can exceed the cap by one; tightening this would need a
	// per-user counter document. Accepted.
	if s.MaxActive > 0 {
		var existing []models.Appointment
		if err := s.Store.Find(ctx, store.CollAppointments, map[string]any{"userId": uid}, &existing); err != nil {
			return nil, err
		}
		active := 0
		for _, a := range existing {
			if a.Active() {
				active++
			}
		}
		if active >= s.MaxActive {
			return nil, ErrTooManyActive
		}
	}

	id := models.AppointmentID(uid, date, window)
	var created models.Appointment
	err := s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var prior models.Appointment
		found, err := tx.Get(store.CollAppointments, id, &prior)
		if err != nil {
			return err
		}
		if found && prior.Active() {
			return ErrAlreadyBooked
		}

		key := models.SlotKey{Date: date, Window: window}
		if _, err := s.Ledger.ReserveUnit(tx, key); err != nil {
			return err
		}

		created = models.Appointment{
			ID:            id,
			UserID:        uid,
			Date:          date,
			Window:        window,
			Status:        models.StatusPending,
			PaymentMethod: paymentMethod,
			LedgerSlot:    key.String(),
			CreatedAt:     s.now(),
		}
		return tx.Set(store.CollAppointments, id, &created)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewAppointmentEvent(events.AppointmentCreated, id, nil, &created))
	s.scheduleReminder(ctx, created)
	return &created, nil
}

func (s *DefaultService) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	found, err := s.Store.Get(ctx, store.CollAppointments, id, &appt)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &appt, nil
}

func (s *DefaultService) ListForUser(ctx context.Context, uid string) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := s.Store.Find(ctx, store.CollAppointments, map[string]any{"userId": uid}, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// MarkPaid fires the paid side effect exactly once: the status observation
// and the verifiedByFunction flag are read and set in the same transaction,
// so a duplicate delivery of the transition is a no-op.
func (s *DefaultService) MarkPaid(ctx context.Context, id string) (*models.Appointment, error) {
	var before, after models.Appointment
	changed := false
	err := s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		changed = false
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, id, &appt)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		before = appt

		if appt.Status == models.StatusPaid && appt.VerifiedByFunction {
			after = appt
			return nil
		}
		if appt.Status != models.StatusPaid && !models.CanTransition(appt.Status, models.StatusPaid) {
			return ErrInvalidTransition
		}

		now := s.now()
		appt.Status = models.StatusPaid
		appt.VerifiedByFunction = true
		appt.VerifiedAt = &now
		if err := tx.Set(store.CollAppointments, id, &appt); err != nil {
			return err
		}
		after = appt
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.publish(ctx, events.NewAppointmentEvent(events.AppointmentUpdated, id, &before, &after))
	}
	return &after, nil
}

func (s *DefaultService) Approve(ctx context.Context, id string) (*models.Appointment, error) {
	return s.transition(ctx, "", id, models.StatusApproved)
}

func (s *DefaultService) Reject(ctx context.Context, id string) (*models.Appointment, error) {
	return s.transition(ctx, "", id, models.StatusRejected)
}

func (s *DefaultService) Cancel(ctx context.Context, uid, id string) (*models.Appointment, error) {
	return s.transition(ctx, uid, id, models.StatusCancelled)
}

// transition applies one status change. Entering a terminal state releases
// the appointment's ledger unit and clears the anchor in the same
// transaction, which is what permits rebooking of the key afterwards.
func (s *DefaultService) transition(ctx context.Context, uid, id string, to models.AppointmentStatus) (*models.Appointment, error) {
	var before, after models.Appointment
	err := s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, id, &appt)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if uid != "" && appt.UserID != uid {
			return ErrNotOwner
		}
		if !models.CanTransition(appt.Status, to) {
			return ErrInvalidTransition
		}
		before = appt

		appt.Status = to
		if to.Terminal() && appt.LedgerSlot != "" {
			oldKey := appt.SlotKey()
			if appt.LedgerSlot != oldKey.String() {
				// Anchor is authoritative; the document fields may lag a
				// mirrored move.
				if k, ok := parseAnchor(appt.LedgerSlot); ok {
					oldKey = k
				}
			}
			if err := s.Ledger.ReleaseUnit(tx, oldKey); err != nil {
				return err
			}
			appt.LedgerSlot = ""
		}
		if err := tx.Set(store.CollAppointments, id, &appt); err != nil {
			return err
		}
		after = appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.NewAppointmentEvent(events.AppointmentUpdated, id, &before, &after))
	return &after, nil
}

// Delete removes the appointment document and releases its slot unit in the
// same transaction. A missing slot document is tolerated and logged by the
// ledger's no-op release.
func (s *DefaultService) Delete(ctx context.Context, uid, id string) error {
	var before models.Appointment
	err := s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, id, &appt)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if uid != "" && appt.UserID != uid {
			return ErrNotOwner
		}

		if appt.LedgerSlot != "" {
			key := appt.SlotKey()
			if k, ok := parseAnchor(appt.LedgerSlot); ok {
				key = k
			}
			if err := s.Ledger.ReleaseUnit(tx, key); err != nil {
				return err
			}
			appt.LedgerSlot = ""
		}
		before = appt
		return tx.Delete(store.CollAppointments, id)
	})
	if err != nil {
		return err
	}

	// The published snapshot carries a cleared anchor so the deletion mirror
	// knows this unit is already released.
	s.publish(ctx, events.NewAppointmentEvent(events.AppointmentDeleted, id, &before, nil))
	return nil
}

// Reschedule moves the appointment to a new slot: ledger move, document
// update, and lastRescheduledAt stamp commit together or not at all. On
// ErrSlotFull or ErrSourceSlotMissing the appointment keeps its pre-update
// state.
func (s *DefaultService) Reschedule(ctx context.Context, uid, id, newDate, newWindow string) (*models.Appointment, error) {
	if err := s.validateSlot(newDate, newWindow); err != nil {
		return nil, err
	}

	var before, after models.Appointment
	moved := false
	err := s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		moved = false
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, id, &appt)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		if uid != "" && appt.UserID != uid {
			return ErrNotOwner
		}
		if !appt.Active() {
			return ErrInvalidTransition
		}
		before = appt

		newKey := models.SlotKey{Date: newDate, Window: newWindow}
		if appt.SlotKey() == newKey {
			after = appt
			return nil
		}

		oldKey := appt.SlotKey()
		if k, ok := parseAnchor(appt.LedgerSlot); ok {
			oldKey = k
		}
		if _, err := s.Ledger.MoveUnit(tx, oldKey, newKey); err != nil {
			return err
		}

		now := s.now()
		appt.Date = newDate
		appt.Window = newWindow
		appt.LedgerSlot = newKey.String()
		appt.LastRescheduledAt = &now
		if err := tx.Set(store.CollAppointments, id, &appt); err != nil {
			return err
		}
		after = appt
		moved = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if moved {
		s.publish(ctx, events.NewAppointmentEvent(events.AppointmentUpdated, id, &before, &after))
	}
	return &after, nil
}

func (s *DefaultService) publish(ctx context.Context, evt events.AppointmentEvent) {
	if s.Bus == nil {
		return
	}
	if err := s.Bus.Publish(ctx, evt); err != nil {
		s.Logger.Warn("failed to publish appointment event",
			zap.String("event", string(evt.Type)),
			zap.String("appointmentId", evt.AppointmentID),
			zap.Error(err))
	}
}

func (s *DefaultService) scheduleReminder(ctx context.Context, appt models.Appointment) {
	if s.Reminders == nil {
		return
	}
	if err := s.Reminders.ScheduleReminder(ctx, appt); err != nil {
		s.Logger.Warn("failed to schedule reminder",
			zap.String("appointmentId", appt.ID),
			zap.Error(err))
	}
}

// parseAnchor splits a ledgerSlot composite key.
func parseAnchor(s string) (models.SlotKey, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			return models.SlotKey{Date: s[:i], Window: s[i+1:]}, true
		}
	}
	return models.SlotKey{}, false
}
