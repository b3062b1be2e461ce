package events

import (
	"context"
	"errors"
	"time"

	"campusbook/database/store"
	"campusbook/models"
	"campusbook/services/ledger"

	"go.uber.org/zap"
)

// PaidNotifier is told once per appointment when it transitions to PAID.
type PaidNotifier interface {
	NotifyPaid(ctx context.Context, appt models.Appointment)
}

// SlotMirror re-applies ledger bookkeeping from change notifications. The
// lifecycle manager already mutates the ledger in the same transaction as the
// appointment document, so each handler is a defensive no-op in the steady
// state: the appointment's ledgerSlot anchor says which slot already carries
// its unit, and the mirror only acts when document and ledger disagree.
// Running a handler zero or more times converges to the same state.
//
// Handlers log failures and never re-raise; notifications are fire-and-forget
// from the store's perspective.
type SlotMirror struct {
	Store    store.Store
	Ledger   *ledger.Ledger
	Logger   *zap.Logger
	Notifier PaidNotifier // optional

	now func() time.Time
}

// NewSlotMirror wires a mirror over the given store and ledger.
func NewSlotMirror(st store.Store, l *ledger.Ledger, logger *zap.Logger, notifier PaidNotifier) *SlotMirror {
	return &SlotMirror{Store: st, Ledger: l, Logger: logger, Notifier: notifier, now: time.Now}
}

// Handle is the Bus handler entry point.
func (m *SlotMirror) Handle(ctx context.Context, evt AppointmentEvent) {
	var err error
	switch evt.Type {
	case AppointmentCreated:
		err = m.onCreated(ctx, evt)
	case AppointmentUpdated:
		err = m.onUpdated(ctx, evt)
	case AppointmentDeleted:
		err = m.onDeleted(ctx, evt)
	}
	if err != nil {
		m.Logger.Error("slot mirror failed",
			zap.String("event", string(evt.Type)),
			zap.String("appointmentId", evt.AppointmentID),
			zap.Error(err))
	}
}

// onCreated reserves a unit for an appointment document that holds none.
func (m *SlotMirror) onCreated(ctx context.Context, evt AppointmentEvent) error {
	return m.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, evt.AppointmentID, &appt)
		if err != nil {
			return err
		}
		if !found || !appt.Active() || appt.LedgerSlot != "" {
			return nil // already accounted for, or gone
		}
		if _, err := m.Ledger.ReserveUnit(tx, appt.SlotKey()); err != nil {
			return err
		}
		appt.LedgerSlot = appt.SlotKey().String()
		return tx.Set(store.CollAppointments, appt.ID, &appt)
	})
}

// onUpdated moves the unit when the document's slot and the ledger anchor
// disagree, and mirrors the PENDING→PAID idempotency flag.
func (m *SlotMirror) onUpdated(ctx context.Context, evt AppointmentEvent) error {
	if err := m.mirrorMove(ctx, evt); err != nil {
		return err
	}
	return m.mirrorPaid(ctx, evt)
}

func (m *SlotMirror) mirrorMove(ctx context.Context, evt AppointmentEvent) error {
	return m.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, evt.AppointmentID, &appt)
		if err != nil {
			return err
		}
		if !found || !appt.Active() {
			return nil
		}
		want := appt.SlotKey()
		if appt.LedgerSlot == want.String() {
			return nil
		}

		if appt.LedgerSlot == "" {
			if _, err := m.Ledger.ReserveUnit(tx, want); err != nil {
				return err
			}
		} else {
			oldKey, ok := parseSlotKey(appt.LedgerSlot)
			if !ok {
				return errors.New("malformed ledgerSlot anchor: " + appt.LedgerSlot)
			}
			if _, err := m.Ledger.MoveUnit(tx, oldKey, want); err != nil {
				return err
			}
			now := m.now()
			appt.LastRescheduledAt = &now
		}
		appt.LedgerSlot = want.String()
		return tx.Set(store.CollAppointments, appt.ID, &appt)
	})
}

func (m *SlotMirror) mirrorPaid(ctx context.Context, evt AppointmentEvent) error {
	if evt.Before == nil || evt.After == nil {
		return nil
	}
	if evt.Before.Status == models.StatusPaid || evt.After.Status != models.StatusPaid {
		return nil
	}

	var notified *models.Appointment
	err := m.Store.RunTransaction(ctx, func(tx store.Txn) error {
		notified = nil
		var appt models.Appointment
		found, err := tx.Get(store.CollAppointments, evt.AppointmentID, &appt)
		if err != nil {
			return err
		}
		if !found || appt.Status != models.StatusPaid || appt.VerifiedByFunction {
			return nil // a replayed delivery of the same transition
		}
		now := m.now()
		appt.VerifiedByFunction = true
		appt.VerifiedAt = &now
		if err := tx.Set(store.CollAppointments, appt.ID, &appt); err != nil {
			return err
		}
		notified = &appt
		return nil
	})
	if err != nil {
		return err
	}
	if notified != nil {
		m.Logger.Info("appointment marked PAID",
			zap.String("appointmentId", notified.ID),
			zap.String("userId", notified.UserID))
		if m.Notifier != nil {
			m.Notifier.NotifyPaid(ctx, *notified)
		}
	}
	return nil
}

// onDeleted releases the unit the deleted snapshot still held. A snapshot
// whose anchor was already cleared by the transactional delete path is a
// no-op; a genuinely unaccounted snapshot decrements with the zero floor.
func (m *SlotMirror) onDeleted(ctx context.Context, evt AppointmentEvent) error {
	if evt.Before == nil || evt.Before.LedgerSlot == "" {
		return nil
	}
	key, ok := parseSlotKey(evt.Before.LedgerSlot)
	if !ok {
		return errors.New("malformed ledgerSlot anchor: " + evt.Before.LedgerSlot)
	}
	return m.Store.RunTransaction(ctx, func(tx store.Txn) error {
		return m.Ledger.ReleaseUnit(tx, key)
	})
}

// parseSlotKey splits a "YYYY-MM-DD_HH:MM-HH:MM" composite identifier.
func parseSlotKey(s string) (models.SlotKey, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			return models.SlotKey{Date: s[:i], Window: s[i+1:]}, true
		}
	}
	return models.SlotKey{}, false
}
