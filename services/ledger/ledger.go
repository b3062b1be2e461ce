// Package ledger maintains the per-slot bookedCount vs. capacity ledger.
//
// Every operation takes the caller's transactional handle so that slot
// mutations commit in lock-step with the owning appointment mutation:
// bookedCount never goes negative, and never exceeds capacity, no matter how
// the operations interleave.
package ledger

import (
	"time"

	"campusbook/database/store"
	"campusbook/models"
)

// Ledger performs capacity-bounded slot accounting.
type Ledger struct {
	// Capacity is the default daily capacity for lazily created slots.
	Capacity int

	now func() time.Time
}

// New returns a Ledger with the given default capacity.
func New(capacity int) *Ledger {
	return &Ledger{Capacity: capacity, now: time.Now}
}

// WithClock overrides the ledger's clock. Tests only.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// ReserveUnit increments the slot's bookedCount inside the caller's
// transaction. An absent slot is created lazily with bookedCount=1. Fails
// with ErrSlotFull when the slot has no remaining capacity; in that case
// nothing is written and the caller must abort.
func (l *Ledger) ReserveUnit(tx store.Txn, key models.SlotKey) (*models.Slot, error) {
	var slot models.Slot
	found, err := tx.Get(store.CollSlots, key.String(), &slot)
	if err != nil {
		return nil, err
	}

	now := l.now()
	if !found {
		slot = models.Slot{
			Date:      key.Date,
			Window:    key.Window,
			Capacity:  l.Capacity,
			CreatedAt: now,
		}
	}

	if slot.BookedCount >= slot.Capacity {
		return nil, ErrSlotFull
	}

	slot.BookedCount++
	slot.UpdatedAt = now
	if err := tx.Set(store.CollSlots, key.String(), &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ReleaseUnit decrements the slot's bookedCount with a floor of zero. A
// missing slot is a no-op so double-releases stay idempotent.
func (l *Ledger) ReleaseUnit(tx store.Txn, key models.SlotKey) error {
	var slot models.Slot
	found, err := tx.Get(store.CollSlots, key.String(), &slot)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if slot.BookedCount > 0 {
		slot.BookedCount--
	}
	slot.UpdatedAt = l.now()
	return tx.Set(store.CollSlots, key.String(), &slot)
}

// MoveUnit atomically transfers one unit from oldKey to newKey within the
// caller's transaction. Moving a unit onto its own slot is a no-op. Fails
// with ErrSourceSlotMissing when the old slot does not exist and ErrSlotFull
// when the destination has no capacity; either failure leaves both slots
// untouched once the caller aborts.
func (l *Ledger) MoveUnit(tx store.Txn, oldKey, newKey models.SlotKey) (*models.Slot, error) {
	var oldSlot models.Slot
	found, err := tx.Get(store.CollSlots, oldKey.String(), &oldSlot)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSourceSlotMissing
	}
	if oldKey == newKey {
		return &oldSlot, nil
	}

	newSlot, err := l.ReserveUnit(tx, newKey)
	if err != nil {
		return nil, err
	}

	if oldSlot.BookedCount > 0 {
		oldSlot.BookedCount--
	}
	oldSlot.UpdatedAt = l.now()
	if err := tx.Set(store.CollSlots, oldKey.String(), &oldSlot); err != nil {
		return nil, err
	}
	return newSlot, nil
}
