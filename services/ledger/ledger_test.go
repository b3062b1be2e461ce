package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campusbook/database/store"
	"campusbook/models"
)

func slotCount(t *testing.T, st store.Store, key models.SlotKey) int {
	t.Helper()
	var slot models.Slot
	found, err := st.Get(context.Background(), store.CollSlots, key.String(), &slot)
	if err != nil {
		t.Fatalf("reading slot %s: %v", key, err)
	}
	if !found {
		return 0
	}
	return slot.BookedCount
}

func TestReserveUnitCreatesSlotLazily(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	key := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}

	err := st.RunTransaction(context.Background(), func(tx store.Txn) error {
		slot, err := l.ReserveUnit(tx, key)
		if err != nil {
			return err
		}
		if slot.BookedCount != 1 || slot.Capacity != 400 {
			t.Fatalf("unexpected slot after first reserve: %+v", slot)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if got := slotCount(t, st, key); got != 1 {
		t.Fatalf("bookedCount = %d, want 1", got)
	}
}

func TestReserveUnitFullSlot(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(2)
	key := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := st.RunTransaction(ctx, func(tx store.Txn) error {
			_, err := l.ReserveUnit(tx, key)
			return err
		}); err != nil {
			t.Fatalf("reserve %d failed: %v", i, err)
		}
	}

	err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.ReserveUnit(tx, key)
		return err
	})
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if got := slotCount(t, st, key); got != 2 {
		t.Fatalf("failed reserve mutated count: got %d, want 2", got)
	}
}

// With more contenders than capacity, exactly capacity reservations succeed
// and the rest fail, regardless of interleaving.
func TestReserveUnitConcurrentNeverExceedsCapacity(t *testing.T) {
	const capacity = 30
	const contenders = 50

	st := store.NewMemoryStore()
	l := New(capacity)
	key := models.SlotKey{Date: "2025-06-01", Window: "10:00-11:00"}
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- st.RunTransaction(ctx, func(tx store.Txn) error {
				_, err := l.ReserveUnit(tx, key)
				return err
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded, full := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrSlotFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != capacity || full != contenders-capacity {
		t.Fatalf("succeeded=%d full=%d, want %d/%d", succeeded, full, capacity, contenders-capacity)
	}
	if got := slotCount(t, st, key); got != capacity {
		t.Fatalf("bookedCount = %d, want %d", got, capacity)
	}
}

func TestReleaseUnitAbsentSlotIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	key := models.SlotKey{Date: "2025-06-01", Window: "11:00-12:00"}

	err := st.RunTransaction(context.Background(), func(tx store.Txn) error {
		return l.ReleaseUnit(tx, key)
	})
	if err != nil {
		t.Fatalf("release of absent slot must succeed, got %v", err)
	}
	if got := slotCount(t, st, key); got != 0 {
		t.Fatalf("no-op release created count %d", got)
	}
}

func TestReleaseUnitFloorsAtZero(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	key := models.SlotKey{Date: "2025-06-01", Window: "13:00-14:00"}
	ctx := context.Background()

	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.ReserveUnit(tx, key)
		return err
	}); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := st.RunTransaction(ctx, func(tx store.Txn) error {
			return l.ReleaseUnit(tx, key)
		}); err != nil {
			t.Fatalf("release %d failed: %v", i, err)
		}
	}
	if got := slotCount(t, st, key); got != 0 {
		t.Fatalf("bookedCount = %d, want 0 floor", got)
	}
}

func TestMoveUnitTransfersOneUnit(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	oldKey := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	newKey := models.SlotKey{Date: "2025-06-02", Window: "14:00-15:00"}
	ctx := context.Background()

	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.ReserveUnit(tx, oldKey)
		return err
	}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.MoveUnit(tx, oldKey, newKey)
		return err
	}); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	if got := slotCount(t, st, oldKey); got != 0 {
		t.Fatalf("old slot count = %d, want 0", got)
	}
	if got := slotCount(t, st, newKey); got != 1 {
		t.Fatalf("new slot count = %d, want 1", got)
	}
}

// Moving a unit there and back restores both slots to their pre-move counts.
func TestMoveUnitRoundTrip(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	keyA := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	keyB := models.SlotKey{Date: "2025-06-01", Window: "10:00-11:00"}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := st.RunTransaction(ctx, func(tx store.Txn) error {
			_, err := l.ReserveUnit(tx, keyA)
			return err
		}); err != nil {
			t.Fatalf("seed reserve failed: %v", err)
		}
	}
	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.ReserveUnit(tx, keyB)
		return err
	}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	for _, hop := range [][2]models.SlotKey{{keyA, keyB}, {keyB, keyA}} {
		if err := st.RunTransaction(ctx, func(tx store.Txn) error {
			_, err := l.MoveUnit(tx, hop[0], hop[1])
			return err
		}); err != nil {
			t.Fatalf("move %s -> %s failed: %v", hop[0], hop[1], err)
		}
	}

	if got := slotCount(t, st, keyA); got != 2 {
		t.Fatalf("slot A count = %d, want 2", got)
	}
	if got := slotCount(t, st, keyB); got != 1 {
		t.Fatalf("slot B count = %d, want 1", got)
	}
}

// A move onto the slot's own key leaves the count alone.
func TestMoveUnitSameKeyIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	key := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	ctx := context.Background()

	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.ReserveUnit(tx, key)
		return err
	}); err != nil {
		t.Fatalf("seed reserve failed: %v", err)
	}

	if err := st.RunTransaction(ctx, func(tx store.Txn) error {
		slot, err := l.MoveUnit(tx, key, key)
		if err != nil {
			return err
		}
		if slot.BookedCount != 1 {
			t.Fatalf("returned count = %d, want 1", slot.BookedCount)
		}
		return nil
	}); err != nil {
		t.Fatalf("same-key move failed: %v", err)
	}
	if got := slotCount(t, st, key); got != 1 {
		t.Fatalf("bookedCount = %d, want 1", got)
	}
}

func TestMoveUnitMissingSource(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(400)
	oldKey := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	newKey := models.SlotKey{Date: "2025-06-02", Window: "09:00-10:00"}

	err := st.RunTransaction(context.Background(), func(tx store.Txn) error {
		_, err := l.MoveUnit(tx, oldKey, newKey)
		return err
	})
	if !errors.Is(err, ErrSourceSlotMissing) {
		t.Fatalf("expected ErrSourceSlotMissing, got %v", err)
	}
	if got := slotCount(t, st, newKey); got != 0 {
		t.Fatalf("failed move reserved on destination: count %d", got)
	}
}

func TestMoveUnitFullDestinationLeavesBothUntouched(t *testing.T) {
	st := store.NewMemoryStore()
	l := New(1)
	oldKey := models.SlotKey{Date: "2025-06-01", Window: "09:00-10:00"}
	newKey := models.SlotKey{Date: "2025-06-01", Window: "10:00-11:00"}
	ctx := context.Background()

	for _, k := range []models.SlotKey{oldKey, newKey} {
		if err := st.RunTransaction(ctx, func(tx store.Txn) error {
			_, err := l.ReserveUnit(tx, k)
			return err
		}); err != nil {
			t.Fatalf("seed reserve of %s failed: %v", k, err)
		}
	}

	err := st.RunTransaction(ctx, func(tx store.Txn) error {
		_, err := l.MoveUnit(tx, oldKey, newKey)
		return err
	})
	if !errors.Is(err, ErrSlotFull) {
		t.Fatalf("expected ErrSlotFull, got %v", err)
	}
	if got := slotCount(t, st, oldKey); got != 1 {
		t.Fatalf("old slot count = %d, want 1", got)
	}
	if got := slotCount(t, st, newKey); got != 1 {
		t.Fatalf("new slot count = %d, want 1", got)
	}
}
