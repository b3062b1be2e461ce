package username

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campusbook/database/store"
	"campusbook/models"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{" Alice ", "alice"},
		{"ALICE", "alice"},
		{"bob_01", "bob_01"},
		{"\tcarol.d\n", "carol.d"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReserveValidation(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"too short", "ab", ErrInvalidUsername},
		{"illegal characters", "has space", ErrInvalidUsername},
		{"illegal punctuation", "x!y", ErrInvalidUsername},
		{"denylisted", "admin", ErrReservedWord},
		{"denylisted after normalize", " Admin ", ErrReservedWord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Reserve(ctx, "u1", "u1@school.edu", tc.username)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// " Alice " and "alice" normalize to the same handle, so the second reserve
// collides even across accounts.
func TestReserveNormalizedCollision(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	if err := svc.Reserve(ctx, "u1", "u1@school.edu", " Alice "); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}
	if err := svc.Reserve(ctx, "u2", "u2@school.edu", "alice"); !errors.Is(err, ErrTaken) {
		t.Fatalf("got %v, want ErrTaken", err)
	}
	// Re-reserving one's own handle is also ErrTaken.
	if err := svc.Reserve(ctx, "u1", "u1@school.edu", "alice"); !errors.Is(err, ErrTaken) {
		t.Fatalf("got %v, want ErrTaken", err)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()
	const contenders = 16

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- svc.Reserve(ctx, string(rune('a'+i)), "", "shared-handle")
		}(i)
	}
	wg.Wait()
	close(results)

	won, taken := 0, 0
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || taken != contenders-1 {
		t.Fatalf("won=%d taken=%d, want 1/%d", won, taken, contenders-1)
	}
}

func TestReleaseOwnership(t *testing.T) {
	svc := NewService(store.NewMemoryStore())
	ctx := context.Background()

	if err := svc.Reserve(ctx, "u1", "u1@school.edu", "alice"); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	if err := svc.Release(ctx, "intruder", "alice"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("got %v, want ErrNotOwner", err)
	}
	if err := svc.Release(ctx, "u1", "alice"); err != nil {
		t.Fatalf("owner release failed: %v", err)
	}
	// Releasing an absent handle is a no-op.
	if err := svc.Release(ctx, "u1", "alice"); err != nil {
		t.Fatalf("repeated release failed: %v", err)
	}

	// The freed handle is reservable by another account.
	if err := svc.Reserve(ctx, "u2", "u2@school.edu", "alice"); err != nil {
		t.Fatalf("re-reserve after release failed: %v", err)
	}
}

func TestLookupEmail(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()

	if _, err := svc.LookupEmail(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	if err := svc.Reserve(ctx, "u1", "u1@school.edu", "alice"); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	email, err := svc.LookupEmail(ctx, " ALICE ")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if email != "u1@school.edu" {
		t.Fatalf("email = %q", email)
	}
}

// Reservations written before the email was denormalized onto them resolve
// through the account's role document.
func TestLookupEmailFallsBackToUserDocument(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(st)
	ctx := context.Background()

	err := st.RunTransaction(ctx, func(tx store.Txn) error {
		if err := tx.Set(store.CollUsernames, "legacy", &models.UsernameReservation{
			Username: "legacy",
			UID:      "u9",
		}); err != nil {
			return err
		}
		return tx.Set(store.CollUsers, "u9", &models.User{
			UID:   "u9",
			Email: "u9@school.edu",
			Role:  models.RoleStudent,
		})
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	email, err := svc.LookupEmail(ctx, "legacy")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if email != "u9@school.edu" {
		t.Fatalf("email = %q", email)
	}
}
