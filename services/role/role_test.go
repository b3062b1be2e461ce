package role

import (
	"context"
	"errors"
	"testing"

	"campusbook/database/store"
	"campusbook/models"

	"go.uber.org/zap"
)

func testResolver() Resolver {
	return NewResolver(
		"@school.edu, @yourschool.edu",
		"cashier@local.test",
		"admin@local.test, dean@local.test")
}

func TestRoleFor(t *testing.T) {
	r := testResolver()

	cases := []struct {
		email string
		want  models.Role
	}{
		{"admin@local.test", models.RoleAdmin},
		{"dean@local.test", models.RoleAdmin},
		{"cashier@local.test", models.RoleCashier},
		{"jane@school.edu", models.RoleStudent},
		{"jane@yourschool.edu", models.RoleStudent},
		{"JANE@SCHOOL.EDU", models.RoleStudent},
		{"  Admin@Local.Test  ", models.RoleAdmin},
		{"jane@gmail.com", models.RoleGuest},
		{"", models.RoleGuest},
	}
	for _, tc := range cases {
		if got := r.RoleFor(tc.email); got != tc.want {
			t.Errorf("RoleFor(%q) = %s, want %s", tc.email, got, tc.want)
		}
	}
}

// Exact staff matches win over a student domain suffix.
func TestRoleForPrecedence(t *testing.T) {
	r := NewResolver("@school.edu", "cashier@school.edu", "admin@school.edu")

	if got := r.RoleFor("admin@school.edu"); got != models.RoleAdmin {
		t.Fatalf("RoleFor(admin) = %s, want ADMIN", got)
	}
	if got := r.RoleFor("cashier@school.edu"); got != models.RoleCashier {
		t.Fatalf("RoleFor(cashier) = %s, want CASHIER", got)
	}
	if got := r.RoleFor("student@school.edu"); got != models.RoleStudent {
		t.Fatalf("RoleFor(student) = %s, want STUDENT", got)
	}
}

type fakeClaims struct {
	calls map[string]map[string]interface{}
	err   error
}

func (f *fakeClaims) SetCustomUserClaims(_ context.Context, uid string, claims map[string]interface{}) error {
	if f.calls == nil {
		f.calls = make(map[string]map[string]interface{})
	}
	f.calls[uid] = claims
	return f.err
}

func TestProvisionerWritesRoleDocumentAndClaim(t *testing.T) {
	st := store.NewMemoryStore()
	claims := &fakeClaims{}
	p := NewProvisioner(st, testResolver(), claims, zap.NewNop())
	ctx := context.Background()

	if err := p.OnAccountCreated(ctx, "u1", "jane@school.edu"); err != nil {
		t.Fatalf("OnAccountCreated failed: %v", err)
	}

	var user models.User
	found, err := st.Get(ctx, store.CollUsers, "u1", &user)
	if err != nil || !found {
		t.Fatalf("role document missing: found=%v err=%v", found, err)
	}
	if user.Role != models.RoleStudent || user.Email != "jane@school.edu" {
		t.Fatalf("unexpected role document: %+v", user)
	}
	if got := claims.calls["u1"]["role"]; got != string(models.RoleStudent) {
		t.Fatalf("claim = %v, want STUDENT", got)
	}
}

// A replayed signup event never rewrites the role document.
func TestProvisionerReplayIsNoOp(t *testing.T) {
	st := store.NewMemoryStore()
	p := NewProvisioner(st, testResolver(), nil, zap.NewNop())
	ctx := context.Background()

	if err := p.OnAccountCreated(ctx, "u1", "jane@school.edu"); err != nil {
		t.Fatalf("first OnAccountCreated failed: %v", err)
	}

	// Simulate an admin promotion between deliveries.
	err := st.RunTransaction(ctx, func(tx store.Txn) error {
		var user models.User
		if _, err := tx.Get(store.CollUsers, "u1", &user); err != nil {
			return err
		}
		user.Role = models.RoleAdmin
		return tx.Set(store.CollUsers, "u1", &user)
	})
	if err != nil {
		t.Fatalf("promotion failed: %v", err)
	}

	if err := p.OnAccountCreated(ctx, "u1", "jane@school.edu"); err != nil {
		t.Fatalf("replayed OnAccountCreated failed: %v", err)
	}
	var user models.User
	if _, err := st.Get(ctx, store.CollUsers, "u1", &user); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Fatalf("replay clobbered role: %s", user.Role)
	}
}

// A claim-push failure is logged, not surfaced; the role document still wins.
func TestProvisionerClaimFailureIsNotFatal(t *testing.T) {
	st := store.NewMemoryStore()
	claims := &fakeClaims{err: errors.New("identity provider unavailable")}
	p := NewProvisioner(st, testResolver(), claims, zap.NewNop())
	ctx := context.Background()

	if err := p.OnAccountCreated(ctx, "u1", "jane@school.edu"); err != nil {
		t.Fatalf("OnAccountCreated failed: %v", err)
	}
	var user models.User
	found, err := st.Get(ctx, store.CollUsers, "u1", &user)
	if err != nil || !found {
		t.Fatalf("role document missing despite claim failure: found=%v err=%v", found, err)
	}
}
