package role

import (
	"context"
	"time"

	"campusbook/database/store"
	"campusbook/models"

	"go.uber.org/zap"
)

// ClaimSetter pushes the role claim back to the identity provider.
// Implemented by the Firebase auth client; faked in tests.
type ClaimSetter interface {
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

// Provisioner consumes account-created events from the identity provider:
// it derives the role, writes the users/{uid} role document, and sets the
// provider-side custom claim. Safe to re-run for the same account.
type Provisioner struct {
	Store    store.Store
	Resolver Resolver
	Claims   ClaimSetter
	Logger   *zap.Logger

	now func() time.Time
}

// NewProvisioner wires a Provisioner.
func NewProvisioner(st store.Store, resolver Resolver, claims ClaimSetter, logger *zap.Logger) *Provisioner {
	return &Provisioner{Store: st, Resolver: resolver, Claims: claims, Logger: logger, now: time.Now}
}

// OnAccountCreated handles one identity-provider signup event.
func (p *Provisioner) OnAccountCreated(ctx context.Context, uid, email string) error {
	r := p.Resolver.RoleFor(email)

	err := p.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var existing models.User
		found, err := tx.Get(store.CollUsers, uid, &existing)
		if err != nil {
			return err
		}
		if found {
			return nil // replayed event; role documents are written once
		}
		user := models.User{
			UID:       uid,
			Email:     email,
			Role:      r,
			CreatedAt: p.now(),
		}
		return tx.Set(store.CollUsers, uid, &user)
	})
	if err != nil {
		return err
	}

	if p.Claims != nil {
		if err := p.Claims.SetCustomUserClaims(ctx, uid, map[string]interface{}{"role": string(r)}); err != nil {
			// The role document is the source of truth; the claim is a
			// convenience copy, so failure here is logged and not fatal.
			p.Logger.Warn("failed to set role claim",
				zap.String("uid", uid),
				zap.String("role", string(r)),
				zap.Error(err))
		}
	}
	return nil
}
