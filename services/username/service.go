// Package username reserves globally unique handles bound 1:1 to accounts.
// The normalized handle is the document key, so uniqueness is enforced by
// the write itself inside a transaction.
package username

import (
	"context"
	"regexp"
	"strings"
	"time"

	"campusbook/database/store"
	"campusbook/models"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,30}$`)

// reservedUsernames is a small denylist of handles that would be confusing
// or abusable as account names.
var reservedUsernames = map[string]bool{
	"admin":     true,
	"root":      true,
	"support":   true,
	"moderator": true,
	"system":    true,
	"cashier":   true,
}

// Service reserves and releases unique usernames.
type Service interface {
	Reserve(ctx context.Context, uid, email, username string) error
	Release(ctx context.Context, uid, username string) error
	LookupEmail(ctx context.Context, username string) (string, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Store store.Store

	now func() time.Time
}

// NewService wires a DefaultService.
func NewService(st store.Store) *DefaultService {
	return &DefaultService{Store: st, now: time.Now}
}

// Normalize lower-cases and trims a raw handle.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func validate(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if reservedUsernames[username] {
		return ErrReservedWord
	}
	return nil
}

// Reserve binds the normalized handle to uid. Fails with ErrTaken when any
// account, including uid itself, already holds it.
func (s *DefaultService) Reserve(ctx context.Context, uid, email, username string) error {
	username = Normalize(username)
	if err := validate(username); err != nil {
		return err
	}

	return s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var existing models.UsernameReservation
		found, err := tx.Get(store.CollUsernames, username, &existing)
		if err != nil {
			return err
		}
		if found {
			return ErrTaken
		}
		res := models.UsernameReservation{
			Username:  username,
			UID:       uid,
			Email:     email,
			CreatedAt: s.now(),
		}
		return tx.Set(store.CollUsernames, username, &res)
	})
}

// Release removes uid's reservation. Releasing an absent handle is a no-op;
// releasing someone else's fails with ErrNotOwner.
func (s *DefaultService) Release(ctx context.Context, uid, username string) error {
	username = Normalize(username)

	return s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var existing models.UsernameReservation
		found, err := tx.Get(store.CollUsernames, username, &existing)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		if existing.UID != uid {
			return ErrNotOwner
		}
		return tx.Delete(store.CollUsernames, username)
	})
}

// LookupEmail resolves a handle to the bound account's email. Falls back to
// the account's role document when the reservation predates the denormalized
// email field.
func (s *DefaultService) LookupEmail(ctx context.Context, username string) (string, error) {
	username = Normalize(username)

	var res models.UsernameReservation
	found, err := s.Store.Get(ctx, store.CollUsernames, username, &res)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotFound
	}
	if res.Email != "" {
		return res.Email, nil
	}

	var user models.User
	found, err = s.Store.Get(ctx, store.CollUsers, res.UID, &user)
	if err != nil {
		return "", err
	}
	if !found || user.Email == "" {
		return "", ErrNotFound
	}
	return user.Email, nil
}
