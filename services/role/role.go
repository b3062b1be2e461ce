// Package role assigns an account role from the signup email. The mapping is
// a pure function of the email, so re-running it for the same account is
// always idempotent.
package role

import (
	"strings"

	"campusbook/models"
)

// Resolver maps identifying email attributes to roles.
type Resolver struct {
	// StudentDomains are email suffixes (including the "@") granted STUDENT.
	StudentDomains []string
	// CashierEmails and AdminEmails are exact-match addresses.
	CashierEmails []string
	AdminEmails   []string
}

// NewResolver builds a Resolver from comma-separated configuration strings.
func NewResolver(studentDomains, cashierEmails, adminEmails string) Resolver {
	return Resolver{
		StudentDomains: splitList(studentDomains),
		CashierEmails:  splitList(cashierEmails),
		AdminEmails:    splitList(adminEmails),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// RoleFor returns the role for an email: exact admin/cashier match first,
// then student domain suffix, else GUEST.
func (r Resolver) RoleFor(email string) models.Role {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.AdminEmails {
		if email == a {
			return models.RoleAdmin
		}
	}
	for _, c := range r.CashierEmails {
		if email == c {
			return models.RoleCashier
		}
	}
	for _, d := range r.StudentDomains {
		if strings.HasSuffix(email, d) {
			return models.RoleStudent
		}
	}
	return models.RoleGuest
}
