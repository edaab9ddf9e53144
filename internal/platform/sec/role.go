// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package sec

// # User Roles

// Role represents the portal access level granted to an account.
//
// Roles are assigned exactly once at registration and never change:
// there is no promotion path between student and staff.
type Role string

const (
	// Can upload certificates and browse their own records
	RoleStudent Role = "student"

	// Can browse student batches and review uploaded certificates
	RoleStaff Role = "staff"
)

// # Role Helpers

// Valid reports whether the role is one of the known portal roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleStaff
}

// DashboardPath returns the SPA route that serves as the home view for this
// role. Unknown roles fall back to the login route so a corrupt claim can
// never land on a protected view.
func (r Role) DashboardPath() string {
	switch r {
	case RoleStudent:
		return "/student-dashboard"
	case RoleStaff:
		return "/staff-dashboard"
	default:
		return "/login"
	}
}

// Is reports whether the role is a member of the allowed set.
// An empty set means "any authenticated role".
func (r Role) Is(allowed ...Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
