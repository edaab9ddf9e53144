// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package routeguard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexusportal/nexus/internal/platform/sec"
)

func verifiedState(role sec.Role) State {
	return State{
		Principal: &Principal{ID: "u-1", Email: "user@example.com", EmailVerified: true},
		Role:      role,
	}
}

func TestGuard_Decide_Matrix(t *testing.T) {
	guard := Default()

	unauthenticated := State{}
	unverified := State{
		Principal: &Principal{ID: "u-1", Email: "user@example.com"},
		Role:      sec.RoleStudent,
	}
	student := verifiedState(sec.RoleStudent)
	staff := verifiedState(sec.RoleStaff)

	tests := []struct {
		name  string
		state State
		path  string
		want  Decision
	}{
		// Public routes render for every session state.
		{"home public unauthenticated", unauthenticated, HomePath, Decision{Kind: Render}},
		{"login public unauthenticated", unauthenticated, LoginPath, Decision{Kind: Render}},
		{"register public unauthenticated", unauthenticated, RegisterPath, Decision{Kind: Render}},
		{"login public while authorized", student, LoginPath, Decision{Kind: Render}},

		// Unauthenticated sessions are sent to login for every protected route.
		{"student dashboard unauthenticated", unauthenticated, StudentDashboardPath, Decision{Kind: RedirectLogin, Target: LoginPath}},
		{"staff dashboard unauthenticated", unauthenticated, StaffDashboardPath, Decision{Kind: RedirectLogin, Target: LoginPath}},
		{"profile unauthenticated", unauthenticated, ProfilePath, Decision{Kind: RedirectLogin, Target: LoginPath}},

		// Unverified principals are treated like no session.
		{"student dashboard unverified", unverified, StudentDashboardPath, Decision{Kind: RedirectLogin, Target: LoginPath}},
		{"profile unverified", unverified, ProfilePath, Decision{Kind: RedirectLogin, Target: LoginPath}},

		// Authorized sessions render their own surface.
		{"student dashboard as student", student, StudentDashboardPath, Decision{Kind: Render}},
		{"staff dashboard as staff", staff, StaffDashboardPath, Decision{Kind: Render}},
		{"profile as student", student, ProfilePath, Decision{Kind: Render}},
		{"profile as staff", staff, ProfilePath, Decision{Kind: Render}},

		// A role mismatch redirects to the user's OWN dashboard, never login.
		{"staff dashboard as student", student, StaffDashboardPath, Decision{Kind: RedirectDashboard, Target: StudentDashboardPath}},
		{"student dashboard as staff", staff, StudentDashboardPath, Decision{Kind: RedirectDashboard, Target: StaffDashboardPath}},

		// Unknown paths carry no role requirement.
		{"unknown path unauthenticated", unauthenticated, "/no-such-route", Decision{Kind: Render}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, guard.Decide(test.state, test.path))
		})
	}
}

func TestGuard_Decide_WaitsWhileLoading(t *testing.T) {
	guard := Default()

	// While the initial session resolution is in flight the guard must not
	// commit to any redirect, even for protected routes.
	for _, path := range []string{HomePath, LoginPath, StudentDashboardPath, StaffDashboardPath, ProfilePath} {
		decision := guard.Decide(State{Loading: true}, path)
		assert.Equal(t, Wait, decision.Kind, "path %s", path)
		assert.Empty(t, decision.Target)
	}
}

func TestGuard_Decide_DanglingPrincipal(t *testing.T) {
	guard := Default()

	// A verified principal whose profile never resolved has no role and
	// cannot be authorized for anything.
	state := State{
		Principal: &Principal{ID: "u-1", Email: "user@example.com", EmailVerified: true},
	}

	decision := guard.Decide(state, StudentDashboardPath)
	assert.Equal(t, Decision{Kind: RedirectLogin, Target: LoginPath}, decision)
}
