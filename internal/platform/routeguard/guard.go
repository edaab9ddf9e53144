// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package routeguard implements the navigation decision function for the portal.

Given the current session state and a target SPA route, it answers exactly one
of four outcomes: wait (session still resolving), render, redirect to login,
or redirect to the user's own dashboard.

Architecture:

  - Pure: Decide has no side effects and touches no I/O, which keeps every
    combination of session state and route trivially testable.
  - Single suspension point: the Wait outcome occurs only while the initial
    session resolution is in flight, and resolves exactly once per client.
  - Tie-break rule: a role-set mismatch always redirects to the user's OWN
    dashboard, never to login, so "wrong role" is distinguishable from
    "no session".

The HTTP middleware enforces the same policy for API endpoints; this package
is the single source of truth for what each route requires.
*/
package routeguard

import (
	"github.com/nexusportal/nexus/internal/platform/sec"
)

// # Session State

// Principal is the authenticated identity as seen by the guard.
type Principal struct {
	ID            string
	Email         string
	EmailVerified bool
}

// State is the session snapshot a navigation decision is made against.
//
// The guard must always observe the latest snapshot: callers construct a
// fresh State per decision rather than caching one across events.
type State struct {
	// Loading is true until the initial session resolution completes.
	Loading bool

	// Principal is nil when no session exists.
	Principal *Principal

	// Role is the resolved profile role. The zero value means the profile
	// is absent (the dangling-principal case).
	Role sec.Role
}

// # Decisions

// Kind enumerates the possible navigation outcomes.
type Kind int

const (
	// Wait means no decision is possible yet: session state is resolving.
	Wait Kind = iota

	// Render means the requested view may be shown.
	Render

	// RedirectLogin sends the client to the login view, which also owns
	// the resend-verification affordance.
	RedirectLogin

	// RedirectDashboard sends the client to its own role dashboard.
	RedirectDashboard
)

// Decision is the outcome of evaluating one navigation attempt.
type Decision struct {
	Kind Kind

	// Target is the route to navigate to for redirect outcomes.
	Target string
}

// String returns a log-friendly name for the decision kind.
func (k Kind) String() string {
	switch k {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "unknown"
	}
}

// # Guard

// Guard evaluates navigation attempts against a route table.
type Guard struct {
	routes map[string]Route
}

// New constructs a Guard over the given route table.
func New(routes []Route) *Guard {
	table := make(map[string]Route, len(routes))
	for _, route := range routes {
		table[route.Path] = route
	}
	return &Guard{routes: table}
}

// Default returns a Guard over the portal's standard route table.
func Default() *Guard {
	return New(DefaultRoutes())
}

/*
Decide maps (session state, target path) to a navigation outcome.

Description: Implements the three-state policy — Unauthenticated routes to
login, Unverified routes to login, Authorized renders or redirects to the
user's own dashboard on a role mismatch.

Parameters:
  - state: State (Latest session snapshot)
  - path: string (Target SPA route)

Returns:
  - Decision: One of Wait, Render, RedirectLogin, RedirectDashboard
*/
func (guard *Guard) Decide(state State, path string) Decision {

	// ── 1. Suspension ─────────────────────────────────────────────────────
	// While the initial session check is in flight, no decision is made.
	if state.Loading {
		return Decision{Kind: Wait}
	}

	// ── 2. Route Lookup ───────────────────────────────────────────────────
	// Paths outside the table carry no role requirement and render publicly
	// (the SPA's catch-all falls through to the home view).
	route, known := guard.routes[path]
	if !known || route.Public {
		return Decision{Kind: Render}
	}

	// ── 3. Authentication ─────────────────────────────────────────────────
	if state.Principal == nil {
		return Decision{Kind: RedirectLogin, Target: LoginPath}
	}

	// ── 4. Verification ───────────────────────────────────────────────────
	// Unverified principals are bounced to login, where the verification
	// affordance lives.
	if !state.Principal.EmailVerified {
		return Decision{Kind: RedirectLogin, Target: LoginPath}
	}

	// ── 5. Profile Presence ───────────────────────────────────────────────
	// A verified principal without a resolvable profile cannot be
	// authorized for anything.
	if !state.Role.Valid() {
		return Decision{Kind: RedirectLogin, Target: LoginPath}
	}

	// ── 6. Role Authorization ─────────────────────────────────────────────
	if !state.Role.Is(route.AllowedRoles...) {
		return Decision{Kind: RedirectDashboard, Target: state.Role.DashboardPath()}
	}

	return Decision{Kind: Render}
}
