// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package routeguard

import (
	"github.com/nexusportal/nexus/internal/platform/sec"
)

// Well-known SPA routes.
const (
	HomePath             = "/"
	LoginPath            = "/login"
	RegisterPath         = "/register"
	StudentDashboardPath = "/student-dashboard"
	StaffDashboardPath   = "/staff-dashboard"
	ProfilePath          = "/profile"
)

// Route declares the access policy for one SPA path.
type Route struct {
	Path string

	// Public routes render for everyone, session or not.
	Public bool

	// AllowedRoles restricts the route to the listed roles. An empty set
	// on a non-public route admits any verified session.
	AllowedRoles []sec.Role
}

// DefaultRoutes is the portal's standard route table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: HomePath, Public: true},
		{Path: LoginPath, Public: true},
		{Path: RegisterPath, Public: true},
		{Path: StudentDashboardPath, AllowedRoles: []sec.Role{sec.RoleStudent}},
		{Path: StaffDashboardPath, AllowedRoles: []sec.Role{sec.RoleStaff}},
		{Path: ProfilePath},
	}
}
