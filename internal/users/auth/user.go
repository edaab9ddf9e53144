// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (Account, Session) and logic for
authentication, email verification, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.

Registration is deliberately a sequence of separate writes (principal, then
profile, then verification dispatch) rather than one transaction: a failure
after the principal write leaves a dangling principal that can never pass the
login profile check, which is surfaced as PROFILE_NOT_FOUND.
*/
package auth

import (
	"time"

	"github.com/nexusportal/nexus/internal/platform/sec"
)

// # Domain Entities

// Account represents an authentication principal of the portal.
//
// It deliberately carries no profile data: names, roles, and student details
// live in users.profile and are created as a separate registration step.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileSeed is the denormalized profile row written during registration.
//
// RollNumber, Batch, and Phone are populated only when Role is
// [sec.RoleStudent]; staff profiles omit them entirely.
type ProfileSeed struct {
	UserID     string
	Name       string
	Email      string
	Role       sec.Role
	RollNumber string
	Batch      string
	Phone      string
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldRole        = "role"
	FieldRollNumber  = "roll_number"
	FieldBatch       = "batch"
	FieldPhone       = "phone"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
	FieldRedirectTo  = "redirect_to"
)
