// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package middleware

import (
	"net/http"
	"strings"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/ctxutil"
	"github.com/nexusportal/nexus/internal/platform/respond"
	"github.com/nexusportal/nexus/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token service
// implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
//
// # Parameters
//   - verifier: The TokenVerifier instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized carrying a login redirect hint.
//  3. Check the email verification flag; unverified sessions are rejected the
//     same way the navigation guard bounces them to login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := ctxutil.GetAuthUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}

		if !claims.Verified {
			respond.Error(writer, request, apperr.EmailNotVerified())
			return
		}

		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose session role is outside the allowed set.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
//
// # Flow
//  1. Check if [*sec.AuthClaims] exists in context (implies AuthN).
//  2. Check the email verification flag.
//  3. Check if the user's role is in the allowed set. An empty set admits any
//     authenticated role.
//  4. On a mismatch, abort with HTTP 403 whose payload points the client at
//     its OWN dashboard, mirroring the navigation guard's tie-break rule.
func RequireRole(allowed ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Verification Check ─────────────────────────────────────────
			if !claims.Verified {
				respond.Error(writer, request, apperr.EmailNotVerified())
				return
			}

			// ── 3. Authorization Check ────────────────────────────────────────
			userRole := sec.Role(claims.Role)
			if !userRole.Is(allowed...) {
				respond.Error(writer, request, apperr.RoleRedirect(userRole.DashboardPath()))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
