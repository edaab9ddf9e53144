// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
HTTP delivery layer for user identity management.

It implements the gateway for the authentication lifecycle—from account creation
to session management and verification.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/constants"
	"github.com/nexusportal/nexus/internal/platform/middleware"
	requestutil "github.com/nexusportal/nexus/internal/platform/request"
	"github.com/nexusportal/nexus/internal/platform/respond"
	"github.com/nexusportal/nexus/internal/platform/routeguard"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Registration, Login, Verification, Session bootstrap).
type Handler struct {
	authService *Service
	guard       *routeguard.Guard
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(service *Service, guard *routeguard.Guard) *Handler {
	return &Handler{authService: service, guard: guard}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register            : Creates a new principal and profile.
//   - POST /login               : Authenticates and returns a JWT.
//   - POST /refresh             : Rotates the refresh session.
//   - POST /verify-email        : Confirms email ownership.
//   - POST /resend-verification : Re-issues the verification mail.
//   - GET  /session             : One-shot session bootstrap.
//   - POST /logout              : Revokes the active session.
//   - POST /logout-all          : Revokes every session of the caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/resend-verification", handler.resendVerification)

	// Session bootstrap answers for anonymous callers too, so it is mounted
	// outside the RequireAuth group.
	router.Get("/session", handler.session)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	RollNumber string `json:"roll_number"`
	Batch      string `json:"batch"`
	Phone      string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input (including the role-conditional student fields),
then runs the multi-step enrollment sequence.

Request:
  - Body: registerRequest (Name, Email, Password, Role, RollNumber, Batch, Phone)

Response:
  - 201: Account: Created principal (unverified)
  - 400: ErrInvalidJSON: Bad input, weak password, or validation failure
  - 409: EMAIL_IN_USE: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	isStudent := input.Role == string(sec.RoleStudent)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Required(FieldRole, input.Role).
		OneOf(FieldRole, input.Role, string(sec.RoleStudent), string(sec.RoleStaff)).
		Custom(FieldRollNumber, isStudent && input.RollNumber == "", "is required for students").
		Custom(FieldBatch, isStudent && input.Batch == "", "is required for students").
		Custom(FieldPhone, isStudent && input.Phone == "", "is required for students")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Role:       sec.Role(input.Role),
		RollNumber: input.RollNumber,
		Batch:      input.Batch,
		Phone:      input.Phone,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldUser:    account,
		FieldMessage: "Verification email sent. Please verify before logging in.",
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, generates JWT access tokens, and injects
a secure refresh token cookie into the response. The payload carries the
role-appropriate dashboard route.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: Session: Access token, account, role, and redirect target
  - 401: ErrUnauthorized: Invalid credentials
  - 403: EMAIL_NOT_VERIFIED: Credentials valid but email unverified
  - 404: PROFILE_NOT_FOUND: Principal exists without a profile
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:     input.Email,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.Account,
		FieldRole:        string(session.Role),
		FieldRedirectTo:  session.RedirectTo,
	})
}

/*
Logout terminates the current user session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (if present) and clears the
security cookies from the client.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
LogoutAll terminates every session of the authenticated user.

POST /api/v1/auth/logout-all

Description: Sign-out-everywhere for a caller who suspects a stolen refresh
token. Revokes all active sessions server-side and clears the local cookie.

Response:
  - 204: No Content: All sessions terminated
  - 401: ErrUnauthorized: Missing or invalid access token
*/
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	if err := handler.authService.LogoutAll(request.Context(), claims.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie
and issuing a fresh access token and an updated refresh token.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.RefreshSession(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		middleware.RealIP(request),
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
		FieldRole:        string(session.Role),
		FieldRedirectTo:  session.RedirectTo,
	})
}

/*
VerifyEmail confirms a user's email ownership.

POST /api/v1/auth/verify-email

Description: Validates an email verification token and marks the account as verified.

Request:
  - Body: verifyEmailRequest (Token)

Response:
  - 200: Success: Email verified
  - 400: ErrInvalidJSON: Missing or invalid token
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	if err := handler.authService.VerifyEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email verified successfully",
	})
}

/*
ResendVerification re-issues the verification mail.

POST /api/v1/auth/resend-verification

Description: Dispatches a fresh verification link if the email belongs to an
unverified account. Always answers with a generic message.

Request:
  - Body: resendVerificationRequest (Email)

Response:
  - 200: Success: Generic dispatch confirmation
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	var input resendVerificationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResendVerification(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email needs verification, a new link has been sent.",
	})
}

/*
Session is the one-shot session bootstrap endpoint.

GET /api/v1/auth/session?path=/student-dashboard

Description: Resolves the caller's session state (anonymous callers included)
and, when a target path is supplied, evaluates the navigation decision for it.
Clients call this once on startup instead of holding a provisional state.

Response:
  - 200: SessionState: Authenticated flag, account, role, and optional decision
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	claims := requestutil.Claims(request)

	state := routeguard.State{}
	payload := map[string]any{
		"authenticated": false,
	}

	if claims != nil {
		snapshot, err := handler.authService.Snapshot(request.Context(), claims.UserID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		state.Principal = &routeguard.Principal{
			ID:            snapshot.Account.ID,
			Email:         snapshot.Account.Email,
			EmailVerified: snapshot.Account.IsVerified,
		}
		state.Role = snapshot.Role

		payload["authenticated"] = true
		payload[FieldUser] = snapshot.Account
		payload[FieldRole] = string(snapshot.Role)
	}

	if path := request.URL.Query().Get("path"); path != "" {
		decision := handler.guard.Decide(state, path)
		payload["decision"] = map[string]string{
			"action": decision.Kind.String(),
			"target": decision.Target,
		}
	}

	respond.OK(writer, payload)
}

// setRefreshCookie installs the rotated refresh token as a scoped, secure cookie.
func setRefreshCookie(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
