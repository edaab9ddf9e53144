// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from user registration and secure password hashing to
session lifecycle management via JWT and Refresh tokens, with email
verification gating every login.

Architecture:

  - Service: Orchestrates business logic (Register, Login, VerifyEmail).
  - Repository: Abstracted interfaces for Postgres (Accounts, Profiles,
    Sessions) and Redis (Verification tokens).
  - Security: Leverages Bcrypt and RSA-signed JWTs.
  - Broadcast: Session lifecycle transitions fan out to subscribers.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/pkg/uuidv7"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - role: The profile role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	accountRepository           AccountRepository
	profileRepository           ProfileRepository
	sessionRepository           SessionRepository
	verificationTokenRepository VerificationTokenRepository
	tokenProvider               TokenProvider
	mailer                      Mailer
	broadcaster                 Broadcaster
	publicBaseURL               string
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	accountRepo AccountRepository,
	profileRepo ProfileRepository,
	sessionRepo SessionRepository,
	verifyRepo VerificationTokenRepository,
	tokenProv TokenProvider,
	mailer Mailer,
	broadcaster Broadcaster,
	publicBaseURL string,
) *Service {
	return &Service{
		accountRepository:           accountRepo,
		profileRepository:           profileRepo,
		sessionRepository:           sessionRepo,
		verificationTokenRepository: verifyRepo,
		tokenProvider:               tokenProv,
		mailer:                      mailer,
		broadcaster:                 broadcaster,
		publicBaseURL:               publicBaseURL,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
//
// RollNumber, Batch, and Phone are meaningful only when Role is
// [sec.RoleStudent].
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       sec.Role
	RollNumber string
	Batch      string
	Phone      string
}

/*
Register enrolls a brand new user as a sequence of separate writes.

Description: Creates the authentication principal, then the profile row, then
dispatches the verification mail. The sequence is intentionally non-atomic:
a profile write failure leaves a principal that can never log in (surfaced
later as PROFILE_NOT_FOUND) and is never rolled back automatically.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created principal (unverified)
  - err: EmailInUse, WeakCredential, or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {

	// Reject weak credentials before touching any storage.
	if len(input.Password) < MinPasswordLength {
		return nil, apperr.WeakCredential(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}

	// Verify email uniqueness. Return a client-safe EMAIL_IN_USE err.
	// The failed attempt must leave no profile behind, so this check runs
	// before the first write.
	_, err := service.accountRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.EmailInUse()
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Step 1: persist the principal. Time-sortable ID to prevent PG index
	// fragmentation. The unique index backstops the pre-check above.
	account := &Account{
		ID:           uuidv7.New(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		IsVerified:   false,
	}

	if err := service.accountRepository.Create(context, account); err != nil {
		return nil, err
	}

	// Step 2: persist the role-shaped profile row.
	seed := &ProfileSeed{
		UserID: account.ID,
		Name:   input.Name,
		Email:  input.Email,
		Role:   input.Role,
	}
	if input.Role == sec.RoleStudent {
		seed.RollNumber = input.RollNumber
		seed.Batch = input.Batch
		seed.Phone = input.Phone
	}

	if err := service.profileRepository.Create(context, seed); err != nil {
		return nil, fmt.Errorf("auth_service_profile_create_failed: %w", err)
	}

	// Step 3: dispatch the verification mail as an async-ready side effect.
	// A delivery failure does not fail registration; the user can request a
	// resend from the login view.
	service.dispatchVerification(context, account)

	return account, nil
}

/*
ResendVerification re-issues the verification mail for an unverified account.

Description: Generic no-op for unknown or already-verified emails to prevent
account enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Token generation or storage failures
*/
func (service *Service) ResendVerification(context context.Context, email string) error {
	account, err := service.accountRepository.FindByEmail(context, email)
	if err != nil || account.IsVerified {
		return nil
	}

	service.dispatchVerification(context, account)
	return nil
}

// dispatchVerification mints a fresh token, stores it, and hands the link to the mailer.
func (service *Service) dispatchVerification(context context.Context, account *Account) {
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err != nil {
		return
	}

	if err := service.verificationTokenRepository.Set(context, token, account.ID, VerificationTokenTTL); err != nil {
		return
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", service.publicBaseURL, token)
	_ = service.mailer.SendVerification(context, account.Email, link)
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the account's status to verified in persistent storage
	if err := service.accountRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	service.broadcaster.Publish(SessionEvent{Type: EventVerified, UserID: userID})

	return nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established user session.
//
// RedirectTo carries the role-appropriate landing route so clients never have
// to duplicate the dashboard mapping.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Account               *Account
	Role                  sec.Role
	RedirectTo            string
}

/*
Login validates user credentials and issues security tokens.

Description: Verifies identity with constant-time password comparison, gates
on email verification BEFORE any session state is created, resolves the
profile role, and initializes a new session with rotated security tokens.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: Unauthorized, EmailNotVerified, ProfileNotFound, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	account, err := service.accountRepository.FindByEmail(context, input.Email)

	// If (err != nil) the account does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verification gate: credentials were correct, but no session state may
	// exist for an unverified principal.
	if !account.IsVerified {
		return nil, apperr.EmailNotVerified()
	}

	// Resolve the profile role. A dangling principal (interrupted
	// registration) fails here with PROFILE_NOT_FOUND.
	role, err := service.profileRepository.RoleOf(context, account.ID)
	if err != nil {
		return nil, err
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(account.ID, account.Email, string(role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	session := &Session{
		ID:        uuidv7.New(),
		UserID:    account.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: input.UserAgent,
		IPAddress: input.IPAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	// Best-effort bookkeeping; a failed timestamp must not fail the login.
	_ = service.accountRepository.TouchLogin(context, account.ID)

	service.broadcaster.Publish(SessionEvent{
		Type:   EventSignedIn,
		UserID: account.ID,
		Email:  account.Email,
		Role:   role,
	})

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               account,
		Role:                  role,
		RedirectTo:            role.DashboardPath(),
	}, nil
}

/*
Logout permanently revokes the user's active session.

Description: Ensures that a tracked refresh token can never be used again.
Idempotent: an unknown or already-revoked token still counts as logged out.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	// Hash the refresh token
	tokenHash := sec.HashToken(refreshToken)

	// Find the session by token hash
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	// If (err == nil) Revoke the session
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.broadcaster.Publish(SessionEvent{Type: EventSignedOut, UserID: session.UserID})

	return nil
}

/*
LogoutAll revokes every active session belonging to the user.

Description: Sign-out-everywhere. Used when the user suspects a leaked
refresh token; after this call no previously issued refresh token can be
rotated, on any device.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Revocation failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) error {

	if err := service.sessionRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}

	service.broadcaster.Publish(SessionEvent{Type: EventSignedOut, UserID: userID})

	return nil
}

/*
PurgeExpiredSessions physically removes sessions past their expiration.

Description: Housekeeping sweep run at startup. Revoked rows are kept until
they expire so rotation replay attempts stay detectable; only rows whose
ExpiresAt has passed are deleted.

Parameters:
  - context: context.Context

Returns:
  - err: Deletion failures
*/
func (service *Service) PurgeExpiredSessions(context context.Context) error {

	if err := service.sessionRepository.DeleteExpired(context); err != nil {
		return fmt.Errorf("auth_service_purge_sessions_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), and issues a fresh pair of rotated tokens.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Hash the incoming refresh token to look it up
	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the account associated with this session
	account, err := service.accountRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account not found or suspended")
	}

	// Sessions are only minted for verified principals, but the flag may have
	// been reset by support tooling since.
	if !account.IsVerified {
		return nil, apperr.EmailNotVerified()
	}

	role, err := service.profileRepository.RoleOf(context, account.ID)
	if err != nil {
		return nil, err
	}

	// Generate a fresh Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(account.ID, account.Email, string(role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	// Generate a fresh Refresh Token for the rotation
	newRefreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_secure_token_failed: %w", err)
	}

	// Persist the new session
	expiresAt := time.Now().Add(RefreshTokenTTL)
	newSession := &Session{
		ID:        uuidv7.New(),
		UserID:    account.ID,
		TokenHash: sec.HashToken(newRefreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessionRepository.Create(context, newSession); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_session_creation_failed: %w", err)
	}

	service.broadcaster.Publish(SessionEvent{
		Type:   EventRefreshed,
		UserID: account.ID,
		Email:  account.Email,
		Role:   role,
	})

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               account,
		Role:                  role,
		RedirectTo:            role.DashboardPath(),
	}, nil
}

// # Session Bootstrap

// Snapshot is the resolved session state handed to clients on startup.
type Snapshot struct {
	Account *Account
	Role    sec.Role
}

/*
Snapshot resolves the current principal and profile role for a user ID.

Description: Backs the one-shot session bootstrap: clients call it once on
startup to replace their provisional "loading" state with a real decision
input.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Snapshot: Principal plus resolved role
  - err: NotFound, ProfileNotFound, or storage errors
*/
func (service *Service) Snapshot(context context.Context, userID string) (*Snapshot, error) {
	account, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	role, err := service.profileRepository.RoleOf(context, userID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Account: account, Role: role}, nil
}
