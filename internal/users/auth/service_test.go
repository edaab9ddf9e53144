// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/sec"
)

// # Test Doubles

type fakeAccountRepo struct {
	byEmail map[string]*Account
	byID    map[string]*Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byEmail: make(map[string]*Account),
		byID:    make(map[string]*Account),
	}
}

func (repo *fakeAccountRepo) Create(_ context.Context, account *Account) error {
	if _, exists := repo.byEmail[account.Email]; exists {
		return apperr.EmailInUse()
	}
	copied := *account
	repo.byEmail[account.Email] = &copied
	repo.byID[account.ID] = &copied
	return nil
}

func (repo *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	account, ok := repo.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return account, nil
}

func (repo *fakeAccountRepo) FindByID(_ context.Context, id string) (*Account, error) {
	account, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return account, nil
}

func (repo *fakeAccountRepo) MarkVerified(_ context.Context, userID string) error {
	if account, ok := repo.byID[userID]; ok {
		account.IsVerified = true
	}
	return nil
}

func (repo *fakeAccountRepo) TouchLogin(_ context.Context, _ string) error { return nil }

type fakeProfileRepo struct {
	seeds map[string]*ProfileSeed
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{seeds: make(map[string]*ProfileSeed)}
}

func (repo *fakeProfileRepo) Create(_ context.Context, seed *ProfileSeed) error {
	copied := *seed
	repo.seeds[seed.UserID] = &copied
	return nil
}

func (repo *fakeProfileRepo) RoleOf(_ context.Context, userID string) (sec.Role, error) {
	seed, ok := repo.seeds[userID]
	if !ok {
		return "", apperr.ProfileNotFound()
	}
	return seed.Role, nil
}

type fakeSessionRepo struct {
	sessions map[string]*Session // keyed by token hash
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*Session)}
}

func (repo *fakeSessionRepo) Create(_ context.Context, session *Session) error {
	copied := *session
	repo.sessions[session.TokenHash] = &copied
	return nil
}

func (repo *fakeSessionRepo) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	session, ok := repo.sessions[tokenHash]
	if !ok || session.IsRevoked || session.ExpiresAt.Before(time.Now()) {
		return nil, apperr.NotFound("Session")
	}
	return session, nil
}

func (repo *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	for _, session := range repo.sessions {
		if session.ID == sessionID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	for _, session := range repo.sessions {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (repo *fakeSessionRepo) DeleteExpired(_ context.Context) error {
	for hash, session := range repo.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(repo.sessions, hash)
		}
	}
	return nil
}

func (repo *fakeSessionRepo) active() []*Session {
	var result []*Session
	for _, session := range repo.sessions {
		if !session.IsRevoked {
			result = append(result, session)
		}
	}
	return result
}

type fakeTokenRepo struct {
	tokens map[string]string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]string)}
}

func (repo *fakeTokenRepo) Set(_ context.Context, token, userID string, _ time.Duration) error {
	repo.tokens[token] = userID
	return nil
}

func (repo *fakeTokenRepo) Get(_ context.Context, token string) (string, error) {
	userID, ok := repo.tokens[token]
	if !ok {
		return "", apperr.NotFound("Verification token")
	}
	return userID, nil
}

func (repo *fakeTokenRepo) Delete(_ context.Context, token string) error {
	delete(repo.tokens, token)
	return nil
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID, email, role string, _ time.Duration) (string, error) {
	return "jwt:" + userID + ":" + role, nil
}

type capturingMailer struct {
	sentTo []string
	links  []string
}

func (mailer *capturingMailer) SendVerification(_ context.Context, email, link string) error {
	mailer.sentTo = append(mailer.sentTo, email)
	mailer.links = append(mailer.links, link)
	return nil
}

// # Fixture

type fixture struct {
	service  *Service
	accounts *fakeAccountRepo
	profiles *fakeProfileRepo
	sessions *fakeSessionRepo
	verify   *fakeTokenRepo
	mailer   *capturingMailer
	events   *ChannelBroadcaster
}

func newFixture() *fixture {
	accounts := newFakeAccountRepo()
	profiles := newFakeProfileRepo()
	sessions := newFakeSessionRepo()
	verify := newFakeTokenRepo()
	mailer := &capturingMailer{}
	events := NewBroadcaster()

	service := NewService(accounts, profiles, sessions, verify, fakeTokens{}, mailer, events, "https://portal.example.com")

	return &fixture{
		service:  service,
		accounts: accounts,
		profiles: profiles,
		sessions: sessions,
		verify:   verify,
		mailer:   mailer,
		events:   events,
	}
}

func (f *fixture) registerStudent(t *testing.T, email string) *Account {
	t.Helper()

	account, err := f.service.Register(context.Background(), RegisterInput{
		Name:       "Asha Varma",
		Email:      email,
		Password:   "sufficiently-long",
		Role:       sec.RoleStudent,
		RollNumber: "CS-1042",
		Batch:      "2024",
		Phone:      "9876543210",
	})
	require.NoError(t, err)
	return account
}

// # Registration

func TestService_Register_CreatesPrincipalAndProfile(t *testing.T) {
	f := newFixture()

	account := f.registerStudent(t, "asha@example.com")

	assert.False(t, account.IsVerified)
	assert.NotEmpty(t, account.ID)

	seed := f.profiles.seeds[account.ID]
	require.NotNil(t, seed)
	assert.Equal(t, sec.RoleStudent, seed.Role)
	assert.Equal(t, "CS-1042", seed.RollNumber)
	assert.Equal(t, "2024", seed.Batch)
	assert.Equal(t, "9876543210", seed.Phone)

	require.Len(t, f.mailer.sentTo, 1)
	assert.Equal(t, "asha@example.com", f.mailer.sentTo[0])
	assert.Contains(t, f.mailer.links[0], "https://portal.example.com/verify-email?token=")
	assert.Len(t, f.verify.tokens, 1)
}

func TestService_Register_StaffOmitsStudentFields(t *testing.T) {
	f := newFixture()

	account, err := f.service.Register(context.Background(), RegisterInput{
		Name:     "Dr. Rao",
		Email:    "rao@example.com",
		Password: "sufficiently-long",
		Role:     sec.RoleStaff,
		// Student fields supplied by a buggy client must not stick to staff.
		RollNumber: "SHOULD-NOT-PERSIST",
		Batch:      "2020",
	})
	require.NoError(t, err)

	seed := f.profiles.seeds[account.ID]
	require.NotNil(t, seed)
	assert.Equal(t, sec.RoleStaff, seed.Role)
	assert.Empty(t, seed.RollNumber)
	assert.Empty(t, seed.Batch)
	assert.Empty(t, seed.Phone)
}

func TestService_Register_DuplicateEmailLeavesNoProfile(t *testing.T) {
	f := newFixture()
	f.registerStudent(t, "asha@example.com")

	before := len(f.profiles.seeds)

	_, err := f.service.Register(context.Background(), RegisterInput{
		Name:     "Impostor",
		Email:    "asha@example.com",
		Password: "sufficiently-long",
		Role:     sec.RoleStaff,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "EMAIL_IN_USE"))

	// The failed attempt must not create a second profile row.
	assert.Len(t, f.profiles.seeds, before)
}

func TestService_Register_WeakPasswordTouchesNoStorage(t *testing.T) {
	f := newFixture()

	_, err := f.service.Register(context.Background(), RegisterInput{
		Name:     "Asha Varma",
		Email:    "asha@example.com",
		Password: "tiny",
		Role:     sec.RoleStudent,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "WEAK_CREDENTIAL"))

	assert.Empty(t, f.accounts.byEmail)
	assert.Empty(t, f.profiles.seeds)
	assert.Empty(t, f.mailer.sentTo)
}

// # Login

func TestService_Login_UnverifiedCreatesNoSession(t *testing.T) {
	f := newFixture()
	f.registerStudent(t, "asha@example.com")

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "EMAIL_NOT_VERIFIED"))

	// The verification gate fires before any session state is minted.
	assert.Empty(t, f.sessions.sessions)
}

func TestService_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	f.registerStudent(t, "asha@example.com")

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "not-the-password",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestService_Login_DanglingPrincipal(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	// Simulate a registration interrupted after the principal write.
	delete(f.profiles.seeds, account.ID)

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "PROFILE_NOT_FOUND"))
	assert.Empty(t, f.sessions.sessions)
}

func TestService_Login_SuccessIssuesSessionAndRedirect(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	events, unsubscribe := f.events.Subscribe()
	defer unsubscribe()

	session, err := f.service.Login(context.Background(), LoginInput{
		Email:     "asha@example.com",
		Password:  "sufficiently-long",
		UserAgent: "go-test",
		IPAddress: "198.51.100.7",
	})
	require.NoError(t, err)

	assert.Equal(t, "jwt:"+account.ID+":student", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, sec.RoleStudent, session.Role)
	assert.Equal(t, "/student-dashboard", session.RedirectTo)
	assert.Len(t, f.sessions.active(), 1)

	event := <-events
	assert.Equal(t, EventSignedIn, event.Type)
	assert.Equal(t, account.ID, event.UserID)
}

// # Verification

func TestService_VerifyEmail(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")

	var token string
	for existing := range f.verify.tokens {
		token = existing
	}
	require.NotEmpty(t, token)

	require.NoError(t, f.service.VerifyEmail(context.Background(), token))

	assert.True(t, f.accounts.byID[account.ID].IsVerified)
	assert.Empty(t, f.verify.tokens, "used token must be consumed")

	// A second attempt with the burned token fails.
	err := f.service.VerifyEmail(context.Background(), token)
	assert.Error(t, err)
}

func TestService_ResendVerification(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")

	require.NoError(t, f.service.ResendVerification(context.Background(), "asha@example.com"))
	assert.Len(t, f.mailer.sentTo, 2)

	// Verified accounts and unknown emails both no-op.
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))
	require.NoError(t, f.service.ResendVerification(context.Background(), "asha@example.com"))
	require.NoError(t, f.service.ResendVerification(context.Background(), "nobody@example.com"))
	assert.Len(t, f.mailer.sentTo, 2)
}

// # Session Lifecycle

func TestService_RefreshSession_RotatesToken(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	session, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)

	rotated, err := f.service.RefreshSession(context.Background(), session.RefreshToken, "go-test", "198.51.100.7")
	require.NoError(t, err)

	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.Len(t, f.sessions.active(), 1, "old session must be revoked by rotation")

	// Replaying the consumed refresh token fails.
	_, err = f.service.RefreshSession(context.Background(), session.RefreshToken, "go-test", "198.51.100.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestService_Logout_Idempotent(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	session, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	assert.Empty(t, f.sessions.active())

	// Logging out twice, or with garbage, still succeeds.
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), "never-issued"))
}

func TestService_LogoutAll_RevokesEverySessionOfUser(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	// Two devices sign in; a third session belongs to someone else.
	var lastRefreshToken string
	for device := 0; device < 2; device++ {
		session, err := f.service.Login(context.Background(), LoginInput{
			Email:    "asha@example.com",
			Password: "sufficiently-long",
		})
		require.NoError(t, err)
		lastRefreshToken = session.RefreshToken
	}
	require.NoError(t, f.sessions.Create(context.Background(), &Session{
		ID:        "other-session",
		UserID:    "other-user",
		TokenHash: "other-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.Len(t, f.sessions.active(), 3)

	events, unsubscribe := f.events.Subscribe()
	defer unsubscribe()

	require.NoError(t, f.service.LogoutAll(context.Background(), account.ID))

	// Only the other user's session survives.
	remaining := f.sessions.active()
	require.Len(t, remaining, 1)
	assert.Equal(t, "other-user", remaining[0].UserID)

	event := <-events
	assert.Equal(t, EventSignedOut, event.Type)
	assert.Equal(t, account.ID, event.UserID)

	// Every refresh token issued before the call is now dead.
	_, err := f.service.RefreshSession(context.Background(), lastRefreshToken, "go-test", "198.51.100.7")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

func TestService_PurgeExpiredSessions(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")
	require.NoError(t, f.accounts.MarkVerified(context.Background(), account.ID))

	_, err := f.service.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "sufficiently-long",
	})
	require.NoError(t, err)

	require.NoError(t, f.sessions.Create(context.Background(), &Session{
		ID:        "stale-session",
		UserID:    account.ID,
		TokenHash: "stale-hash",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	require.NoError(t, f.service.PurgeExpiredSessions(context.Background()))

	// The expired row is gone; the live session is untouched.
	_, stale := f.sessions.sessions["stale-hash"]
	assert.False(t, stale)
	assert.Len(t, f.sessions.active(), 1)
}

// # Bootstrap

func TestService_Snapshot(t *testing.T) {
	f := newFixture()
	account := f.registerStudent(t, "asha@example.com")

	snapshot, err := f.service.Snapshot(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, snapshot.Account.ID)
	assert.Equal(t, sec.RoleStudent, snapshot.Role)

	_, err = f.service.Snapshot(context.Background(), "missing")
	assert.Error(t, err)
}
