// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/dberr"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Test Doubles

// mockRepository implements [Repository] with canned data per test.
type mockRepository struct {
	users map[string]*User

	takenUsername map[string]bool
	takenEmail    map[string]bool

	lastCreated  *User
	lastPassword map[string]string // userID -> new hash
	verified     []string
	roleChanges  map[string]string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:         make(map[string]*User),
		takenUsername: make(map[string]bool),
		takenEmail:    make(map[string]bool),
		lastPassword:  make(map[string]string),
		roleChanges:   make(map[string]string),
	}
}

func (m *mockRepository) List(_ context.Context, _ Filter, _, _ int) ([]*User, int, error) {
	var all []*User
	for _, user := range m.users {
		all = append(all, user)
	}
	return all, len(all), nil
}

func (m *mockRepository) FindByID(_ context.Context, id string) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return user, nil
}

func (m *mockRepository) FindByLogin(_ context.Context, login string) (*User, error) {
	for _, user := range m.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (m *mockRepository) UsernameExists(_ context.Context, username string) (bool, error) {
	return m.takenUsername[username], nil
}

func (m *mockRepository) EmailExists(_ context.Context, email string) (bool, error) {
	return m.takenEmail[email], nil
}

func (m *mockRepository) Create(_ context.Context, user *User) error {
	m.lastCreated = user
	m.users[user.ID] = user
	return nil
}

func (m *mockRepository) UpdateProfile(_ context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return dberr.ErrNotFound
	}
	return nil
}

func (m *mockRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if _, ok := m.users[id]; !ok {
		return dberr.ErrNotFound
	}
	m.lastPassword[id] = passwordHash
	return nil
}

func (m *mockRepository) MarkVerified(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return dberr.ErrNotFound
	}
	m.verified = append(m.verified, id)
	return nil
}

func (m *mockRepository) TouchLastLogin(_ context.Context, _ string) error { return nil }

func (m *mockRepository) SetRole(_ context.Context, id, role string) error {
	if _, ok := m.users[id]; !ok {
		return dberr.ErrNotFound
	}
	m.roleChanges[id] = role
	return nil
}

func (m *mockRepository) ToggleActive(_ context.Context, id string) (bool, error) {
	user, ok := m.users[id]
	if !ok {
		return false, dberr.ErrNotFound
	}
	user.IsActive = !user.IsActive
	return user.IsActive, nil
}

// mockSessions implements [SessionRepository] keyed by token hash.
type mockSessions struct {
	byHash map[string]*Session

	created        []*Session
	revoked        []string
	revokedAllUser []string
}

func newMockSessions() *mockSessions {
	return &mockSessions{byHash: make(map[string]*Session)}
}

func (m *mockSessions) Create(_ context.Context, session *Session) error {
	m.created = append(m.created, session)
	m.byHash[session.TokenHash] = session
	return nil
}

func (m *mockSessions) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	session, ok := m.byHash[tokenHash]
	if !ok || session.IsRevoked {
		return nil, dberr.ErrNotFound
	}
	return session, nil
}

func (m *mockSessions) Revoke(_ context.Context, id string) error {
	for _, session := range m.byHash {
		if session.ID == id && !session.IsRevoked {
			session.IsRevoked = true
			m.revoked = append(m.revoked, id)
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (m *mockSessions) RevokeAllForUser(_ context.Context, userID string) error {
	m.revokedAllUser = append(m.revokedAllUser, userID)
	for _, session := range m.byHash {
		if session.UserID == userID {
			session.IsRevoked = true
		}
	}
	return nil
}

func (m *mockSessions) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// mockTokens implements [TokenStore] with in-memory maps.
type mockTokens struct {
	reset  map[string]string
	verify map[string]string
}

func newMockTokens() *mockTokens {
	return &mockTokens{reset: make(map[string]string), verify: make(map[string]string)}
}

func (m *mockTokens) SaveResetToken(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	m.reset[tokenHash] = userID
	return nil
}

func (m *mockTokens) ConsumeResetToken(_ context.Context, tokenHash string) (string, error) {
	userID, ok := m.reset[tokenHash]
	if !ok {
		return "", dberr.ErrNotFound
	}
	delete(m.reset, tokenHash)
	return userID, nil
}

func (m *mockTokens) SaveVerifyToken(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	m.verify[tokenHash] = userID
	return nil
}

func (m *mockTokens) ConsumeVerifyToken(_ context.Context, tokenHash string) (string, error) {
	userID, ok := m.verify[tokenHash]
	if !ok {
		return "", dberr.ErrNotFound
	}
	delete(m.verify, tokenHash)
	return userID, nil
}

// stubSigner mints predictable access tokens without RSA keys.
type stubSigner struct{ minted int }

func (s *stubSigner) GenerateAccessToken(userID, _ string, _ sec.Role, _ time.Duration) (string, error) {
	s.minted++
	return fmt.Sprintf("jwt-%s-%d", userID, s.minted), nil
}

// # Fixtures

type testEnv struct {
	repository *mockRepository
	sessions   *mockSessions
	tokens     *mockTokens
	signer     *stubSigner
	service    *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repository: newMockRepository(),
		sessions:   newMockSessions(),
		tokens:     newMockTokens(),
		signer:     &stubSigner{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewService(env.repository, env.sessions, env.tokens, env.signer, logger)
	return env
}

// seedUser registers an active, verified member with a real bcrypt hash.
func (env *testEnv) seedUser(id, username, password string) *User {
	hash, err := sec.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user := &User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		Role:         sec.RoleMember,
		IsActive:     true,
		IsVerified:   true,
		PasswordHash: hash,
	}
	env.repository.users[id] = user
	return user
}

func adminActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "admin-1", Username: "admin", Role: sec.RoleAdmin}
}

func librarianActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff-1", Username: "librarian", Role: sec.RoleLibrarian}
}

// # Registration

/*
TestRegister_DefaultsToMemberRole verifies the role floor: signup can never
produce a staff account, and the stored credential is a hash.
*/
func TestRegister_DefaultsToMemberRole(t *testing.T) {
	env := newTestEnv()

	user := &User{Username: "Reader_One", Email: "Reader@Example.com"}
	verifyToken, err := env.service.Register(context.Background(), user, "correct horse battery")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleMember, user.Role)
	assert.Equal(t, "reader_one", user.Username, "username is normalised to lowercase")
	assert.Equal(t, "reader@example.com", user.Email)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	// The plaintext token goes to the email; only the hash is stored.
	require.NotEmpty(t, verifyToken)
	assert.Equal(t, user.ID, env.tokens.verify[sec.HashToken(verifyToken)])
}

/*
TestRegister_RejectsShortPassword checks the minimum length rule.
*/
func TestRegister_RejectsShortPassword(t *testing.T) {
	env := newTestEnv()

	user := &User{Username: "reader", Email: "reader@example.com"}
	_, err := env.service.Register(context.Background(), user, "short")
	requireFieldError(t, err, FieldPassword)
}

/*
TestRegister_ConflictOnTakenUsername checks the uniqueness probe.
*/
func TestRegister_ConflictOnTakenUsername(t *testing.T) {
	env := newTestEnv()
	env.repository.takenUsername["reader"] = true

	user := &User{Username: "reader", Email: "reader@example.com"}
	_, err := env.service.Register(context.Background(), user, "a long password")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrCode(err))
}

// # Login

/*
TestLogin_IssuesTokenPair verifies a full credential login: access token
minted, refresh session stored by hash only.
*/
func TestLogin_IssuesTokenPair(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	user, pair, err := env.service.Login(context.Background(), "reader", "a long password", Device{IPAddress: "10.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, "u-1", user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	require.Len(t, env.sessions.created, 1)
	session := env.sessions.created[0]
	assert.Equal(t, sec.HashToken(pair.RefreshToken), session.TokenHash)
	assert.NotEqual(t, pair.RefreshToken, session.TokenHash, "plaintext secret is never persisted")
	assert.Equal(t, "10.0.0.1", session.IPAddress)
}

/*
TestLogin_RejectsWrongPassword ensures bad credentials and unknown accounts
are indistinguishable.
*/
func TestLogin_RejectsWrongPassword(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	_, _, err := env.service.Login(context.Background(), "reader", "wrong password", Device{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrCode(err))

	_, _, err = env.service.Login(context.Background(), "nobody", "wrong password", Device{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrCode(err))
}

/*
TestLogin_RejectsDeactivatedAccount keeps locked accounts out even with the
right password.
*/
func TestLogin_RejectsDeactivatedAccount(t *testing.T) {
	env := newTestEnv()
	user := env.seedUser("u-1", "reader", "a long password")
	user.IsActive = false

	_, _, err := env.service.Login(context.Background(), "reader", "a long password", Device{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrCode(err))
}

// # Refresh Rotation

/*
TestRefresh_RotatesSession verifies strict rotation: the presented session is
revoked and a fresh secret issued.
*/
func TestRefresh_RotatesSession(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	_, first, err := env.service.Login(context.Background(), "reader", "a long password", Device{})
	require.NoError(t, err)

	_, second, err := env.service.Refresh(context.Background(), first.RefreshToken, Device{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Len(t, env.sessions.revoked, 1)
	assert.Len(t, env.sessions.created, 2)
}

/*
TestRefresh_RejectsReplayedToken ensures a rotated-out secret is dead.
*/
func TestRefresh_RejectsReplayedToken(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	_, first, err := env.service.Login(context.Background(), "reader", "a long password", Device{})
	require.NoError(t, err)

	_, _, err = env.service.Refresh(context.Background(), first.RefreshToken, Device{})
	require.NoError(t, err)

	// Replay of the pre-rotation secret
	_, _, err = env.service.Refresh(context.Background(), first.RefreshToken, Device{})
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", appErrCode(err))
}

// # Password Recovery

/*
TestRequestPasswordReset_SilentOnUnknownEmail verifies account enumeration
resistance: unknown addresses answer success with no token.
*/
func TestRequestPasswordReset_SilentOnUnknownEmail(t *testing.T) {
	env := newTestEnv()

	token, err := env.service.RequestPasswordReset(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Empty(t, env.tokens.reset)
}

/*
TestResetPassword_RevokesAllSessions confirms stolen refresh tokens die with
the old credential.
*/
func TestResetPassword_RevokesAllSessions(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	token, err := env.service.RequestPasswordReset(context.Background(), "reader@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, env.service.ResetPassword(context.Background(), token, "a brand new password"))

	assert.NotEmpty(t, env.repository.lastPassword["u-1"])
	assert.Equal(t, []string{"u-1"}, env.sessions.revokedAllUser)

	// Single use: the same token cannot be redeemed twice.
	err = env.service.ResetPassword(context.Background(), token, "yet another password")
	requireFieldError(t, err, FieldToken)
}

/*
TestVerifyEmail_MarksAccountVerified walks the happy verification path.
*/
func TestVerifyEmail_MarksAccountVerified(t *testing.T) {
	env := newTestEnv()

	user := &User{Username: "reader", Email: "reader@example.com"}
	token, err := env.service.Register(context.Background(), user, "a long password")
	require.NoError(t, err)

	require.NoError(t, env.service.VerifyEmail(context.Background(), token))
	assert.Equal(t, []string{user.ID}, env.repository.verified)
}

// # Administration

/*
TestListUsers_RequiresUserManager keeps librarians out of account admin.
*/
func TestListUsers_RequiresUserManager(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.service.ListUsers(context.Background(), librarianActor(), Filter{}, 10, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", appErrCode(err))

	_, _, err = env.service.ListUsers(context.Background(), adminActor(), Filter{}, 10, 0)
	require.NoError(t, err)
}

/*
TestChangeRole_RejectsSelfChange guards the last-admin lockout.
*/
func TestChangeRole_RejectsSelfChange(t *testing.T) {
	env := newTestEnv()
	env.seedUser("admin-1", "admin", "a long password")

	err := env.service.ChangeRole(context.Background(), adminActor(), "admin-1", sec.RoleMember)
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", appErrCode(err))
}

/*
TestChangeRole_PromotesMember walks the grant path.
*/
func TestChangeRole_PromotesMember(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	require.NoError(t, env.service.ChangeRole(context.Background(), adminActor(), "u-1", sec.RoleLibrarian))
	assert.Equal(t, "librarian", env.repository.roleChanges["u-1"])
}

/*
TestToggleActive_RevokesSessionsOnDeactivation verifies the immediate lockout.
*/
func TestToggleActive_RevokesSessionsOnDeactivation(t *testing.T) {
	env := newTestEnv()
	env.seedUser("u-1", "reader", "a long password")

	_, _, err := env.service.Login(context.Background(), "reader", "a long password", Device{})
	require.NoError(t, err)

	state, err := env.service.ToggleActive(context.Background(), adminActor(), "u-1")
	require.NoError(t, err)
	assert.False(t, state)
	assert.Equal(t, []string{"u-1"}, env.sessions.revokedAllUser)

	// Reactivation does not touch sessions again.
	state, err = env.service.ToggleActive(context.Background(), adminActor(), "u-1")
	require.NoError(t, err)
	assert.True(t, state)
	assert.Len(t, env.sessions.revokedAllUser, 1)
}

// # Assertion Helpers

func appErrCode(err error) string {
	ae := apperr.As(err)
	if ae == nil {
		return ""
	}
	return ae.Code
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	require.Equal(t, "VALIDATION_ERROR", ae.Code)
	for _, detail := range ae.Details {
		if detail.Field == field {
			return
		}
	}
	t.Fatalf("expected a field error on %q, got %+v", field, ae.Details)
}
