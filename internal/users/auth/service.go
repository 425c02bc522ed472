// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/dberr"
	"github.com/taibuivan/biblio/internal/platform/sec"
	"github.com/taibuivan/biblio/internal/platform/validate"
)

// usernameRegex restricts usernames to URL- and mention-safe characters.
var usernameRegex = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// Device carries the per-request client metadata stamped onto sessions.
type Device struct {
	Name      string
	IPAddress string
	UserAgent string
}

// AccessTokenSigner mints signed access tokens. Satisfied by
// [*sec.TokenService]; defined here so tests can inject a stub without
// provisioning RSA key files.
type AccessTokenSigner interface {
	GenerateAccessToken(userID, username string, role sec.Role, timeToLive time.Duration) (string, error)
}

// # Service Layer

// Service orchestrates registration, login, and the token lifecycle.
type Service struct {
	repository Repository
	sessions   SessionRepository
	tokens     TokenStore
	signer     AccessTokenSigner
	logger     *slog.Logger
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(repository Repository, sessions SessionRepository, tokens TokenStore, signer AccessTokenSigner, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		sessions:   sessions,
		tokens:     tokens,
		signer:     signer,
		logger:     logger,
	}
}

// # Registration

/*
Register creates a new member account and issues its email verification token.

Description: New accounts always start with the member role; staff roles are
granted later by an administrator. The returned string is the PLAINTEXT
verification token, ready to be embedded in the verification email.

Parameters:
  - context: context.Context
  - user: *User (Username, Email, DisplayName)
  - password: string (Plaintext, hashed here)

Returns:
  - string: Plaintext email verification token
  - error: Validation, CONFLICT on taken identifiers, or persistence errors
*/
func (service *Service) Register(context context.Context, user *User, password string) (string, error) {
	user.Username = strings.TrimSpace(strings.ToLower(user.Username))
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))

	validator := &validate.Validator{}
	validator.Required(FieldUsername, user.Username).
		MinLen(FieldUsername, user.Username, MinUsernameLength).
		MaxLen(FieldUsername, user.Username, MaxUsernameLength).
		Custom(FieldUsername, user.Username != "" && !usernameRegex.MatchString(user.Username),
			"Only lowercase letters, digits, dots, hyphens, and underscores are allowed")
	validator.Required(FieldEmail, user.Email).Email(FieldEmail, user.Email)
	validator.Required(FieldPassword, password).MinLen(FieldPassword, password, MinPasswordLength)
	validator.MaxLen(FieldDisplayName, user.DisplayName, 100)
	if err := validator.Err(); err != nil {
		return "", err
	}

	// Uniqueness probes before the expensive bcrypt work
	if taken, err := service.repository.UsernameExists(context, user.Username); err != nil {
		return "", err
	} else if taken {
		return "", apperr.Conflict("Username is already taken")
	}
	if taken, err := service.repository.EmailExists(context, user.Email); err != nil {
		return "", err
	} else if taken {
		return "", apperr.Conflict("Email is already registered")
	}

	passwordHash, err := sec.HashPassword(password)
	if err != nil {
		return "", apperr.Internal(err)
	}

	user.ID = uuid.New().String()
	user.Role = sec.RoleMember
	user.IsActive = true
	user.IsVerified = false
	user.PasswordHash = passwordHash

	if err := service.repository.Create(context, user); err != nil {
		return "", err
	}

	// Verification token: plaintext goes to the email, only the hash is stored
	verifyToken, err := sec.GenerateSecureToken(RecoveryTokenBytes)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if err := service.tokens.SaveVerifyToken(context, sec.HashToken(verifyToken), user.ID, VerifyTokenTTL); err != nil {
		return "", err
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return verifyToken, nil
}

/*
VerifyEmail redeems a verification token and marks the account confirmed.

Parameters:
  - context: context.Context
  - token: string (Plaintext token from the email link)

Returns:
  - error: VALIDATION_ERROR on an unknown or expired token
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	if token == "" {
		return validate.RequiredError(FieldToken, "This field is required")
	}

	userID, err := service.tokens.ConsumeVerifyToken(context, sec.HashToken(token))
	if dberr.IsNotFound(err) {
		return validate.RequiredError(FieldToken, "Invalid or expired verification token")
	}
	if err != nil {
		return err
	}

	if err := service.repository.MarkVerified(context, userID); err != nil {
		return err
	}

	service.logger.Info("user_email_verified", slog.String("user_id", userID))
	return nil
}

// # Login & Token Lifecycle

/*
Login verifies credentials and issues a fresh token pair.

Description: The login identifier may be a username or an email. Failures are
deliberately indistinguishable (unknown account vs wrong password) so the
endpoint cannot be used to enumerate accounts.

Parameters:
  - context: context.Context
  - login: string (Username or email)
  - password: string
  - device: Device (Client metadata stamped onto the session)

Returns:
  - *User: The authenticated account
  - *TokenPair: Access JWT and plaintext refresh secret
  - error: UNAUTHORIZED on bad credentials or a deactivated account
*/
func (service *Service) Login(context context.Context, login, password string, device Device) (*User, *TokenPair, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, login)
	validator.Required(FieldPassword, password)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	user, err := service.repository.FindByLogin(context, strings.TrimSpace(strings.ToLower(login)))
	if dberr.IsNotFound(err) {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, nil, err
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, apperr.Unauthorized("Invalid credentials")
	}

	if !user.IsActive {
		return nil, nil, apperr.Unauthorized("Account is deactivated")
	}

	pair, err := service.issueTokens(context, user, device)
	if err != nil {
		return nil, nil, err
	}

	if err := service.repository.TouchLastLogin(context, user.ID); err != nil {
		// Non-fatal: the login itself succeeded.
		service.logger.Warn("user_last_login_stamp_failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("user_logged_in",
		slog.String("user_id", user.ID),
		slog.String("ip", device.IPAddress),
	)

	return user, pair, nil
}

/*
Refresh rotates a refresh token and issues a fresh token pair.

Description: Rotation is strict: the presented session is revoked and a new
one created, so every refresh secret is single-use. A replayed token resolves
to a revoked session and fails with 401.

Parameters:
  - context: context.Context
  - refreshToken: string (Plaintext secret from the cookie)
  - device: Device

Returns:
  - *User: The session owner
  - *TokenPair: The rotated pair
  - error: UNAUTHORIZED on unknown, revoked, or expired sessions
*/
func (service *Service) Refresh(context context.Context, refreshToken string, device Device) (*User, *TokenPair, error) {
	if refreshToken == "" {
		return nil, nil, apperr.Unauthorized("Missing refresh token")
	}

	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if dberr.IsNotFound(err) {
		return nil, nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, nil, err
	}

	user, err := service.repository.FindByID(context, session.UserID)
	if dberr.IsNotFound(err) {
		return nil, nil, apperr.Unauthorized("Invalid refresh token")
	}
	if err != nil {
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, apperr.Unauthorized("Account is deactivated")
	}

	// Rotation: the old grant dies before the new one is born
	if err := service.sessions.Revoke(context, session.ID); err != nil && !dberr.IsNotFound(err) {
		return nil, nil, err
	}

	pair, err := service.issueTokens(context, user, device)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

/*
Logout revokes the session owning the presented refresh token.

Description: Always succeeds from the client's perspective; an unknown token
means there is nothing left to revoke.

Parameters:
  - context: context.Context
  - refreshToken: string (Plaintext secret from the cookie)

Returns:
  - error: Persistence errors only
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if dberr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := service.sessions.Revoke(context, session.ID); err != nil && !dberr.IsNotFound(err) {
		return err
	}

	service.logger.Info("user_logged_out", slog.String("user_id", session.UserID))
	return nil
}

// issueTokens mints the access JWT and a new refresh session for the user.
func (service *Service) issueTokens(context context.Context, user *User, device Device) (*TokenPair, error) {
	accessToken, err := service.signer.GenerateAccessToken(user.ID, user.Username, user.Role, AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshSecret, err := sec.GenerateSecureToken(RefreshTokenBytes)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	session := &Session{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		TokenHash:  sec.HashToken(refreshSecret),
		DeviceName: device.Name,
		IPAddress:  device.IPAddress,
		UserAgent:  device.UserAgent,
		ExpiresAt:  time.Now().Add(RefreshTokenTTL),
	}
	if err := service.sessions.Create(context, session); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshSecret,
		ExpiresAt:    time.Now().Add(AccessTokenTTL),
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset issues a reset token for the given email.

Description: Returns an empty token WITHOUT error when the email is unknown,
so the endpoint reveals nothing about which addresses are registered. The
caller only sends the recovery email when the token is non-empty.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Plaintext reset token, or "" for unknown addresses
  - error: Persistence errors only
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return "", err
	}

	user, err := service.repository.FindByLogin(context, strings.TrimSpace(strings.ToLower(email)))
	if dberr.IsNotFound(err) {
		// Silent success; do not leak registration status.
		return "", nil
	}
	if err != nil {
		return "", err
	}

	resetToken, err := sec.GenerateSecureToken(RecoveryTokenBytes)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if err := service.tokens.SaveResetToken(context, sec.HashToken(resetToken), user.ID, ResetTokenTTL); err != nil {
		return "", err
	}

	service.logger.Info("password_reset_requested", slog.String("user_id", user.ID))
	return resetToken, nil
}

/*
ResetPassword redeems a reset token and replaces the credential.

Description: Every live session of the user is revoked afterwards, so refresh
tokens stolen alongside the old password die with it.

Parameters:
  - context: context.Context
  - token: string (Plaintext token from the recovery email)
  - newPassword: string

Returns:
  - error: VALIDATION_ERROR on an unknown or expired token
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required(FieldToken, token)
	validator.Required(FieldPassword, newPassword).MinLen(FieldPassword, newPassword, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	userID, err := service.tokens.ConsumeResetToken(context, sec.HashToken(token))
	if dberr.IsNotFound(err) {
		return validate.RequiredError(FieldToken, "Invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := service.repository.UpdatePassword(context, userID, passwordHash); err != nil {
		return err
	}

	if err := service.sessions.RevokeAllForUser(context, userID); err != nil {
		return err
	}

	service.logger.Warn("password_reset_completed", slog.String("user_id", userID))
	return nil
}

/*
ChangePassword replaces the credential for a signed-in user.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The signed-in user)
  - currentPassword: string
  - newPassword: string

Returns:
  - error: UNAUTHORIZED on a wrong current password, validation errors
*/
func (service *Service) ChangePassword(context context.Context, actor *sec.AuthClaims, currentPassword, newPassword string) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}

	validator := &validate.Validator{}
	validator.Required(FieldPassword, newPassword).MinLen(FieldPassword, newPassword, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.repository.FindByID(context, actor.UserID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	passwordHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}

	if err := service.repository.UpdatePassword(context, user.ID, passwordHash); err != nil {
		return err
	}

	// Other devices re-authenticate with the new credential.
	if err := service.sessions.RevokeAllForUser(context, user.ID); err != nil {
		return err
	}

	service.logger.Info("password_changed", slog.String("user_id", user.ID))
	return nil
}

// # Profile

/*
GetUser retrieves a single account by its UUID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: The hydrated account
  - error: NOT_FOUND if missing
*/
func (service *Service) GetUser(context context.Context, id string) (*User, error) {
	return service.repository.FindByID(context, id)
}

/*
UpdateProfile applies changes to the signed-in user's profile.

Description: An email change drops the verified flag and issues a fresh
verification token; the returned string is empty when the email is unchanged.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (The signed-in user)
  - patch: *User (DisplayName and/or Email)

Returns:
  - *User: The updated account
  - string: Plaintext verification token for a changed email, or ""
  - error: Validation, CONFLICT on a taken email, or persistence errors
*/
func (service *Service) UpdateProfile(context context.Context, actor *sec.AuthClaims, patch *User) (*User, string, error) {
	if actor == nil {
		return nil, "", apperr.Unauthorized("Authentication required")
	}

	existing, err := service.repository.FindByID(context, actor.UserID)
	if err != nil {
		return nil, "", err
	}

	patch.ID = existing.ID
	patch.Email = strings.TrimSpace(strings.ToLower(patch.Email))

	validator := &validate.Validator{}
	validator.MaxLen(FieldDisplayName, patch.DisplayName, 100)
	if patch.Email != "" {
		validator.Email(FieldEmail, patch.Email)
	}
	if err := validator.Err(); err != nil {
		return nil, "", err
	}

	// Unchanged email is a no-op, not a conflict
	if patch.Email == existing.Email {
		patch.Email = ""
	}
	if patch.Email != "" {
		if taken, err := service.repository.EmailExists(context, patch.Email); err != nil {
			return nil, "", err
		} else if taken {
			return nil, "", apperr.Conflict("Email is already registered")
		}
	}

	if err := service.repository.UpdateProfile(context, patch); err != nil {
		return nil, "", err
	}

	var verifyToken string
	if patch.Email != "" {
		verifyToken, err = sec.GenerateSecureToken(RecoveryTokenBytes)
		if err != nil {
			return nil, "", apperr.Internal(err)
		}
		if err := service.tokens.SaveVerifyToken(context, sec.HashToken(verifyToken), existing.ID, VerifyTokenTTL); err != nil {
			return nil, "", err
		}
	}

	updated, err := service.repository.FindByID(context, existing.ID)
	if err != nil {
		return nil, "", err
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", existing.ID))
	return updated, verifyToken, nil
}

// # Account Administration

/*
ListUsers retrieves a paginated, filtered account listing. Staff only.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the user management capability)
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*User: Matching accounts
  - int: Total count matching the filter
  - error: FORBIDDEN or repository errors
*/
func (service *Service) ListUsers(context context.Context, actor *sec.AuthClaims, filter Filter, limit, offset int) ([]*User, int, error) {
	if err := requireUserManager(actor); err != nil {
		return nil, 0, err
	}
	return service.repository.List(context, filter, limit, offset)
}

/*
ChangeRole grants a different role to an account.

Description: Administrators cannot demote themselves; that guard keeps the
system from losing its last admin through a misclick.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the user management capability)
  - userID: string (Target UUID)
  - role: sec.Role

Returns:
  - error: FORBIDDEN, BUSINESS_RULE on self-demotion, validation errors
*/
func (service *Service) ChangeRole(context context.Context, actor *sec.AuthClaims, userID string, role sec.Role) error {
	if err := requireUserManager(actor); err != nil {
		return err
	}

	if !role.IsValid() {
		return validate.RequiredError(FieldRole, "Unknown role")
	}

	if actor.UserID == userID {
		return apperr.BusinessRule("You cannot change your own role")
	}

	if err := service.repository.SetRole(context, userID, string(role)); err != nil {
		return err
	}

	service.logger.Warn("user_role_changed",
		slog.String("user_id", userID),
		slog.String("role", string(role)),
		slog.String("actor_id", actor.UserID),
	)
	return nil
}

/*
ToggleActive flips an account's active flag.

Description: Deactivation also revokes every live session, so the account is
locked out immediately instead of at access token expiry.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the user management capability)
  - userID: string (Target UUID)

Returns:
  - bool: The state after the flip
  - error: FORBIDDEN, BUSINESS_RULE on self-deactivation
*/
func (service *Service) ToggleActive(context context.Context, actor *sec.AuthClaims, userID string) (bool, error) {
	if err := requireUserManager(actor); err != nil {
		return false, err
	}

	if actor.UserID == userID {
		return false, apperr.BusinessRule("You cannot deactivate your own account")
	}

	state, err := service.repository.ToggleActive(context, userID)
	if err != nil {
		return false, err
	}

	if !state {
		if err := service.sessions.RevokeAllForUser(context, userID); err != nil {
			return false, err
		}
	}

	service.logger.Warn("user_active_toggled",
		slog.String("user_id", userID),
		slog.Bool("is_active", state),
		slog.String("actor_id", actor.UserID),
	)
	return state, nil
}

// # Internal Helpers

// requireUserManager gates account administration on the actor's capability.
func requireUserManager(actor *sec.AuthClaims) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !actor.Role.CanManageUsers() {
		return apperr.Forbidden("Insufficient permissions")
	}
	return nil
}
