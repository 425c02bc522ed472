// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// Repository defines the data access contract for user accounts.
type Repository interface {

	/*
		List returns a filtered, paginated slice of accounts and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search term, role, visibility)
		  - limit: int
		  - offset: int

		Returns:
		  - []*User: Slice of matching accounts
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*User, int, error)

	/*
		FindByID returns the account with the given UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *User: The hydrated account
		  - error: ErrNotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByLogin returns the account matching a username OR email.

		Parameters:
		  - context: context.Context
		  - login: string (Username or email, matched case-insensitively)

		Returns:
		  - *User: The hydrated account including the password hash
		  - error: ErrNotFound if missing
	*/
	FindByLogin(context context.Context, login string) (*User, error)

	/*
		UsernameExists reports whether a username is already registered.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	UsernameExists(context context.Context, username string) (bool, error)

	/*
		EmailExists reports whether an email is already registered.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - bool: true if taken
		  - error: Query failure
	*/
	EmailExists(context context.Context, email string) (bool, error)

	/*
		Create persists a new account.

		Parameters:
		  - context: context.Context
		  - user: *User (ID, credentials, role)

		Returns:
		  - error: CONFLICT on unique violations, storage failures otherwise
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateProfile persists changes to the mutable profile fields.

		Parameters:
		  - context: context.Context
		  - user: *User (Target ID, DisplayName, Email)

		Returns:
		  - error: ErrNotFound if missing, storage failures otherwise
	*/
	UpdateProfile(context context.Context, user *User) error

	/*
		UpdatePassword replaces the stored credential hash.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - passwordHash: string (bcrypt)

		Returns:
		  - error: ErrNotFound if missing
	*/
	UpdatePassword(context context.Context, id, passwordHash string) error

	/*
		MarkVerified stamps the account's email as confirmed.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: ErrNotFound if missing
	*/
	MarkVerified(context context.Context, id string) error

	/*
		TouchLastLogin stamps the successful-login timestamp.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - error: Execution failures
	*/
	TouchLastLogin(context context.Context, id string) error

	/*
		SetRole changes an account's role.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)
		  - role: sec.Role (validated by the service)

		Returns:
		  - error: ErrNotFound if missing
	*/
	SetRole(context context.Context, id, role string) error

	/*
		ToggleActive flips the account's active flag and returns the new state.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - bool: The state after the flip
		  - error: ErrNotFound if missing
	*/
	ToggleActive(context context.Context, id string) (bool, error)
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh sessions.
type SessionRepository interface {

	/*
		Create persists a new refresh session.

		Parameters:
		  - context: context.Context
		  - session: *Session (UserID, TokenHash, device metadata, expiry)

		Returns:
		  - error: Storage failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the live session owning the hashed secret.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)

		Returns:
		  - *Session: The matching grant
		  - error: ErrNotFound if missing, revoked, or expired
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Revoke marks a single session as revoked.

		Parameters:
		  - context: context.Context
		  - id: string (Session UUID)

		Returns:
		  - error: ErrNotFound if missing or already revoked
	*/
	Revoke(context context.Context, id string) error

	/*
		RevokeAllForUser revokes every live session of a user. Used after a
		password reset so stolen refresh tokens die with the old credential.

		Parameters:
		  - context: context.Context
		  - userID: string (UUID)

		Returns:
		  - error: Execution failures
	*/
	RevokeAllForUser(context context.Context, userID string) error

	/*
		DeleteExpired removes sessions past their expiry. Housekeeping.

		Parameters:
		  - context: context.Context
		  - olderThan: time.Time (Expiry cutoff)

		Returns:
		  - int64: Rows removed
		  - error: Execution failures
	*/
	DeleteExpired(context context.Context, olderThan time.Time) (int64, error)
}

// # Recovery Token Storage

// TokenStore holds short-lived, single-use recovery tokens (password reset,
// email verification) in volatile storage with automatic expiry.
type TokenStore interface {

	/*
		SaveResetToken stores a hashed password-reset token for a user.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)
		  - userID: string (UUID)
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	SaveResetToken(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		ConsumeResetToken atomically fetches and deletes a reset token.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)

		Returns:
		  - string: The user UUID the token was issued for
		  - error: ErrNotFound if missing or expired
	*/
	ConsumeResetToken(context context.Context, tokenHash string) (string, error)

	/*
		SaveVerifyToken stores a hashed email-verification token for a user.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)
		  - userID: string (UUID)
		  - ttl: time.Duration

		Returns:
		  - error: Storage failures
	*/
	SaveVerifyToken(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		ConsumeVerifyToken atomically fetches and deletes a verification token.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (SHA-256 hex)

		Returns:
		  - string: The user UUID the token was issued for
		  - error: ErrNotFound if missing or expired
	*/
	ConsumeVerifyToken(context context.Context, tokenHash string) (string, error)
}
