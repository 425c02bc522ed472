// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Token Lifetimes

const (
	// AccessTokenTTL keeps the stateless window short; revocation only
	// bites on the next refresh.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL bounds how long an idle device stays signed in.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// ResetTokenTTL bounds the password recovery window.
	ResetTokenTTL = 30 * time.Minute

	// VerifyTokenTTL bounds the email verification window.
	VerifyTokenTTL = 24 * time.Hour
)

// # Token Entropy

const (
	// RefreshTokenBytes is the entropy of the opaque refresh secret.
	RefreshTokenBytes = 32

	// RecoveryTokenBytes is the entropy of reset and verify tokens.
	RecoveryTokenBytes = 32
)

// # Credential Policy

const (
	// MinPasswordLength follows the bcrypt-era baseline; complexity rules
	// are intentionally not enforced.
	MinPasswordLength = 8

	MinUsernameLength = 3
	MaxUsernameLength = 30
)
