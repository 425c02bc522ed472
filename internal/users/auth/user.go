// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth manages member accounts and the authentication lifecycle.

It covers registration, credential login, refresh token rotation, email
verification, and password recovery. Access tokens are stateless JWTs;
refresh tokens are opaque secrets whose hashes live in the session table so
they can be revoked server-side.
*/
package auth

import (
	"time"

	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Core Entities

// User is a registered member or staff account.
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name,omitempty"`
	Role        sec.Role `json:"role"`
	IsVerified  bool     `json:"is_verified"`
	IsActive    bool     `json:"is_active"`

	// PasswordHash never crosses the JSON boundary.
	PasswordHash string `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"` // nil = active; non-nil = soft-deleted
}

// Session is one refresh-token grant for a user on one device.
//
// Only the SHA-256 hash of the refresh token is stored; the plaintext is
// handed to the client exactly once.
type Session struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	TokenHash  string     `json:"-"`
	DeviceName string     `json:"device_name,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IsRevoked  bool       `json:"is_revoked"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TokenPair is the result of a successful login or refresh rotation.
type TokenPair struct {
	AccessToken string `json:"access_token"`
	// RefreshToken is the opaque plaintext secret; the handler moves it
	// into an HttpOnly cookie and never echoes it in the JSON body.
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// # Search & Filtering

// Filter holds the parameters for the staff user listing.
type Filter struct {
	Query      string   `json:"q,omitempty"` // Username/email search term
	Role       sec.Role `json:"role,omitempty"`
	OnlyActive bool     `json:"only_active,omitempty"`
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldRole        = "role"
	FieldToken       = "token"
)
