// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/dberr"
)

// # Redis Token Store

// tokenStore implements the [TokenStore] interface on Redis.
//
// Recovery tokens are keyed by their SHA-256 digest and carry the target
// user's UUID as value; Redis expiry does the housekeeping.
type tokenStore struct {
	client *redis.Client
}

// NewTokenStore constructs a Redis backed recovery token store.
func NewTokenStore(client *redis.Client) TokenStore {
	return &tokenStore{client: client}
}

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
func (store *tokenStore) SaveResetToken(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	return store.save(context, constants.RedisPrefixResetToken+tokenHash, userID, ttl)
}

/*
ConsumeResetToken atomically fetches and deletes a reset token.

Parameters:
  - context: context.Context
  - tokenHash: string (SHA-256 hex)

Returns:
  - string: The user UUID the token was issued for
  - error: ErrNotFound if missing or expired
*/
func (store *tokenStore) ConsumeResetToken(context context.Context, tokenHash string) (string, error) {
	return store.consume(context, constants.RedisPrefixResetToken+tokenHash)
}

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
func (store *tokenStore) SaveVerifyToken(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	return store.save(context, constants.RedisPrefixVerifyToken+tokenHash, userID, ttl)
}

/*
ConsumeVerifyToken atomically fetches and deletes a verification token.

Parameters:
  - context: context.Context
  - tokenHash: string (SHA-256 hex)

Returns:
  - string: The user UUID the token was issued for
  - error: ErrNotFound if missing or expired
*/
func (store *tokenStore) ConsumeVerifyToken(context context.Context, tokenHash string) (string, error) {
	return store.consume(context, constants.RedisPrefixVerifyToken+tokenHash)
}

// save writes the token entry with its expiry.
func (store *tokenStore) save(context context.Context, key, userID string, ttl time.Duration) error {
	if err := store.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to save recovery token: %w", err)
	}
	return nil
}

// consume fetches and deletes in one round trip so a token can never be
// redeemed twice, even by racing requests.
func (store *tokenStore) consume(context context.Context, key string) (string, error) {
	userID, err := store.client.GetDel(context, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", dberr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: failed to consume recovery token: %w", err)
	}
	return userID, nil
}
