// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/constants"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// Cache abstracts the Redis operations the service needs. Satisfied by
// [*redis.Client]; defined here so tests can inject an in-memory stub.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// # Service Layer

// Service serves the admin panel counters with a short-lived cache in front.
type Service struct {
	repository Repository
	cache      Cache
	logger     *slog.Logger
}

// NewService constructs a new dashboard [Service] with its dependencies.
func NewService(repository Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

/*
GetStats returns the dashboard counters, cached for up to
[constants.DashboardStatsTTL].

Description: On a cache miss the counters are collected fresh and written
back. Cache failures degrade to a direct collection rather than an error;
the dashboard must stay up when Redis is down.

Parameters:
  - context: context.Context
  - actor: *sec.AuthClaims (Must hold the dashboard capability)

Returns:
  - *Stats: The counters, possibly up to the TTL stale
  - error: FORBIDDEN or database errors
*/
func (service *Service) GetStats(context context.Context, actor *sec.AuthClaims) (*Stats, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	if !actor.Role.CanViewDashboard() {
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	// Cache probe
	cached, err := service.cache.Get(context, constants.RedisPrefixStats).Result()
	if err == nil {
		stats := &Stats{}
		if err := json.Unmarshal([]byte(cached), stats); err == nil {
			return stats, nil
		}
		// Corrupt entry; fall through to a fresh collection.
	} else if !errors.Is(err, redis.Nil) {
		service.logger.Warn("dashboard_cache_read_failed", slog.String("error", err.Error()))
	}

	stats, err := service.repository.CollectStats(context)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(stats); err == nil {
		if err := service.cache.Set(context, constants.RedisPrefixStats, encoded, constants.DashboardStatsTTL).Err(); err != nil {
			service.logger.Warn("dashboard_cache_write_failed", slog.String("error", err.Error()))
		}
	}

	return stats, nil
}
