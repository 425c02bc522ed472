// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/biblio/internal/platform/apperr"
	"github.com/taibuivan/biblio/internal/platform/sec"
)

// # Test Doubles

// mockRepository counts how often the database is actually hit.
type mockRepository struct {
	stats    *Stats
	collects int
}

func (m *mockRepository) CollectStats(_ context.Context) (*Stats, error) {
	m.collects++
	return m.stats, nil
}

// fakeCache is an in-memory stand-in for the Redis client.
type fakeCache struct {
	entries map[string]string
	broken  bool // every operation fails when set
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if c.broken {
		return redis.NewStringResult("", errConnectionDown)
	}
	value, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	if c.broken {
		return redis.NewStatusResult("", errConnectionDown)
	}
	c.entries[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

// errConnectionDown simulates a cache outage.
var errConnectionDown = errors.New("redis: connection refused")

// # Fixtures

func newTestService(repository *mockRepository, cache Cache) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repository, cache, logger)
}

func staffActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "staff-1", Username: "librarian", Role: sec.RoleLibrarian}
}

func memberActor() *sec.AuthClaims {
	return &sec.AuthClaims{UserID: "member-1", Username: "reader", Role: sec.RoleMember}
}

// # Tests

/*
TestGetStats_CachesCollectedCounters verifies the second call is served from
the cache without touching the database.
*/
func TestGetStats_CachesCollectedCounters(t *testing.T) {
	repository := &mockRepository{stats: &Stats{TotalBooks: 42, TotalUsers: 7}}
	service := newTestService(repository, newFakeCache())

	first, err := service.GetStats(context.Background(), staffActor())
	require.NoError(t, err)
	assert.Equal(t, int64(42), first.TotalBooks)

	second, err := service.GetStats(context.Background(), staffActor())
	require.NoError(t, err)
	assert.Equal(t, int64(42), second.TotalBooks)
	assert.Equal(t, int64(7), second.TotalUsers)

	assert.Equal(t, 1, repository.collects, "second call must be a cache hit")
}

/*
TestGetStats_RejectsMember keeps readers out of the staff dashboard.
*/
func TestGetStats_RejectsMember(t *testing.T) {
	service := newTestService(&mockRepository{stats: &Stats{}}, newFakeCache())

	_, err := service.GetStats(context.Background(), memberActor())
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "FORBIDDEN", ae.Code)
}

/*
TestGetStats_RejectsAnonymous requires authentication.
*/
func TestGetStats_RejectsAnonymous(t *testing.T) {
	service := newTestService(&mockRepository{stats: &Stats{}}, newFakeCache())

	_, err := service.GetStats(context.Background(), nil)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "UNAUTHORIZED", ae.Code)
}

/*
TestGetStats_SurvivesCacheOutage verifies the degrade path: counters are
collected directly when Redis is unavailable.
*/
func TestGetStats_SurvivesCacheOutage(t *testing.T) {
	repository := &mockRepository{stats: &Stats{TotalBooks: 3}}
	cache := newFakeCache()
	cache.broken = true
	service := newTestService(repository, cache)

	stats, err := service.GetStats(context.Background(), staffActor())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBooks)
	assert.Equal(t, 1, repository.collects)
}
