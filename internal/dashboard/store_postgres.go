// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/database/schema"
)

// statsRepository implements the [Repository] interface using pgx.
type statsRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed stats store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &statsRepository{pool: pool}
}

/*
CollectStats gathers all counters in one database round trip.

Description: Each counter is a scalar subquery, so the whole panel costs a
single statement. Soft-deleted rows are excluded everywhere.

Parameters:
  - context: context.Context

Returns:
  - *Stats: The freshly collected counters
  - error: Database execution errors
*/
func (repository *statsRepository) CollectStats(context context.Context) (*Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			(SELECT COUNT(*) FROM %[1]s WHERE %[2]s IS NULL),
			(SELECT COUNT(*) FROM %[1]s WHERE %[2]s IS NULL AND %[3]s = TRUE),
			(SELECT COUNT(*) FROM %[1]s WHERE %[2]s IS NULL AND %[4]s = TRUE),
			(SELECT COUNT(*) FROM %[5]s WHERE %[6]s IS NULL),
			(SELECT COUNT(*) FROM %[7]s WHERE %[8]s IS NULL),
			(SELECT COUNT(*) FROM %[9]s WHERE %[10]s IS NULL),
			(SELECT COUNT(*) FROM %[11]s),
			(SELECT COUNT(*) FROM %[12]s WHERE %[13]s IS NULL),
			(SELECT COUNT(*) FROM %[12]s WHERE %[13]s IS NULL AND %[14]s = TRUE),
			(SELECT COUNT(*) FROM %[12]s WHERE %[13]s IS NULL AND %[15]s = TRUE),
			(SELECT COUNT(*) FROM %[12]s WHERE %[13]s IS NULL AND %[16]s > NOW() - INTERVAL '30 days')
	`,
		schema.CatalogBook.Table, schema.CatalogBook.DeletedAt,
		schema.CatalogBook.IsActive, schema.CatalogBook.IsFeatured,
		schema.CatalogCategory.Table, schema.CatalogCategory.DeletedAt,
		schema.CatalogContributor.Table, schema.CatalogContributor.DeletedAt,
		schema.CatalogPublisher.Table, schema.CatalogPublisher.DeletedAt,
		schema.CatalogLanguage.Table,
		schema.UserAccount.Table, schema.UserAccount.DeletedAt,
		schema.UserAccount.IsActive, schema.UserAccount.IsVerified,
		schema.UserAccount.CreatedAt,
	)

	stats := &Stats{GeneratedAt: time.Now().UTC()}
	err := repository.pool.QueryRow(context, query).Scan(
		&stats.TotalBooks,
		&stats.ActiveBooks,
		&stats.FeaturedBooks,
		&stats.TotalCategories,
		&stats.TotalContributors,
		&stats.TotalPublishers,
		&stats.TotalLanguages,
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.VerifiedUsers,
		&stats.NewUsersThisMonth,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to collect dashboard stats: %w", err)
	}

	return stats, nil
}
