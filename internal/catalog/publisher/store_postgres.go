// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/database/schema"
	"github.com/taibuivan/biblio/internal/platform/dberr"
)

// # PostgreSQL Repository

// publisherRepository implements the [Repository] interface using pgx.
type publisherRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed publisher store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &publisherRepository{pool: pool}
}

// coreColumns lists the publisher columns selected by every read query, aliased to "h".
func coreColumns() string {
	cols := []string{
		schema.CatalogPublisher.ID,
		schema.CatalogPublisher.Name,
		schema.CatalogPublisher.Slug,
		schema.CatalogPublisher.Description,
		schema.CatalogPublisher.Website,
		schema.CatalogPublisher.IsActive,
		schema.CatalogPublisher.CreatedAt,
		schema.CatalogPublisher.UpdatedAt,
		schema.CatalogPublisher.DeletedAt,
	}
	return "h." + strings.Join(cols, ", h.")
}

// bookCountSubquery counts the live books referencing the house.
func bookCountSubquery() string {
	return fmt.Sprintf(`(
			SELECT COUNT(*)
			FROM %s b
			WHERE b.%s = h.%s AND b.%s IS NULL
		)`,
		schema.CatalogBook.Table,
		schema.CatalogBook.PublisherID, schema.CatalogPublisher.ID,
		schema.CatalogBook.DeletedAt,
	)
}

// scanCore maps the shared column set into a [Publisher].
func scanCore(row pgx.Row, house *Publisher, extras ...any) error {
	targets := []any{
		&house.ID,
		&house.Name,
		&house.Slug,
		&house.Description,
		&house.Website,
		&house.IsActive,
		&house.CreatedAt,
		&house.UpdatedAt,
		&house.DeletedAt,
	}
	targets = append(targets, extras...)
	return row.Scan(targets...)
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of publishers and the total count.

Parameters:
  - context: context.Context
  - filter: Filter (Name search, visibility)
  - limit: int
  - offset: int

Returns:
  - []*Publisher: Slice of matching houses
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *publisherRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Publisher, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count,
			%s AS book_count
		FROM %s h
		WHERE h.%s IS NULL
	`,
		coreColumns(),
		bookCountSubquery(),
		schema.CatalogPublisher.Table,
		schema.CatalogPublisher.DeletedAt,
	))

	// Visibility scoping (public surface)
	if filter.OnlyActive {
		queryBuilder.WriteString(fmt.Sprintf(" AND h.%s = TRUE", schema.CatalogPublisher.IsActive))
	}

	// Name search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND h.%s ILIKE $%d", schema.CatalogPublisher.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY h.%s ASC", schema.CatalogPublisher.Name))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list publishers: %w", err)
	}
	defer rows.Close()

	var publishers []*Publisher
	var totalCount int

	for rows.Next() {
		house := &Publisher{}
		if err := scanCore(rows, house, &totalCount, &house.BookCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan publisher: %w", err)
		}
		publishers = append(publishers, house)
	}

	return publishers, totalCount, nil
}

/*
FindByID retrieves a publisher by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Publisher: The hydrated entity including its book count
  - error: NOT_FOUND if missing or soft-deleted
*/
func (repository *publisherRepository) FindByID(context context.Context, id int64) (*Publisher, error) {
	return repository.findByColumn(context, schema.CatalogPublisher.ID, id)
}

/*
FindBySlug retrieves a publisher using its unique SEO URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Publisher: The hydrated entity including its book count
  - error: NOT_FOUND if missing
*/
func (repository *publisherRepository) FindBySlug(context context.Context, slug string) (*Publisher, error) {
	return repository.findByColumn(context, schema.CatalogPublisher.Slug, slug)
}

// findByColumn is the shared single-row lookup behind FindByID/FindBySlug.
func (repository *publisherRepository) findByColumn(context context.Context, column string, value any) (*Publisher, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			%s AS book_count
		FROM %s h
		WHERE h.%s = $1 AND h.%s IS NULL
	`,
		coreColumns(),
		bookCountSubquery(),
		schema.CatalogPublisher.Table,
		column, schema.CatalogPublisher.DeletedAt,
	)

	house := &Publisher{}
	row := repository.pool.QueryRow(context, query, value)
	if err := scanCore(row, house, &house.BookCount); err != nil {
		return nil, dberr.Wrap(err, "find publisher")
	}

	return house, nil
}

/*
SlugExists reports whether a slug is already registered to another live house.

Parameters:
  - context: context.Context
  - slug: string (Candidate)
  - excludeID: int64 (Record to ignore, zero on create)

Returns:
  - bool: true if another record owns the slug
  - error: Query failures
*/
func (repository *publisherRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogPublisher.Table, schema.CatalogPublisher.Slug, schema.CatalogPublisher.DeletedAt,
	))

	args := []any{slug}
	if excludeID != 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s <> $2", schema.CatalogPublisher.ID))
		args = append(args, excludeID)
	}
	queryBuilder.WriteString(")")

	var exists bool
	if err := repository.pool.QueryRow(context, queryBuilder.String(), args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to probe publisher slug: %w", err)
	}
	return exists, nil
}

/*
Create persists a new publisher and backfills the generated ID.

Parameters:
  - context: context.Context
  - house: *Publisher

Returns:
  - error: CONFLICT on unique violations, execution errors otherwise
*/
func (repository *publisherRepository) Create(context context.Context, house *Publisher) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s, %s
	`,
		schema.CatalogPublisher.Table,
		schema.CatalogPublisher.Name, schema.CatalogPublisher.Slug, schema.CatalogPublisher.Description,
		schema.CatalogPublisher.Website, schema.CatalogPublisher.IsActive,
		schema.CatalogPublisher.ID, schema.CatalogPublisher.CreatedAt, schema.CatalogPublisher.UpdatedAt,
	)

	row := repository.pool.QueryRow(context, query,
		house.Name, house.Slug, house.Description, house.Website, house.IsActive)

	if err := row.Scan(&house.ID, &house.CreatedAt, &house.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create publisher")
	}
	return nil
}

/*
Update persists modifications to an existing publisher.

Parameters:
  - context: context.Context
  - house: *Publisher (Target ID and updated fields)

Returns:
  - error: NOT_FOUND if the target does not exist, CONFLICT on unique
    violations, otherwise execution errors
*/
func (repository *publisherRepository) Update(context context.Context, house *Publisher) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CatalogPublisher.Table, schema.CatalogPublisher.UpdatedAt))

	var args []any
	argID := 1

	// Partial field application. Empty values leave existing columns untouched.
	if house.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogPublisher.Name, argID))
		args = append(args, house.Name)
		argID++
	}

	// Slug (set by the service only when the name changed)
	if house.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogPublisher.Slug, argID))
		args = append(args, house.Slug)
		argID++
	}

	// Description
	if house.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogPublisher.Description, argID))
		args = append(args, house.Description)
		argID++
	}

	// Website
	if house.Website != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogPublisher.Website, argID))
		args = append(args, house.Website)
		argID++
	}

	// Bound to a single live row.
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.CatalogPublisher.ID, argID, schema.CatalogPublisher.DeletedAt))
	args = append(args, house.ID)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update publisher")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
CountBooks returns the number of live books referencing the house.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - int64: Referencing book count
  - error: Query failures
*/
func (repository *publisherRepository) CountBooks(context context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogBook.Table, schema.CatalogBook.PublisherID, schema.CatalogBook.DeletedAt)

	var count int64
	if err := repository.pool.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count publisher books: %w", err)
	}
	return count, nil
}

/*
SoftDelete hides a publisher without physical row removal.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: NOT_FOUND if missing or already deleted
*/
func (repository *publisherRepository) SoftDelete(context context.Context, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.CatalogPublisher.Table, schema.CatalogPublisher.DeletedAt,
		schema.CatalogPublisher.ID, schema.CatalogPublisher.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete publisher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
ToggleActive flips the visibility flag atomically and returns the new state.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *publisherRepository) ToggleActive(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s, %s = NOW() WHERE %s = $1 AND %s IS NULL RETURNING %s",
		schema.CatalogPublisher.Table,
		schema.CatalogPublisher.IsActive, schema.CatalogPublisher.IsActive,
		schema.CatalogPublisher.UpdatedAt,
		schema.CatalogPublisher.ID, schema.CatalogPublisher.DeletedAt,
		schema.CatalogPublisher.IsActive)

	var state bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&state); err != nil {
		return false, dberr.Wrap(err, "toggle publisher flag")
	}
	return state, nil
}
