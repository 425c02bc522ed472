// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contributor

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

// contributorRepository implements the [Repository] interface using pgx.
type contributorRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed contributor store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &contributorRepository{pool: pool}
}

// coreColumns lists the contributor columns selected by every read query, aliased to "p".
func coreColumns() string {
	cols := []string{
		schema.CatalogContributor.ID,
		schema.CatalogContributor.Name,
		schema.CatalogContributor.Slug,
		schema.CatalogContributor.Bio,
		schema.CatalogContributor.CreatedAt,
		schema.CatalogContributor.UpdatedAt,
		schema.CatalogContributor.DeletedAt,
	}
	return "p." + strings.Join(cols, ", p.")
}

// creditCountSubquery counts the live books crediting the person.
func creditCountSubquery() string {
	return fmt.Sprintf(`(
			SELECT COUNT(*)
			FROM %s link
			JOIN %s b ON b.%s = link.%s AND b.%s IS NULL
			WHERE link.%s = p.%s
		)`,
		schema.BookContributor.Table,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.BookContributor.BookID,
		schema.CatalogBook.DeletedAt,
		schema.BookContributor.ContributorID, schema.CatalogContributor.ID,
	)
}

// scanCore maps the shared column set into a [Contributor].
func scanCore(row pgx.Row, person *Contributor, extras ...any) error {
	targets := []any{
		&person.ID,
		&person.Name,
		&person.Slug,
		&person.Bio,
		&person.CreatedAt,
		&person.UpdatedAt,
		&person.DeletedAt,
	}
	targets = append(targets, extras...)
	return row.Scan(targets...)
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of contributors and the total count.

Parameters:
  - context: context.Context
  - filter: Filter (Name search)
  - limit: int
  - offset: int

Returns:
  - []*Contributor: Slice of matching people
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *contributorRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Contributor, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count,
			%s AS book_count
		FROM %s p
		WHERE p.%s IS NULL
	`,
		coreColumns(),
		creditCountSubquery(),
		schema.CatalogContributor.Table,
		schema.CatalogContributor.DeletedAt,
	))

	// Name search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s ILIKE $%d", schema.CatalogContributor.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY p.%s ASC", schema.CatalogContributor.Name))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list contributors: %w", err)
	}
	defer rows.Close()

	var contributors []*Contributor
	var totalCount int

	for rows.Next() {
		person := &Contributor{}
		if err := scanCore(rows, person, &totalCount, &person.BookCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan contributor: %w", err)
		}
		contributors = append(contributors, person)
	}

	return contributors, totalCount, nil
}

/*
FindByID retrieves a contributor by their primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Contributor: The hydrated entity including their credit count
  - error: NOT_FOUND if missing or soft-deleted
*/
func (repository *contributorRepository) FindByID(context context.Context, id int64) (*Contributor, error) {
	return repository.findByColumn(context, schema.CatalogContributor.ID, id)
}

/*
FindBySlug retrieves a contributor using their unique SEO URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Contributor: The hydrated entity including their credit count
  - error: NOT_FOUND if missing
*/
func (repository *contributorRepository) FindBySlug(context context.Context, slug string) (*Contributor, error) {
	return repository.findByColumn(context, schema.CatalogContributor.Slug, slug)
}

// findByColumn is the shared single-row lookup behind FindByID/FindBySlug.
func (repository *contributorRepository) findByColumn(context context.Context, column string, value any) (*Contributor, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			%s AS book_count
		FROM %s p
		WHERE p.%s = $1 AND p.%s IS NULL
	`,
		coreColumns(),
		creditCountSubquery(),
		schema.CatalogContributor.Table,
		column, schema.CatalogContributor.DeletedAt,
	)

	person := &Contributor{}
	row := repository.pool.QueryRow(context, query, value)
	if err := scanCore(row, person, &person.BookCount); err != nil {
		return nil, dberr.Wrap(err, "find contributor")
	}

	return person, nil
}

/*
SlugExists reports whether a slug is already registered to another live person.

Parameters:
  - context: context.Context
  - slug: string (Candidate)
  - excludeID: int64 (Record to ignore, zero on create)

Returns:
  - bool: true if another record owns the slug
  - error: Query failures
*/
func (repository *contributorRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogContributor.Table, schema.CatalogContributor.Slug, schema.CatalogContributor.DeletedAt,
	))

	args := []any{slug}
	if excludeID != 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s <> $2", schema.CatalogContributor.ID))
		args = append(args, excludeID)
	}
	queryBuilder.WriteString(")")

	var exists bool
	if err := repository.pool.QueryRow(context, queryBuilder.String(), args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to probe contributor slug: %w", err)
	}
	return exists, nil
}

/*
Create persists a new contributor and backfills the generated ID.

Parameters:
  - context: context.Context
  - person: *Contributor

Returns:
  - error: CONFLICT on unique violations, execution errors otherwise
*/
func (repository *contributorRepository) Create(context context.Context, person *Contributor) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s, %s
	`,
		schema.CatalogContributor.Table,
		schema.CatalogContributor.Name, schema.CatalogContributor.Slug, schema.CatalogContributor.Bio,
		schema.CatalogContributor.ID, schema.CatalogContributor.CreatedAt, schema.CatalogContributor.UpdatedAt,
	)

	row := repository.pool.QueryRow(context, query, person.Name, person.Slug, person.Bio)
	if err := row.Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create contributor")
	}
	return nil
}

/*
Update persists modifications to an existing contributor.

Parameters:
  - context: context.Context
  - person: *Contributor (Target ID and updated fields)

Returns:
  - error: NOT_FOUND if the target does not exist, CONFLICT on unique
    violations, otherwise execution errors
*/
func (repository *contributorRepository) Update(context context.Context, person *Contributor) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CatalogContributor.Table, schema.CatalogContributor.UpdatedAt))

	var args []any
	argID := 1

	// Partial field application. Empty values leave existing columns untouched.
	if person.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogContributor.Name, argID))
		args = append(args, person.Name)
		argID++
	}

	// Slug (set by the service only when the name changed)
	if person.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogContributor.Slug, argID))
		args = append(args, person.Slug)
		argID++
	}

	// Bio
	if person.Bio != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogContributor.Bio, argID))
		args = append(args, person.Bio)
		argID++
	}

	// Bound to a single live row.
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.CatalogContributor.ID, argID, schema.CatalogContributor.DeletedAt))
	args = append(args, person.ID)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update contributor")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
CountCredits returns the number of live books crediting the person.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - int64: Credit count
  - error: Query failures
*/
func (repository *contributorRepository) CountCredits(context context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s link
		JOIN %s b ON b.%s = link.%s AND b.%s IS NULL
		WHERE link.%s = $1
	`,
		schema.BookContributor.Table,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.BookContributor.BookID,
		schema.CatalogBook.DeletedAt,
		schema.BookContributor.ContributorID,
	)

	var count int64
	if err := repository.pool.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count contributor credits: %w", err)
	}
	return count, nil
}

/*
SoftDelete hides a contributor without physical row removal.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: NOT_FOUND if missing or already deleted
*/
func (repository *contributorRepository) SoftDelete(context context.Context, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.CatalogContributor.Table, schema.CatalogContributor.DeletedAt,
		schema.CatalogContributor.ID, schema.CatalogContributor.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete contributor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
