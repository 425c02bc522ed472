// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category provides the PostgreSQL implementation for the tree's data access.

Hierarchy queries lean on the engine:
  - Recursive CTEs: Walks subtrees server-side for the cycle guard.
  - Window Functions: Calculates total result counts without a separate 'COUNT' query.
  - Correlated Sub-queries: Hydrates per-node book counts in a single round-trip.
*/
package category

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

// categoryRepository implements the [Repository] interface using pgx.
type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed category store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &categoryRepository{pool: pool}
}

// coreColumns lists the category columns selected by every read query, aliased to "c".
func coreColumns() string {
	cols := []string{
		schema.CatalogCategory.ID,
		schema.CatalogCategory.Name,
		schema.CatalogCategory.Slug,
		schema.CatalogCategory.Description,
		schema.CatalogCategory.MetaTitle,
		schema.CatalogCategory.MetaDescription,
		schema.CatalogCategory.ParentID,
		schema.CatalogCategory.ImagePath,
		schema.CatalogCategory.SortOrder,
		schema.CatalogCategory.IsActive,
		schema.CatalogCategory.CreatedAt,
		schema.CatalogCategory.UpdatedAt,
		schema.CatalogCategory.DeletedAt,
	}
	return "c." + strings.Join(cols, ", c.")
}

// bookCountSubquery counts the live books linked to the node.
func bookCountSubquery() string {
	return fmt.Sprintf(`(
			SELECT COUNT(*)
			FROM %s bc
			JOIN %s b ON b.%s = bc.%s AND b.%s IS NULL
			WHERE bc.%s = c.%s
		)`,
		schema.BookCategory.Table,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.BookCategory.BookID,
		schema.CatalogBook.DeletedAt,
		schema.BookCategory.CategoryID, schema.CatalogCategory.ID,
	)
}

// scanCore maps the shared column set into a [Category].
func scanCore(row pgx.Row, category *Category, extras ...any) error {
	targets := []any{
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.MetaTitle,
		&category.MetaDescription,
		&category.ParentID,
		&category.ImagePath,
		&category.SortOrder,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
		&category.DeletedAt,
	}
	targets = append(targets, extras...)
	return row.Scan(targets...)
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of categories and the total count.

Description: Uses COUNT(*) OVER() to retrieve the total record count without
a second query and a correlated sub-query to hydrate per-node book counts.

Parameters:
  - context: context.Context
  - filter: Filter (Search term, parent scoping, visibility)
  - limit: int
  - offset: int

Returns:
  - []*Category: Flat slice of matching nodes
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *categoryRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count,
			%s AS book_count
		FROM %s c
		WHERE c.%s IS NULL
	`,
		coreColumns(),
		bookCountSubquery(),
		schema.CatalogCategory.Table,
		schema.CatalogCategory.DeletedAt,
	))

	// Visibility scoping: true on the public surface, false isolates
	// hidden nodes in the staff table, nil lists everything.
	if filter.IsActive != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CatalogCategory.IsActive, argID))
		args = append(args, *filter.IsActive)
		argID++
	}

	// Hierarchy scoping
	if filter.OnlyRoot {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s IS NULL", schema.CatalogCategory.ParentID))
	} else if filter.OnlyChild {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s IS NOT NULL", schema.CatalogCategory.ParentID))
	} else if filter.ParentID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = $%d", schema.CatalogCategory.ParentID, argID))
		args = append(args, *filter.ParentID)
		argID++
	}

	// Name and description search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (c.%s ILIKE $%d OR c.%s ILIKE $%d)",
			schema.CatalogCategory.Name, argID, schema.CatalogCategory.Description, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	// Stable shelf ordering: siblings by position, then name for ties.
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s ASC, c.%s ASC",
		schema.CatalogCategory.SortOrder, schema.CatalogCategory.Name))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	var totalCount int

	for rows.Next() {
		category := &Category{}
		if err := scanCore(rows, category, &totalCount, &category.BookCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, totalCount, nil
}

/*
ListAll returns every live category ordered for tree assembly.

Description: The flat result is ordered parent-first by sort order so the
service layer can assemble the tree in a single pass.

Parameters:
  - context: context.Context
  - onlyActive: bool (Public surface scoping)

Returns:
  - []*Category: Flat slice of nodes with book counts
  - error: Database execution errors
*/
func (repository *categoryRepository) ListAll(context context.Context, onlyActive bool) ([]*Category, error) {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			%s AS book_count
		FROM %s c
		WHERE c.%s IS NULL
	`,
		coreColumns(),
		bookCountSubquery(),
		schema.CatalogCategory.Table,
		schema.CatalogCategory.DeletedAt,
	))

	if onlyActive {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.%s = TRUE", schema.CatalogCategory.IsActive))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY c.%s NULLS FIRST, c.%s ASC, c.%s ASC",
		schema.CatalogCategory.ParentID, schema.CatalogCategory.SortOrder, schema.CatalogCategory.Name))

	rows, err := repository.pool.Query(context, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list category tree: %w", err)
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		category := &Category{}
		if err := scanCore(rows, category, &category.BookCount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, nil
}

/*
FindByID retrieves a category node by its primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Category: The hydrated node including its book count
  - error: NOT_FOUND if missing or soft-deleted
*/
func (repository *categoryRepository) FindByID(context context.Context, id int64) (*Category, error) {
	return repository.findByColumn(context, schema.CatalogCategory.ID, id)
}

/*
FindBySlug retrieves a category node using its unique SEO URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Category: The hydrated node including its book count
  - error: NOT_FOUND if missing
*/
func (repository *categoryRepository) FindBySlug(context context.Context, slug string) (*Category, error) {
	return repository.findByColumn(context, schema.CatalogCategory.Slug, slug)
}

// findByColumn is the shared single-row lookup behind FindByID/FindBySlug.
func (repository *categoryRepository) findByColumn(context context.Context, column string, value any) (*Category, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			%s AS book_count
		FROM %s c
		WHERE c.%s = $1 AND c.%s IS NULL
	`,
		coreColumns(),
		bookCountSubquery(),
		schema.CatalogCategory.Table,
		column, schema.CatalogCategory.DeletedAt,
	)

	category := &Category{}
	row := repository.pool.QueryRow(context, query, value)
	if err := scanCore(row, category, &category.BookCount); err != nil {
		return nil, dberr.Wrap(err, "find category")
	}

	return category, nil
}

/*
SlugExists reports whether a slug is already registered to another live node.

Parameters:
  - context: context.Context
  - slug: string (Candidate)
  - excludeID: int64 (Node to ignore, zero on create)

Returns:
  - bool: true if another node owns the slug
  - error: Query failures
*/
func (repository *categoryRepository) SlugExists(context context.Context, slug string, excludeID int64) (bool, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogCategory.Table, schema.CatalogCategory.Slug, schema.CatalogCategory.DeletedAt,
	))

	args := []any{slug}
	if excludeID != 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s <> $2", schema.CatalogCategory.ID))
		args = append(args, excludeID)
	}
	queryBuilder.WriteString(")")

	var exists bool
	if err := repository.pool.QueryRow(context, queryBuilder.String(), args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to probe category slug: %w", err)
	}
	return exists, nil
}

/*
IsDescendant reports whether candidate sits in the subtree rooted at ancestor.

Description: Walks the hierarchy server-side with a recursive CTE instead of
loading the tree into application memory. Backs the re-parenting cycle guard.

Parameters:
  - context: context.Context
  - ancestorID: int64 (Subtree root)
  - candidateID: int64 (Proposed new parent)

Returns:
  - bool: true if candidate is inside the subtree
  - error: Query failures
*/
func (repository *categoryRepository) IsDescendant(context context.Context, ancestorID, candidateID int64) (bool, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT %s FROM %s WHERE %s = $1 AND %s IS NULL
			UNION ALL
			SELECT child.%s FROM %s child
			JOIN subtree ON child.%s = subtree.%s
			WHERE child.%s IS NULL
		)
		SELECT EXISTS (SELECT 1 FROM subtree WHERE %s = $2)
	`,
		schema.CatalogCategory.ID, schema.CatalogCategory.Table,
		schema.CatalogCategory.ParentID, schema.CatalogCategory.DeletedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.Table,
		schema.CatalogCategory.ParentID, schema.CatalogCategory.ID,
		schema.CatalogCategory.DeletedAt,
		schema.CatalogCategory.ID,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, ancestorID, candidateID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to walk category subtree: %w", err)
	}
	return exists, nil
}

/*
NextSortOrder returns the position after the last sibling in the parent group.

Parameters:
  - context: context.Context
  - parentID: *int64 (nil for the root group)

Returns:
  - int: max sibling sort order + 1, or 1 for an empty group
  - error: Query failures
*/
func (repository *categoryRepository) NextSortOrder(context context.Context, parentID *int64) (int, error) {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s IS NULL",
		schema.CatalogCategory.SortOrder, schema.CatalogCategory.Table, schema.CatalogCategory.DeletedAt,
	))

	var args []any
	if parentID == nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s IS NULL", schema.CatalogCategory.ParentID))
	} else {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $1", schema.CatalogCategory.ParentID))
		args = append(args, *parentID)
	}

	var next int
	if err := repository.pool.QueryRow(context, queryBuilder.String(), args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("postgres: failed to compute sort order: %w", err)
	}
	return next, nil
}

/*
Create persists a new category node and backfills its generated ID.

Parameters:
  - context: context.Context
  - category: *Category

Returns:
  - error: CONFLICT on unique violations, execution errors otherwise
*/
func (repository *categoryRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s, %s
	`,
		schema.CatalogCategory.Table,
		schema.CatalogCategory.Name, schema.CatalogCategory.Slug, schema.CatalogCategory.Description,
		schema.CatalogCategory.MetaTitle, schema.CatalogCategory.MetaDescription,
		schema.CatalogCategory.ParentID, schema.CatalogCategory.ImagePath,
		schema.CatalogCategory.SortOrder, schema.CatalogCategory.IsActive,
		schema.CatalogCategory.ID, schema.CatalogCategory.CreatedAt, schema.CatalogCategory.UpdatedAt,
	)

	row := repository.pool.QueryRow(context, query,
		category.Name,
		category.Slug,
		category.Description,
		category.MetaTitle,
		category.MetaDescription,
		category.ParentID,
		category.ImagePath,
		category.SortOrder,
		category.IsActive,
	)

	if err := row.Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create category")
	}
	return nil
}

/*
Update persists metadata modifications to an existing category node.

Description: Utilizes a dynamic SQL strings.Builder to construct a PATCH-style
partial update. Re-parenting is signalled by a non-nil ParentID pointing to
either a new parent ID or zero, which moves the node back to the root group.

Parameters:
  - context: context.Context
  - category: *Category (Target ID and updated fields)

Returns:
  - error: NOT_FOUND if the target does not exist, CONFLICT on unique
    violations, otherwise execution errors
*/
func (repository *categoryRepository) Update(context context.Context, category *Category) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CatalogCategory.Table, schema.CatalogCategory.UpdatedAt))

	var args []any
	argID := 1

	// Partial field application. Empty values leave existing columns untouched.
	if category.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.Name, argID))
		args = append(args, category.Name)
		argID++
	}

	// Slug (set by the service only when the name changed)
	if category.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.Slug, argID))
		args = append(args, category.Slug)
		argID++
	}

	// Description
	if category.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.Description, argID))
		args = append(args, category.Description)
		argID++
	}

	// SEO metadata
	if category.MetaTitle != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.MetaTitle, argID))
		args = append(args, category.MetaTitle)
		argID++
	}
	if category.MetaDescription != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.MetaDescription, argID))
		args = append(args, category.MetaDescription)
		argID++
	}

	// Re-parenting (zero moves the node to the root group)
	if category.ParentID != nil {
		if *category.ParentID == 0 {
			queryBuilder.WriteString(fmt.Sprintf(", %s = NULL", schema.CatalogCategory.ParentID))
		} else {
			queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.ParentID, argID))
			args = append(args, *category.ParentID)
			argID++
		}
	}

	// Shelf image
	if category.ImagePath != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.ImagePath, argID))
		args = append(args, category.ImagePath)
		argID++
	}

	// Sibling position
	if category.SortOrder > 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogCategory.SortOrder, argID))
		args = append(args, category.SortOrder)
		argID++
	}

	// Bound to a single live row.
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.CatalogCategory.ID, argID, schema.CatalogCategory.DeletedAt))
	args = append(args, category.ID)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update category")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
CountChildren returns the number of live direct subcategories.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - int64: Direct child count
  - error: Query failures
*/
func (repository *categoryRepository) CountChildren(context context.Context, id int64) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogCategory.Table, schema.CatalogCategory.ParentID, schema.CatalogCategory.DeletedAt)

	var count int64
	if err := repository.pool.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count subcategories: %w", err)
	}
	return count, nil
}

/*
CountBooks returns the number of live books linked to the node.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - int64: Associated book count
  - error: Query failures
*/
func (repository *categoryRepository) CountBooks(context context.Context, id int64) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s bc
		JOIN %s b ON b.%s = bc.%s AND b.%s IS NULL
		WHERE bc.%s = $1
	`,
		schema.BookCategory.Table,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.BookCategory.BookID,
		schema.CatalogBook.DeletedAt,
		schema.BookCategory.CategoryID,
	)

	var count int64
	if err := repository.pool.QueryRow(context, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count category books: %w", err)
	}
	return count, nil
}

/*
SoftDelete hides a category without physical row removal.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - error: NOT_FOUND if missing or already deleted
*/
func (repository *categoryRepository) SoftDelete(context context.Context, id int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.CatalogCategory.Table, schema.CatalogCategory.DeletedAt, schema.CatalogCategory.ID, schema.CatalogCategory.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete category: %w", err)
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
func (repository *categoryRepository) ToggleActive(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s, %s = NOW() WHERE %s = $1 AND %s IS NULL RETURNING %s",
		schema.CatalogCategory.Table,
		schema.CatalogCategory.IsActive, schema.CatalogCategory.IsActive,
		schema.CatalogCategory.UpdatedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.DeletedAt,
		schema.CatalogCategory.IsActive)

	var state bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&state); err != nil {
		return false, dberr.Wrap(err, "toggle category flag")
	}
	return state, nil
}
