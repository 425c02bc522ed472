// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the PostgreSQL implementation for the catalogue's data access.

It utilizes advanced Postgres features to deliver a high-performance catalogue:
  - JSON Aggregation: Retrieves nested data (categories, contributors) in a single round-trip.
  - Window Functions: Calculates total result counts without a separate 'COUNT' query.
  - ACID Transactions: Ensures atomicity when updating books and their junction tables.

The repository follows an "Aggregate" pattern where junction rows are managed
through the main repository instance to maintain domain integrity.
*/
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/database/schema"
	"github.com/taibuivan/biblio/internal/platform/dberr"
	"github.com/taibuivan/biblio/pkg/slice"
)

// # PostgreSQL Repository

// bookRepository implements the [Repository] interface using pgx.
type bookRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed book store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &bookRepository{pool: pool}
}

// coreColumns lists the book columns selected by every read query, aliased to "b".
func coreColumns() string {
	cols := []string{
		schema.CatalogBook.ID,
		schema.CatalogBook.Title,
		schema.CatalogBook.Subtitle,
		schema.CatalogBook.Slug,
		schema.CatalogBook.ISBN,
		schema.CatalogBook.Description,
		schema.CatalogBook.PublisherID,
		schema.CatalogBook.LanguageCode,
		schema.CatalogBook.PublicationYear,
		schema.CatalogBook.Pages,
		schema.CatalogBook.BookType,
		schema.CatalogBook.AccessLevel,
		schema.CatalogBook.CopyrightStatus,
		schema.CatalogBook.LicenseType,
		schema.CatalogBook.PublishedAt,
		schema.CatalogBook.CoverImagePath,
		schema.CatalogBook.PDFPath,
		schema.CatalogBook.IsActive,
		schema.CatalogBook.IsFeatured,
		schema.CatalogBook.Downloadable,
		schema.CatalogBook.ViewCount,
		schema.CatalogBook.DownloadCount,
		schema.CatalogBook.TotalLoans,
		schema.CatalogBook.TotalPhysicalCopies,
		schema.CatalogBook.AvailablePhysicalCopies,
		schema.CatalogBook.CreatedAt,
		schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.DeletedAt,
	}
	return "b." + strings.Join(cols, ", b.")
}

// categoriesSubquery aggregates a book's categories into a JSON array.
func categoriesSubquery() string {
	return fmt.Sprintf(`COALESCE((
			SELECT json_agg(json_build_object('id', cat.%s, 'name', cat.%s, 'slug', cat.%s) ORDER BY cat.%s)
			FROM %s cat
			JOIN %s bc ON cat.%s = bc.%s
			WHERE bc.%s = b.%s
		), '[]')`,
		schema.CatalogCategory.ID,
		schema.CatalogCategory.Name,
		schema.CatalogCategory.Slug,
		schema.CatalogCategory.SortOrder,
		schema.CatalogCategory.Table,
		schema.BookCategory.Table,
		schema.CatalogCategory.ID, schema.BookCategory.CategoryID,
		schema.BookCategory.BookID, schema.CatalogBook.ID,
	)
}

// contributorsSubquery aggregates a book's contributor credits, ordered by sequence.
func contributorsSubquery() string {
	return fmt.Sprintf(`COALESCE((
			SELECT json_agg(json_build_object(
				'contributor_id', person.%s, 'name', person.%s,
				'type', link.%s, 'sequence', link.%s
			) ORDER BY link.%s)
			FROM %s person
			JOIN %s link ON person.%s = link.%s
			WHERE link.%s = b.%s
		), '[]')`,
		schema.CatalogContributor.ID,
		schema.CatalogContributor.Name,
		schema.BookContributor.ContributorType,
		schema.BookContributor.Sequence,
		schema.BookContributor.Sequence,
		schema.CatalogContributor.Table,
		schema.BookContributor.Table,
		schema.CatalogContributor.ID, schema.BookContributor.ContributorID,
		schema.BookContributor.BookID, schema.CatalogBook.ID,
	)
}

// scanCore maps the shared column set into a [Book].
func scanCore(row pgx.Row, book *Book, extras ...any) error {
	targets := []any{
		&book.ID,
		&book.Title,
		&book.Subtitle,
		&book.Slug,
		&book.ISBN,
		&book.Description,
		&book.PublisherID,
		&book.LanguageCode,
		&book.PublicationYear,
		&book.Pages,
		&book.BookType,
		&book.AccessLevel,
		&book.CopyrightStatus,
		&book.LicenseType,
		&book.PublishedAt,
		&book.CoverImagePath,
		&book.PDFPath,
		&book.IsActive,
		&book.IsFeatured,
		&book.Downloadable,
		&book.ViewCount,
		&book.DownloadCount,
		&book.TotalLoans,
		&book.TotalPhysicalCopies,
		&book.AvailablePhysicalCopies,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.DeletedAt,
	}
	targets = append(targets, extras...)
	return row.Scan(targets...)
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of books and the total count.

Description: This query utilizes several PostgreSQL features:
  - Window Function: Uses COUNT(*) OVER() to retrieve total record counts
    without a second query.
  - JSON Aggregation: A sub-query aggregates associated categories into a
    JSON array to prevent N+1 overhead.
  - Set Operations: Uses ANY($n) for type/access filtering and array
    containment for multi-category filtering.

Contributor credits are not hydrated on list queries; they are detail-only.

Parameters:
  - context: context.Context
  - filter: Filter (Search, type, access level, categories, sorting)
  - limit: int
  - offset: int

Returns:
  - []*Book: Slice of hydrated book entities
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *bookRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {

	// Query build initialization
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count,
			%s AS categories
		FROM %s b
		WHERE b.%s IS NULL
	`,
		coreColumns(),
		categoriesSubquery(),
		schema.CatalogBook.Table,
		schema.CatalogBook.DeletedAt,
	))

	// Visibility scoping: true on the public surface, false isolates
	// hidden records in the staff table, nil lists everything.
	if filter.IsActive != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.IsActive, argID))
		args = append(args, *filter.IsActive)
		argID++
	}
	if filter.OnlyFeatured {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = TRUE", schema.CatalogBook.IsFeatured))
	}

	// Book Type Filtering
	if len(filter.BookType) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = ANY($%d)", schema.CatalogBook.BookType, argID))
		args = append(args, filter.BookType)
		argID++
	}

	// Access Level Filtering
	if len(filter.AccessLevel) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = ANY($%d)", schema.CatalogBook.AccessLevel, argID))
		args = append(args, filter.AccessLevel)
		argID++
	}

	// Publisher Filtering
	if filter.PublisherID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.PublisherID, argID))
		args = append(args, *filter.PublisherID)
		argID++
	}

	// Language Filtering
	if filter.LanguageCode != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.LanguageCode, argID))
		args = append(args, filter.LanguageCode)
		argID++
	}

	// Publication Year Filtering
	if filter.Year != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND b.%s = $%d", schema.CatalogBook.PublicationYear, argID))
		args = append(args, *filter.Year)
		argID++
	}

	// Search Query Filtering (title, subtitle, ISBN)
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (b.%s ILIKE $%d OR b.%s ILIKE $%d OR b.%s = $%d)",
			schema.CatalogBook.Title, argID,
			schema.CatalogBook.Subtitle, argID,
			schema.CatalogBook.ISBN, argID+1,
		))
		args = append(args, "%"+filter.Query+"%", filter.Query)
		argID += 2
	}

	// Category Filtering (record must carry every requested category)
	if len(filter.CategoryIDs) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(
			` AND $%d::bigint[] <@ (SELECT array_agg(%s) FROM %s WHERE %s = b.%s)`,
			argID, schema.BookCategory.CategoryID, schema.BookCategory.Table,
			schema.BookCategory.BookID, schema.CatalogBook.ID,
		))
		args = append(args, filter.CategoryIDs)
		argID++
	}

	// Apply Sorting Logic
	sort := fmt.Sprintf("b.%s", schema.CatalogBook.CreatedAt) // default
	switch filter.Sort {
	// Popularity
	case "popular":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.ViewCount)
	// Downloads
	case "downloads":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.DownloadCount)
	// Alphabetical Order
	case "az":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.Title)
	case "za":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.Title)
	// Latest
	case "latest":
		sort = fmt.Sprintf("b.%s", schema.CatalogBook.CreatedAt)
	}

	// Apply Sorting Direction
	sortDir := "DESC"
	if strings.ToLower(filter.SortDir) == "asc" || filter.Sort == "az" {
		sortDir = "ASC"
	}
	if filter.Sort == "za" {
		sortDir = "DESC"
	}

	// Apply Sorting
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s %s, b.%s DESC", sort, sortDir, schema.CatalogBook.ID))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	// Query Execution
	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list books: %w", err)
	}
	defer rows.Close()

	// Initialize variables
	var books []*Book
	var totalCount int

	// Iterate over rows
	for rows.Next() {
		book := &Book{}
		var categoriesJSON []byte

		if err := scanCore(rows, book, &totalCount, &categoriesJSON); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan book: %w", err)
		}

		// Unmarshal categories JSON
		if err := json.Unmarshal(categoriesJSON, &book.Categories); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to unmarshal categories: %w", err)
		}

		books = append(books, book)
	}

	// Return the list of books and total count
	return books, totalCount, nil
}

/*
FindByID retrieves a book record by its primary key.

Description: Performs a single-row lookup that additionally hydrates the
category and contributor associations via JSON aggregation sub-queries,
avoiding the classic N+1 query problem in a single round-trip.

Parameters:
  - context: context.Context
  - id: string (UUID primary key)

Returns:
  - *Book: The fully hydrated entity including associations
  - error: NOT_FOUND if missing or soft-deleted
*/
func (repository *bookRepository) FindByID(context context.Context, id string) (*Book, error) {
	return repository.findByColumn(context, schema.CatalogBook.ID, id)
}

/*
FindBySlug retrieves a book record using its unique SEO URL slug.

Description: Used for public catalogue pages where the internal UUID is
not present in the frontend URL schema. Hydration mirrors FindByID.

Parameters:
  - context: context.Context
  - slug: string (URL-compliant identifier)

Returns:
  - *Book: The fully hydrated entity including associations
  - error: NOT_FOUND if missing
*/
func (repository *bookRepository) FindBySlug(context context.Context, slug string) (*Book, error) {
	return repository.findByColumn(context, schema.CatalogBook.Slug, slug)
}

// findByColumn is the shared single-row lookup behind FindByID/FindBySlug.
func (repository *bookRepository) findByColumn(context context.Context, column, value string) (*Book, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			%s AS categories,
			%s AS contributors
		FROM %s b
		WHERE b.%s = $1 AND b.%s IS NULL
	`,
		coreColumns(),
		categoriesSubquery(),
		contributorsSubquery(),
		schema.CatalogBook.Table,
		column, schema.CatalogBook.DeletedAt,
	)

	book := &Book{}
	var categoriesJSON, contributorsJSON []byte

	row := repository.pool.QueryRow(context, query, value)
	if err := scanCore(row, book, &categoriesJSON, &contributorsJSON); err != nil {
		return nil, dberr.Wrap(err, "find book")
	}

	if err := json.Unmarshal(categoriesJSON, &book.Categories); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal categories: %w", err)
	}
	if err := json.Unmarshal(contributorsJSON, &book.Contributors); err != nil {
		return nil, fmt.Errorf("postgres: failed to unmarshal contributors: %w", err)
	}

	return book, nil
}

/*
SlugExists reports whether a slug is already registered to another live record.

Description: Backs the uniqueness probe of the slug generator. The excludeID
parameter lets updates ignore the record being edited so an unchanged slug
is never reported as a collision.

Parameters:
  - context: context.Context
  - slug: string (Candidate)
  - excludeID: string (Record to ignore, empty on create)

Returns:
  - bool: true if another record owns the slug
  - error: Query failures
*/
func (repository *bookRepository) SlugExists(context context.Context, slug string, excludeID string) (bool, error) {
	return repository.columnExists(context, schema.CatalogBook.Slug, slug, excludeID)
}

/*
ISBNExists reports whether an ISBN is already registered to another live record.

Parameters:
  - context: context.Context
  - isbn: string
  - excludeID: string (Record to ignore, empty on create)

Returns:
  - bool: true if another record owns the ISBN
  - error: Query failures
*/
func (repository *bookRepository) ISBNExists(context context.Context, isbn string, excludeID string) (bool, error) {
	return repository.columnExists(context, schema.CatalogBook.ISBN, isbn, excludeID)
}

// columnExists runs the shared EXISTS probe behind SlugExists/ISBNExists.
func (repository *bookRepository) columnExists(context context.Context, column, value, excludeID string) (bool, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogBook.Table, column, schema.CatalogBook.DeletedAt,
	))

	args := []any{value}
	if excludeID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s <> $2", schema.CatalogBook.ID))
		args = append(args, excludeID)
	}
	queryBuilder.WriteString(")")

	var exists bool
	if err := repository.pool.QueryRow(context, queryBuilder.String(), args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to probe %s: %w", column, err)
	}
	return exists, nil
}

/*
Create persists a new book entity and all its associated junction table links.

Description: Executes the insertion within a single ACID-compliant PostgreSQL
transaction. If the insertion of the core record or any of the junction links
(categories, contributors) fails due to constraints, the entire operation is
rolled back, preventing orphaned associations and partial saves.

Parameters:
  - context: context.Context
  - book: *Book (Metadata plus CategoryIDs and ContributorLinks)

Returns:
  - error: CONFLICT on unique violations, execution errors otherwise
*/
func (repository *bookRepository) Create(context context.Context, book *Book) error {

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`,
		schema.CatalogBook.Table,
		schema.CatalogBook.ID, schema.CatalogBook.Title, schema.CatalogBook.Subtitle, schema.CatalogBook.Slug,
		schema.CatalogBook.ISBN, schema.CatalogBook.Description, schema.CatalogBook.PublisherID, schema.CatalogBook.LanguageCode,
		schema.CatalogBook.PublicationYear, schema.CatalogBook.Pages, schema.CatalogBook.BookType, schema.CatalogBook.AccessLevel,
		schema.CatalogBook.CopyrightStatus, schema.CatalogBook.LicenseType, schema.CatalogBook.PublishedAt,
		schema.CatalogBook.CoverImagePath, schema.CatalogBook.PDFPath,
		schema.CatalogBook.IsActive, schema.CatalogBook.IsFeatured, schema.CatalogBook.Downloadable,
		schema.CatalogBook.TotalPhysicalCopies, schema.CatalogBook.AvailablePhysicalCopies,
	)

	_, err = transaction.Exec(context, query,
		book.ID,
		book.Title,
		book.Subtitle,
		book.Slug,
		book.ISBN,
		book.Description,
		book.PublisherID,
		book.LanguageCode,
		book.PublicationYear,
		book.Pages,
		book.BookType,
		book.AccessLevel,
		book.CopyrightStatus,
		book.LicenseType,
		book.PublishedAt,
		book.CoverImagePath,
		book.PDFPath,
		book.IsActive,
		book.IsFeatured,
		book.Downloadable,
		book.TotalPhysicalCopies,
		book.AvailablePhysicalCopies,
	)
	if err != nil {
		return dberr.Wrap(err, "create book")
	}

	// Category Association Bootstrap
	if len(book.CategoryIDs) > 0 {
		if err := repository.syncCategories(context, transaction, book.ID, book.CategoryIDs); err != nil {
			return err
		}
	}

	// Contributor Credit Bootstrap
	if len(book.ContributorLinks) > 0 {
		if err := repository.replaceContributors(context, transaction, book.ID, book.ContributorLinks); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: failed to commit create transaction: %w", err)
	}

	return nil
}

/*
Update persists metadata modifications to an existing book record.

Description: Utilizes a dynamic SQL strings.Builder to construct a PATCH-style
partial update query, then reconciles associations inside the same transaction.
Category links use set-difference reconciliation so rows present in both the
stored and desired sets never churn; contributor credits are fully replaced
because their sequence is positional.

Parameters:
  - context: context.Context
  - book: *Book (Target UUID and updated fields)

Returns:
  - error: NOT_FOUND if the target does not exist, CONFLICT on unique
    violations, otherwise execution errors
*/
func (repository *bookRepository) Update(context context.Context, book *Book) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.CatalogBook.Table, schema.CatalogBook.UpdatedAt))

	var args []any
	argID := 1

	// Partial field application. Empty values leave existing columns untouched.
	if book.Title != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.Title, argID))
		args = append(args, book.Title)
		argID++
	}

	// Subtitle
	if book.Subtitle != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.Subtitle, argID))
		args = append(args, book.Subtitle)
		argID++
	}

	// Slug (set by the service only when the title changed)
	if book.Slug != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.Slug, argID))
		args = append(args, book.Slug)
		argID++
	}

	// ISBN
	if book.ISBN != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.ISBN, argID))
		args = append(args, book.ISBN)
		argID++
	}

	// Description
	if book.Description != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.Description, argID))
		args = append(args, book.Description)
		argID++
	}

	// Publisher
	if book.PublisherID != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.PublisherID, argID))
		args = append(args, *book.PublisherID)
		argID++
	}

	// Language
	if book.LanguageCode != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.LanguageCode, argID))
		args = append(args, book.LanguageCode)
		argID++
	}

	// Publication Year
	if book.PublicationYear != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.PublicationYear, argID))
		args = append(args, *book.PublicationYear)
		argID++
	}

	// Pages
	if book.Pages != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.Pages, argID))
		args = append(args, *book.Pages)
		argID++
	}

	// Book Type
	if book.BookType != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.BookType, argID))
		args = append(args, book.BookType)
		argID++
	}

	// Access Level
	if book.AccessLevel != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.AccessLevel, argID))
		args = append(args, book.AccessLevel)
		argID++
	}

	// Copyright Status
	if book.CopyrightStatus != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.CopyrightStatus, argID))
		args = append(args, book.CopyrightStatus)
		argID++
	}

	// License Type
	if book.LicenseType != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.LicenseType, argID))
		args = append(args, book.LicenseType)
		argID++
	}

	// Release Date
	if book.PublishedAt != nil {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.PublishedAt, argID))
		args = append(args, *book.PublishedAt)
		argID++
	}

	// Physical Holdings
	if book.TotalPhysicalCopies > 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.TotalPhysicalCopies, argID))
		args = append(args, book.TotalPhysicalCopies)
		argID++
	}
	if book.AvailablePhysicalCopies > 0 {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.AvailablePhysicalCopies, argID))
		args = append(args, book.AvailablePhysicalCopies)
		argID++
	}

	// Cover Image
	if book.CoverImagePath != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.CoverImagePath, argID))
		args = append(args, book.CoverImagePath)
		argID++
	}

	// PDF Asset
	if book.PDFPath != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogBook.PDFPath, argID))
		args = append(args, book.PDFPath)
		argID++
	}

	// Bound to a single live row.
	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.CatalogBook.ID, argID, schema.CatalogBook.DeletedAt))
	args = append(args, book.ID)

	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return fmt.Errorf("postgres: update transaction begin failed: %w", err)
	}
	defer transaction.Rollback(context)

	response, err := transaction.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update book")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// Category reconciliation (nil means "leave untouched")
	if book.CategoryIDs != nil {
		if err := repository.syncCategories(context, transaction, book.ID, book.CategoryIDs); err != nil {
			return err
		}
	}

	// Contributor replacement (nil means "leave untouched")
	if book.ContributorLinks != nil {
		if err := repository.replaceContributors(context, transaction, book.ID, book.ContributorLinks); err != nil {
			return err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return fmt.Errorf("postgres: update transaction commit failed: %w", err)
	}

	return nil
}

/*
syncCategories reconciles the book↔category junction by set difference.

Description: Reads the stored category set, then deletes only the rows that
left the desired set and inserts only the rows that joined it. Associations
present in both sets are never rewritten, so their insertion timestamps and
any future junction metadata survive edits untouched.

Parameters:
  - context: context.Context
  - transaction: pgx.Tx (The active transaction boundary)
  - bookID: string (Parent UUID)
  - desired: []int64 (The complete category set the record should end up with)

Returns:
  - error: Execution failures
*/
func (repository *bookRepository) syncCategories(context context.Context, transaction pgx.Tx, bookID string, desired []int64) error {

	// Current Set Snapshot
	selectQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		schema.BookCategory.CategoryID, schema.BookCategory.Table, schema.BookCategory.BookID)

	rows, err := transaction.Query(context, selectQuery, bookID)
	if err != nil {
		return fmt.Errorf("postgres: failed to read category links: %w", err)
	}

	var current []int64
	for rows.Next() {
		var categoryID int64
		if err := rows.Scan(&categoryID); err != nil {
			rows.Close()
			return fmt.Errorf("postgres: failed to scan category link: %w", err)
		}
		current = append(current, categoryID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: failed to iterate category links: %w", err)
	}

	// Set Difference Computation
	toRemove := slice.Diff(current, desired)
	toAdd := slice.Diff(desired, current)

	// Targeted Removal Phase
	if len(toRemove) > 0 {
		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = ANY($2)",
			schema.BookCategory.Table, schema.BookCategory.BookID, schema.BookCategory.CategoryID)
		if _, err := transaction.Exec(context, deleteQuery, bookID, toRemove); err != nil {
			return fmt.Errorf("postgres: failed to remove category links: %w", err)
		}
	}

	// Targeted Insertion Phase (batched)
	if len(toAdd) > 0 {
		insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES ($1, $2)",
			schema.BookCategory.Table, schema.BookCategory.BookID, schema.BookCategory.CategoryID)

		batch := &pgx.Batch{}
		for _, categoryID := range toAdd {
			batch.Queue(insertQuery, bookID, categoryID)
		}

		response := transaction.SendBatch(context, batch)
		if err := response.Close(); err != nil {
			return dberr.Wrap(err, "add category links")
		}
	}

	return nil
}

/*
replaceContributors rewrites the full contributor credit list for a book.

Description: Implements a "Clear and Insert" strategy. Credits carry a
positional sequence, so a partial reconciliation would have to rewrite most
rows anyway; a full replacement is simpler and keeps ordering authoritative
from the input slice.

Parameters:
  - context: context.Context
  - transaction: pgx.Tx (The active transaction boundary)
  - bookID: string (Parent UUID)
  - links: []ContributorInput (Ordered credit list)

Returns:
  - error: Execution failures
*/
func (repository *bookRepository) replaceContributors(context context.Context, transaction pgx.Tx, bookID string, links []ContributorInput) error {

	// Clear Phase
	deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.BookContributor.Table, schema.BookContributor.BookID)
	if _, err := transaction.Exec(context, deleteQuery, bookID); err != nil {
		return fmt.Errorf("postgres: failed to clear contributor links: %w", err)
	}

	if len(links) == 0 {
		return nil
	}

	// Ordered Batch Insertion (sequence derives from slice position)
	insertQuery := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)",
		schema.BookContributor.Table,
		schema.BookContributor.BookID, schema.BookContributor.ContributorID,
		schema.BookContributor.ContributorType, schema.BookContributor.Sequence,
	)

	batch := &pgx.Batch{}
	for position, link := range links {
		batch.Queue(insertQuery, bookID, link.ContributorID, link.Type, position+1)
	}

	response := transaction.SendBatch(context, batch)
	if err := response.Close(); err != nil {
		return dberr.Wrap(err, "replace contributor links")
	}

	return nil
}

/*
SoftDelete hides a book without physical row removal.

Description: Stamps the deletedat column with the database engine's current
timestamp. All primary queries carry a global WHERE deletedat IS NULL
requirement, which scopes the record out of discovery. Junction rows are
intentionally retained for potential restoration.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: NOT_FOUND if missing or already deleted
*/
func (repository *bookRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.CatalogBook.Table, schema.CatalogBook.DeletedAt, schema.CatalogBook.ID, schema.CatalogBook.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete book: %w", err)
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
  - id: string (UUID)

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *bookRepository) ToggleActive(context context.Context, id string) (bool, error) {
	return repository.toggleFlag(context, schema.CatalogBook.IsActive, id)
}

/*
ToggleFeatured flips the homepage shelf flag atomically and returns the new state.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *bookRepository) ToggleFeatured(context context.Context, id string) (bool, error) {
	return repository.toggleFlag(context, schema.CatalogBook.IsFeatured, id)
}

/*
ToggleDownloadable flips the PDF download permission atomically and returns
the new state.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *bookRepository) ToggleDownloadable(context context.Context, id string) (bool, error) {
	return repository.toggleFlag(context, schema.CatalogBook.Downloadable, id)
}

// toggleFlag flips a boolean column in a single round-trip via RETURNING.
func (repository *bookRepository) toggleFlag(context context.Context, column, id string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s, %s = NOW() WHERE %s = $1 AND %s IS NULL RETURNING %s",
		schema.CatalogBook.Table, column, column, schema.CatalogBook.UpdatedAt,
		schema.CatalogBook.ID, schema.CatalogBook.DeletedAt, column)

	var state bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&state); err != nil {
		return false, dberr.Wrap(err, "toggle flag")
	}
	return state, nil
}

/*
IncrementViewCount performs a thread-safe counter update.

Description: Applies the numeric addition directly in the database engine
instead of a read-modify-write cycle, preserving integrity under concurrency.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - delta: int64 (Usually 1)

Returns:
  - error: Execution failures
*/
func (repository *bookRepository) IncrementViewCount(context context.Context, id string, delta int64) error {
	return repository.incrementCounter(context, schema.CatalogBook.ViewCount, id, delta)
}

/*
IncrementDownloadCount performs a thread-safe download counter update.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - delta: int64

Returns:
  - error: Execution failures
*/
func (repository *bookRepository) IncrementDownloadCount(context context.Context, id string, delta int64) error {
	return repository.incrementCounter(context, schema.CatalogBook.DownloadCount, id, delta)
}

// incrementCounter applies the shared atomic counter jump.
func (repository *bookRepository) incrementCounter(context context.Context, column, id string, delta int64) error {
	query := fmt.Sprintf("UPDATE %s SET %s = %s + $1 WHERE %s = $2",
		schema.CatalogBook.Table, column, column, schema.CatalogBook.ID)

	if _, err := repository.pool.Exec(context, query, delta, id); err != nil {
		return fmt.Errorf("postgres: failed to increment %s: %w", column, err)
	}
	return nil
}
