// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/database/schema"
	"github.com/taibuivan/biblio/internal/platform/dberr"
)

// # PostgreSQL Repository

// languageRepository implements the [Repository] interface using pgx.
type languageRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed language store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &languageRepository{pool: pool}
}

// bookCountSubquery counts the live books published in the language.
func bookCountSubquery() string {
	return fmt.Sprintf(`(
			SELECT COUNT(*)
			FROM %s b
			WHERE b.%s = l.%s AND b.%s IS NULL
		)`,
		schema.CatalogBook.Table,
		schema.CatalogBook.LanguageCode, schema.CatalogLanguage.Code,
		schema.CatalogBook.DeletedAt,
	)
}

// # Repository Implementation

/*
List returns the full reference list ordered by name.

Parameters:
  - context: context.Context
  - onlyActive: bool (Public surface scoping)

Returns:
  - []*Language: Reference entries with book counts
  - error: Database execution errors
*/
func (repository *languageRepository) List(context context.Context, onlyActive bool) ([]*Language, error) {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT l.%s, l.%s, l.%s, l.%s,
			%s AS book_count
		FROM %s l
	`,
		schema.CatalogLanguage.Code, schema.CatalogLanguage.Name,
		schema.CatalogLanguage.NativeName, schema.CatalogLanguage.IsActive,
		bookCountSubquery(),
		schema.CatalogLanguage.Table,
	))

	if onlyActive {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE l.%s = TRUE", schema.CatalogLanguage.IsActive))
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY l.%s ASC", schema.CatalogLanguage.Name))

	rows, err := repository.pool.Query(context, queryBuilder.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list languages: %w", err)
	}
	defer rows.Close()

	var languages []*Language
	for rows.Next() {
		entry := &Language{}
		if err := rows.Scan(&entry.Code, &entry.Name, &entry.NativeName, &entry.IsActive, &entry.BookCount); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan language: %w", err)
		}
		languages = append(languages, entry)
	}

	return languages, nil
}

/*
FindByCode retrieves a reference entry by its ISO-639-1 code.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - *Language: The reference entry including its book count
  - error: NOT_FOUND if missing
*/
func (repository *languageRepository) FindByCode(context context.Context, code string) (*Language, error) {
	query := fmt.Sprintf(`
		SELECT l.%s, l.%s, l.%s, l.%s,
			%s AS book_count
		FROM %s l
		WHERE l.%s = $1
	`,
		schema.CatalogLanguage.Code, schema.CatalogLanguage.Name,
		schema.CatalogLanguage.NativeName, schema.CatalogLanguage.IsActive,
		bookCountSubquery(),
		schema.CatalogLanguage.Table,
		schema.CatalogLanguage.Code,
	)

	entry := &Language{}
	row := repository.pool.QueryRow(context, query, code)
	if err := row.Scan(&entry.Code, &entry.Name, &entry.NativeName, &entry.IsActive, &entry.BookCount); err != nil {
		return nil, dberr.Wrap(err, "find language")
	}

	return entry, nil
}

/*
Create persists a new reference entry.

Parameters:
  - context: context.Context
  - entry: *Language

Returns:
  - error: CONFLICT when the code is already registered
*/
func (repository *languageRepository) Create(context context.Context, entry *Language) error {
	query := fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)",
		schema.CatalogLanguage.Table,
		schema.CatalogLanguage.Code, schema.CatalogLanguage.Name,
		schema.CatalogLanguage.NativeName, schema.CatalogLanguage.IsActive,
	)

	if _, err := repository.pool.Exec(context, query, entry.Code, entry.Name, entry.NativeName, entry.IsActive); err != nil {
		return dberr.Wrap(err, "create language")
	}
	return nil
}

/*
Update persists changes to an existing entry's display names.

Parameters:
  - context: context.Context
  - entry: *Language (Target code and updated fields)

Returns:
  - error: NOT_FOUND if the target does not exist
*/
func (repository *languageRepository) Update(context context.Context, entry *Language) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = %s", schema.CatalogLanguage.Table,
		schema.CatalogLanguage.Code, schema.CatalogLanguage.Code))

	var args []any
	argID := 1

	// Partial field application. Empty values leave existing columns untouched.
	if entry.Name != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogLanguage.Name, argID))
		args = append(args, entry.Name)
		argID++
	}

	// Native display name
	if entry.NativeName != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.CatalogLanguage.NativeName, argID))
		args = append(args, entry.NativeName)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d", schema.CatalogLanguage.Code, argID))
	args = append(args, entry.Code)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update language")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
CountBooks returns the number of live books published in the language.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - int64: Referencing book count
  - error: Query failures
*/
func (repository *languageRepository) CountBooks(context context.Context, code string) (int64, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s IS NULL",
		schema.CatalogBook.Table, schema.CatalogBook.LanguageCode, schema.CatalogBook.DeletedAt)

	var count int64
	if err := repository.pool.QueryRow(context, query, code).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count language books: %w", err)
	}
	return count, nil
}

/*
Delete removes a reference entry. Physical removal; the reference list
carries no soft-delete column.

Parameters:
  - context: context.Context
  - code: string

Returns:
  - error: NOT_FOUND if missing, BUSINESS_RULE if still referenced
*/
func (repository *languageRepository) Delete(context context.Context, code string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		schema.CatalogLanguage.Table, schema.CatalogLanguage.Code)

	result, err := repository.pool.Exec(context, query, code)
	if err != nil {
		return dberr.Wrap(err, "delete language")
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
  - code: string

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *languageRepository) ToggleActive(context context.Context, code string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s WHERE %s = $1 RETURNING %s",
		schema.CatalogLanguage.Table,
		schema.CatalogLanguage.IsActive, schema.CatalogLanguage.IsActive,
		schema.CatalogLanguage.Code, schema.CatalogLanguage.IsActive)

	var state bool
	if err := repository.pool.QueryRow(context, query, code).Scan(&state); err != nil {
		return false, dberr.Wrap(err, "toggle language flag")
	}
	return state, nil
}
