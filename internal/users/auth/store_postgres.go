// Copyright (c) 2026 Biblio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/biblio/internal/platform/database/schema"
	"github.com/taibuivan/biblio/internal/platform/dberr"
)

// # PostgreSQL User Repository

// userRepository implements the [Repository] interface using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed user store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &userRepository{pool: pool}
}

// coreColumns lists the account columns selected by every read query, aliased to "u".
func coreColumns() string {
	cols := []string{
		schema.UserAccount.ID,
		schema.UserAccount.Username,
		schema.UserAccount.Email,
		schema.UserAccount.Password,
		schema.UserAccount.Role,
		schema.UserAccount.IsVerified,
		schema.UserAccount.IsActive,
		schema.UserAccount.LastLoginAt,
		schema.UserAccount.DisplayName,
		schema.UserAccount.CreatedAt,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.DeletedAt,
	}
	return "u." + strings.Join(cols, ", u.")
}

// scanCore maps the shared column set into a [User].
func scanCore(row pgx.Row, user *User, extras ...any) error {
	targets := []any{
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsVerified,
		&user.IsActive,
		&user.LastLoginAt,
		&user.DisplayName,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	}
	targets = append(targets, extras...)
	return row.Scan(targets...)
}

// # Repository Implementation

/*
List returns a filtered, paginated slice of accounts and the total count.

Parameters:
  - context: context.Context
  - filter: Filter (Search term, role, visibility)
  - limit: int
  - offset: int

Returns:
  - []*User: Slice of matching accounts
  - int: Total count matching filters
  - error: Database execution errors
*/
func (repository *userRepository) List(context context.Context, filter Filter, limit, offset int) ([]*User, int, error) {

	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s u
		WHERE u.%s IS NULL
	`,
		coreColumns(),
		schema.UserAccount.Table,
		schema.UserAccount.DeletedAt,
	))

	// Visibility scoping
	if filter.OnlyActive {
		queryBuilder.WriteString(fmt.Sprintf(" AND u.%s = TRUE", schema.UserAccount.IsActive))
	}

	// Role scoping
	if filter.Role != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND u.%s = $%d", schema.UserAccount.Role, argID))
		args = append(args, filter.Role)
		argID++
	}

	// Username/email search
	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (u.%s ILIKE $%d OR u.%s ILIKE $%d)",
			schema.UserAccount.Username, argID, schema.UserAccount.Email, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY u.%s DESC", schema.UserAccount.CreatedAt))

	// Pagination injection
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	var totalCount int

	for rows.Next() {
		user := &User{}
		if err := scanCore(rows, user, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, totalCount, nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: The hydrated account
  - error: NOT_FOUND if missing or soft-deleted
*/
func (repository *userRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s u
		WHERE u.%s = $1 AND u.%s IS NULL
	`,
		coreColumns(), schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
	)

	user := &User{}
	if err := scanCore(repository.pool.QueryRow(context, query, id), user); err != nil {
		return nil, dberr.Wrap(err, "find user")
	}
	return user, nil
}

/*
FindByLogin retrieves an account by username OR email, case-insensitively.

Description: Backs the login form, which accepts either identifier in the
same input field.

Parameters:
  - context: context.Context
  - login: string (Username or email)

Returns:
  - *User: The hydrated account including the password hash
  - error: NOT_FOUND if missing
*/
func (repository *userRepository) FindByLogin(context context.Context, login string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s u
		WHERE (LOWER(u.%s) = LOWER($1) OR LOWER(u.%s) = LOWER($1)) AND u.%s IS NULL
	`,
		coreColumns(), schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.Email, schema.UserAccount.DeletedAt,
	)

	user := &User{}
	if err := scanCore(repository.pool.QueryRow(context, query, login), user); err != nil {
		return nil, dberr.Wrap(err, "find user by login")
	}
	return user, nil
}

/*
UsernameExists reports whether a username is already registered.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - bool: true if taken
  - error: Query failures
*/
func (repository *userRepository) UsernameExists(context context.Context, username string) (bool, error) {
	return repository.columnExists(context, schema.UserAccount.Username, username)
}

/*
EmailExists reports whether an email is already registered.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - bool: true if taken
  - error: Query failures
*/
func (repository *userRepository) EmailExists(context context.Context, email string) (bool, error) {
	return repository.columnExists(context, schema.UserAccount.Email, email)
}

// columnExists runs the shared case-insensitive EXISTS probe.
func (repository *userRepository) columnExists(context context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE LOWER(%s) = LOWER($1) AND %s IS NULL)",
		schema.UserAccount.Table, column, schema.UserAccount.DeletedAt,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to probe %s: %w", column, err)
	}
	return exists, nil
}

/*
Create persists a new account.

Parameters:
  - context: context.Context
  - user: *User (ID, credentials, role)

Returns:
  - error: CONFLICT on unique violations, execution errors otherwise
*/
func (repository *userRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s
	`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.Role,
		schema.UserAccount.IsVerified, schema.UserAccount.IsActive, schema.UserAccount.DisplayName,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	row := repository.pool.QueryRow(context, query,
		user.ID, user.Username, user.Email,
		user.PasswordHash, user.Role,
		user.IsVerified, user.IsActive, user.DisplayName,
	)

	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return dberr.Wrap(err, "create user")
	}
	return nil
}

/*
UpdateProfile persists changes to the mutable profile fields.

Parameters:
  - context: context.Context
  - user: *User (Target ID, DisplayName, Email)

Returns:
  - error: NOT_FOUND if the target does not exist
*/
func (repository *userRepository) UpdateProfile(context context.Context, user *User) error {

	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf("UPDATE %s SET %s = NOW()", schema.UserAccount.Table, schema.UserAccount.UpdatedAt))

	var args []any
	argID := 1

	// Display name
	if user.DisplayName != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d", schema.UserAccount.DisplayName, argID))
		args = append(args, user.DisplayName)
		argID++
	}

	// Email changes drop the verified flag; the new address is unproven.
	if user.Email != "" {
		queryBuilder.WriteString(fmt.Sprintf(", %s = $%d, %s = FALSE", schema.UserAccount.Email, argID, schema.UserAccount.IsVerified))
		args = append(args, user.Email)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" WHERE %s = $%d AND %s IS NULL", schema.UserAccount.ID, argID, schema.UserAccount.DeletedAt))
	args = append(args, user.ID)

	response, err := repository.pool.Exec(context, queryBuilder.String(), args...)
	if err != nil {
		return dberr.Wrap(err, "update profile")
	}

	if response.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
UpdatePassword replaces the stored credential hash.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - passwordHash: string (bcrypt)

Returns:
  - error: NOT_FOUND if missing
*/
func (repository *userRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s IS NULL",
		schema.UserAccount.Table, schema.UserAccount.Password, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	result, err := repository.pool.Exec(context, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to update password: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
MarkVerified stamps the account's email as confirmed.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: NOT_FOUND if missing
*/
func (repository *userRepository) MarkVerified(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1 AND %s IS NULL",
		schema.UserAccount.Table, schema.UserAccount.IsVerified, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to mark user verified: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
TouchLastLogin stamps the successful-login timestamp.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - error: Execution failures
*/
func (repository *userRepository) TouchLastLogin(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1",
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt, schema.UserAccount.ID)

	if _, err := repository.pool.Exec(context, query, id); err != nil {
		return fmt.Errorf("postgres: failed to touch last login: %w", err)
	}
	return nil
}

/*
SetRole changes an account's role.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - role: string (validated by the service)

Returns:
  - error: NOT_FOUND if missing
*/
func (repository *userRepository) SetRole(context context.Context, id, role string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s IS NULL",
		schema.UserAccount.Table, schema.UserAccount.Role, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt)

	result, err := repository.pool.Exec(context, query, role, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to set role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
ToggleActive flips the account's active flag atomically.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - bool: The state after the flip
  - error: NOT_FOUND if missing
*/
func (repository *userRepository) ToggleActive(context context.Context, id string) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = NOT %s, %s = NOW() WHERE %s = $1 AND %s IS NULL RETURNING %s",
		schema.UserAccount.Table,
		schema.UserAccount.IsActive, schema.UserAccount.IsActive,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.DeletedAt,
		schema.UserAccount.IsActive)

	var state bool
	if err := repository.pool.QueryRow(context, query, id).Scan(&state); err != nil {
		return false, dberr.Wrap(err, "toggle user flag")
	}
	return state, nil
}

// # PostgreSQL Session Repository

// sessionRepository implements the [SessionRepository] interface using pgx.
type sessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository constructs a PostgreSQL backed session store.
func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

/*
Create persists a new refresh session.

Parameters:
  - context: context.Context
  - session: *Session (UserID, TokenHash, device metadata, expiry)

Returns:
  - error: Execution failures
*/
func (repository *sessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`,
		schema.UserSession.Table,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.DeviceName, schema.UserSession.IPAddress, schema.UserSession.UserAgent,
		schema.UserSession.ExpiresAt,
		schema.UserSession.CreatedAt,
	)

	row := repository.pool.QueryRow(context, query,
		session.ID, session.UserID, session.TokenHash,
		session.DeviceName, session.IPAddress, session.UserAgent,
		session.ExpiresAt,
	)

	if err := row.Scan(&session.CreatedAt); err != nil {
		return dberr.Wrap(err, "create session")
	}
	return nil
}

/*
FindByTokenHash returns the live session owning the hashed refresh secret.

Description: Revoked and expired sessions are excluded in the query itself,
so a stolen-but-rotated token can never resolve to a grant.

Parameters:
  - context: context.Context
  - tokenHash: string (SHA-256 hex)

Returns:
  - *Session: The matching grant
  - error: NOT_FOUND if missing, revoked, or expired
*/
func (repository *sessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = FALSE AND %s > NOW()
	`,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.DeviceName, schema.UserSession.IPAddress, schema.UserSession.UserAgent,
		schema.UserSession.IsRevoked, schema.UserSession.ExpiresAt, schema.UserSession.RevokedAt,
		schema.UserSession.CreatedAt,
		schema.UserSession.Table,
		schema.UserSession.TokenHash, schema.UserSession.IsRevoked, schema.UserSession.ExpiresAt,
	)

	session := &Session{}
	row := repository.pool.QueryRow(context, query, tokenHash)
	err := row.Scan(
		&session.ID, &session.UserID, &session.TokenHash,
		&session.DeviceName, &session.IPAddress, &session.UserAgent,
		&session.IsRevoked, &session.ExpiresAt, &session.RevokedAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find session")
	}
	return session, nil
}

/*
Revoke marks a single session as revoked.

Parameters:
  - context: context.Context
  - id: string (Session UUID)

Returns:
  - error: NOT_FOUND if missing or already revoked
*/
func (repository *sessionRepository) Revoke(context context.Context, id string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1 AND %s = FALSE",
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.RevokedAt,
		schema.UserSession.ID, schema.UserSession.IsRevoked)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to revoke session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
RevokeAllForUser revokes every live session of a user.

Parameters:
  - context: context.Context
  - userID: string (UUID)

Returns:
  - error: Execution failures
*/
func (repository *sessionRepository) RevokeAllForUser(context context.Context, userID string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1 AND %s = FALSE",
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.RevokedAt,
		schema.UserSession.UserID, schema.UserSession.IsRevoked)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return fmt.Errorf("postgres: failed to revoke user sessions: %w", err)
	}
	return nil
}

/*
DeleteExpired removes sessions past their expiry.

Parameters:
  - context: context.Context
  - olderThan: time.Time (Expiry cutoff)

Returns:
  - int64: Rows removed
  - error: Execution failures
*/
func (repository *sessionRepository) DeleteExpired(context context.Context, olderThan time.Time) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s < $1",
		schema.UserSession.Table, schema.UserSession.ExpiresAt)

	result, err := repository.pool.Exec(context, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to purge sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
