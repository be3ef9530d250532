package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// UserStore implements repository.UserRepository against the users table.
type UserStore struct {
	conn *sql.DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user. The UNIQUE constraints on email and username
// are the last line of defence — the service pre-checks with FindConflict
// so it can name the colliding field, but a concurrent registration can
// still race past the pre-check and land here.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (id, first_name, last_name, username, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "email or username already exists")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their internal id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getWhere(ctx, `id = ?`, id)
}

// GetByIdentifier resolves a login identifier against email OR username.
func (s *UserStore) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	return s.getWhere(ctx, `email = ? OR username = ?`, identifier, identifier)
}

func (s *UserStore) getWhere(ctx context.Context, where string, args ...any) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, email, password_hash, created_at, updated_at
		 FROM users WHERE `+where,
		args...,
	).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(args[0]))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// FindConflict returns a user other than excludeID holding the given email
// or username, or (nil, nil) when neither is taken.
//
// The ORDER BY ranks an email match ahead of a username match so that when
// BOTH fields collide (on different rows), the email conflict is the one
// reported — conflict precedence is part of the API contract.
func (s *UserStore) FindConflict(ctx context.Context, excludeID, email, username string) (*model.User, error) {
	var u model.User

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, username, email, password_hash, created_at, updated_at
		 FROM users
		 WHERE id != ? AND (email = ? OR username = ?)
		 ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END
		 LIMIT 1`,
		excludeID, email, username, email,
	).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // no conflict — the happy path
		}
		return nil, fmt.Errorf("sqlite: checking user conflict: %w", err)
	}

	return &u, nil
}

// UpdateProfile persists the editable profile fields (first/last name,
// username, email). The password hash and created_at are untouched.
func (s *UserStore) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE users
		 SET first_name = ?, last_name = ?, username = ?, email = ?, updated_at = ?
		 WHERE id = ?`,
		user.FirstName,
		user.LastName,
		user.Username,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("email", "email or username already taken")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// UpdatePassword replaces the stored hash. Nothing else on the row moves
// except updated_at.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}

// UsernamesByIDs returns id → current username for the given ids. Used by
// the question read paths to overwrite stale denormalized usernames.
func (s *UserStore) UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	usernames := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return usernames, nil
	}

	// database/sql has no slice expansion — build one placeholder per id.
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, username FROM users WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: looking up usernames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return nil, fmt.Errorf("sqlite: scanning username row: %w", err)
		}
		usernames[id] = username
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating usernames: %w", err)
	}

	return usernames, nil
}
