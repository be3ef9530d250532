package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// ApplicationStore implements repository.ApplicationRepository against
// the applications table.
type ApplicationStore struct {
	conn *sql.DB
}

// compile-time check that *ApplicationStore implements repository.ApplicationRepository
var _ repository.ApplicationRepository = (*ApplicationStore)(nil)

// Create inserts a new application. The caller is responsible for having
// filled UserID and the defaulted fields; this layer only generates the id
// and timestamps.
func (s *ApplicationStore) Create(ctx context.Context, app *model.Application) error {
	app.ID = xid.New().String()
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, company, role, status, submitted_at, url, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID,
		app.UserID,
		app.Company,
		app.Role,
		app.Status,
		app.SubmittedAt,
		app.URL,
		app.Notes,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating application: %w", err)
	}

	return nil
}

// ListByUser returns every application owned by userID, newest first.
func (s *ApplicationStore) ListByUser(ctx context.Context, userID string) ([]model.Application, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, user_id, company, role, status, submitted_at, url, notes, created_at, updated_at
		 FROM applications
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing applications: %w", err)
	}
	defer rows.Close()

	applications := []model.Application{}
	for rows.Next() {
		var a model.Application
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Company, &a.Role, &a.Status,
			&a.SubmittedAt, &a.URL, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning application row: %w", err)
		}
		applications = append(applications, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating applications: %w", err)
	}

	return applications, nil
}

// GetForUser retrieves a single application if it exists AND belongs to
// userID. An existing record owned by someone else yields the same
// NotFound as a missing one — the WHERE clause can't tell them apart, and
// neither should the caller.
func (s *ApplicationStore) GetForUser(ctx context.Context, userID, id string) (*model.Application, error) {
	var a model.Application

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, company, role, status, submitted_at, url, notes, created_at, updated_at
		 FROM applications
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&a.ID, &a.UserID, &a.Company, &a.Role, &a.Status,
		&a.SubmittedAt, &a.URL, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("application", id)
		}
		return nil, fmt.Errorf("sqlite: getting application %s: %w", id, err)
	}

	return &a, nil
}

// UpdateForUser rewrites the mutable fields of an owned application.
// RowsAffected == 0 means "no such record in this owner's view" → NotFound.
func (s *ApplicationStore) UpdateForUser(ctx context.Context, userID string, app *model.Application) error {
	app.UpdatedAt = time.Now().UTC()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE applications
		 SET company = ?, role = ?, status = ?, submitted_at = ?, url = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		app.Company,
		app.Role,
		app.Status,
		app.SubmittedAt,
		app.URL,
		app.Notes,
		app.UpdatedAt,
		app.ID,
		userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating application %s: %w", app.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", app.ID)
	}

	return nil
}

// DeleteForUser removes an owned application. Deleting the same id twice
// yields NotFound the second time — same pattern as UpdateForUser.
func (s *ApplicationStore) DeleteForUser(ctx context.Context, userID, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM applications WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting application %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("application", id)
	}

	return nil
}
