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

// QuestionStore implements repository.QuestionRepository against the
// questions table.
type QuestionStore struct {
	conn *sql.DB
}

// compile-time check that *QuestionStore implements repository.QuestionRepository
var _ repository.QuestionRepository = (*QuestionStore)(nil)

const questionColumns = `id, company, role, question_title, question_detail,
	difficulty, tips, author_user_id, author_email, author_username, created_at, updated_at`

// Create inserts a new question. Author fields arrive already stamped by
// the service from the verified identity.
func (s *QuestionStore) Create(ctx context.Context, q *model.Question) error {
	q.ID = xid.New().String()
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO questions (`+questionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID,
		q.Company,
		q.Role,
		q.QuestionTitle,
		q.QuestionDetail,
		q.Difficulty,
		q.Tips,
		q.AuthorUserID,
		q.AuthorEmail,
		q.AuthorUsername,
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating question: %w", err)
	}

	return nil
}

// GetByID retrieves a single question.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question

	err := s.conn.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ?`,
		id,
	).Scan(
		&q.ID, &q.Company, &q.Role, &q.QuestionTitle, &q.QuestionDetail,
		&q.Difficulty, &q.Tips, &q.AuthorUserID, &q.AuthorEmail, &q.AuthorUsername,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("sqlite: getting question %s: %w", id, err)
	}

	return &q, nil
}

// questionWhere builds the shared WHERE clause for Count and List.
// Filters are case-insensitive substring matches; instr/lower keeps "%"
// and "_" in user input literal (unlike LIKE).
func questionWhere(filter repository.QuestionFilter) (string, []any) {
	where := `1 = 1`
	args := []any{}

	if filter.Company != "" {
		where += ` AND instr(lower(company), lower(?)) > 0`
		args = append(args, filter.Company)
	}
	if filter.Role != "" {
		where += ` AND instr(lower(role), lower(?)) > 0`
		args = append(args, filter.Role)
	}

	return where, args
}

// Count returns the number of questions matching the filter — the basis
// for totalPages in paginated listings.
func (s *QuestionStore) Count(ctx context.Context, filter repository.QuestionFilter) (int, error) {
	where, args := questionWhere(filter)

	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE `+where,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting questions: %w", err)
	}

	return count, nil
}

// List returns one page of questions matching the filter.
func (s *QuestionStore) List(ctx context.Context, filter repository.QuestionFilter, page repository.PageOptions) ([]model.Question, error) {
	where, args := questionWhere(filter)

	// The sort order is picked from a fixed whitelist — page.Sort never
	// reaches the SQL text.
	order := `created_at DESC`
	if page.Sort == repository.SortOldest {
		order = `created_at ASC`
	}

	args = append(args, page.Limit, page.Offset)
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE `+where+`
		 ORDER BY `+order+`
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing questions: %w", err)
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.Company, &q.Role, &q.QuestionTitle, &q.QuestionDetail,
			&q.Difficulty, &q.Tips, &q.AuthorUserID, &q.AuthorEmail, &q.AuthorUsername,
			&q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning question row: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating questions: %w", err)
	}

	return questions, nil
}

// Update rewrites the author-editable fields. The author columns
// and created_at are deliberately absent from the SET list — they are
// immutable through this path no matter what the caller passes.
func (s *QuestionStore) Update(ctx context.Context, q *model.Question) error {
	q.UpdatedAt = time.Now().UTC()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE questions
		 SET company = ?, role = ?, question_title = ?, question_detail = ?,
		     difficulty = ?, tips = ?, updated_at = ?
		 WHERE id = ?`,
		q.Company,
		q.Role,
		q.QuestionTitle,
		q.QuestionDetail,
		q.Difficulty,
		q.Tips,
		q.UpdatedAt,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating question %s: %w", q.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", q.ID)
	}

	return nil
}

// Delete removes a question by id.
func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM questions WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting question %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("question", id)
	}

	return nil
}

// SyncAuthor re-syncs the denormalized author fields after a profile edit.
// Matching by user id OR previous email catches historical rows that were
// written before ids were stamped (or by a re-registered account with the
// same email).
func (s *QuestionStore) SyncAuthor(ctx context.Context, userID, oldEmail, newEmail, newUsername string) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE questions
		 SET author_email = ?, author_username = ?
		 WHERE author_user_id = ? OR author_email = ?`,
		newEmail,
		newUsername,
		userID,
		oldEmail,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: syncing question authors for user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// AggregateCompanies groups questions by lower-cased company name and
// counts rows per group, ordered by descending count.
//
// The self-join on MIN(rowid) pulls the company spelling of the FIRST row
// ever filed for that group, so "Acme" stays "Acme" even if later entries
// say "ACME". No pagination: the result is bounded by distinct-company
// cardinality, not row cardinality.
func (s *QuestionStore) AggregateCompanies(ctx context.Context, search string) ([]model.Company, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT q.company, g.cnt
		 FROM questions q
		 JOIN (
		     SELECT lower(company) AS grp, COUNT(*) AS cnt, MIN(rowid) AS first_row
		     FROM questions
		     WHERE ? = '' OR instr(lower(company), lower(?)) > 0
		     GROUP BY lower(company)
		 ) g ON q.rowid = g.first_row
		 ORDER BY g.cnt DESC, lower(q.company) ASC`,
		search, search,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: aggregating companies: %w", err)
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.Name, &c.ResourcesCount); err != nil {
			return nil, fmt.Errorf("sqlite: scanning company row: %w", err)
		}
		// Best-effort logo reference, derived from the name. Nothing
		// verifies the host actually has an image for it.
		c.Logo = "https://logo.clearbit.com/" + strings.ToLower(c.Name) + ".com"
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating companies: %w", err)
	}

	return companies, nil
}
