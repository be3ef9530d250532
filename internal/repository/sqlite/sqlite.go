// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means a C compiler on every build host
// and painful cross-compilation. modernc.org/sqlite is a pure Go
// translation of SQLite — works everywhere Go works.
//
// The store is treated as a document store with three collections (users,
// applications, questions): records are addressed by an opaque generated
// id, and queries are simple filter/sort/paginate operations plus one
// grouping aggregation for companies.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-collection
// stores. One DB is created at startup, injected into the services, and
// closed on shutdown — the only process-wide shared resource.
type DB struct {
	conn *sql.DB
}

// Users returns the users collection store.
func (db *DB) Users() *UserStore { return &UserStore{conn: db.conn} }

// Applications returns the applications collection store.
func (db *DB) Applications() *ApplicationStore { return &ApplicationStore{conn: db.conn} }

// Questions returns the questions collection store.
func (db *DB) Questions() *QuestionStore { return &QuestionStore{conn: db.conn} }

// New opens the database at dbPath (":memory:" for tests), applies the
// connection PRAGMAs, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its OWN empty
	// database, so the pool must stay at a single connection there.
	if strings.Contains(dbPath, ":memory:") {
		conn.SetMaxOpenConns(1)
	}

	// Force an immediate connection so a bad path surfaces here rather
	// than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress — required
	// for a web server where requests hit the DB concurrently.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates or updates the schema. CREATE TABLE IF NOT EXISTS keeps
// every step idempotent, so migrate is safe to run on every startup.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			first_name    TEXT NOT NULL,
			last_name     TEXT NOT NULL,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL REFERENCES users(id),
			company      TEXT NOT NULL DEFAULT 'unknown',
			role         TEXT NOT NULL DEFAULT '',
			status       TEXT NOT NULL DEFAULT 'applied',
			submitted_at DATETIME NOT NULL,
			url          TEXT NOT NULL DEFAULT '',
			notes        TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id);
		CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating applications table: %w", err)
	}

	// author_user_id is intentionally NOT a foreign key: historical rows
	// imported from earlier data may carry only an email, and ownership
	// checks fall back to author_email for those.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id              TEXT PRIMARY KEY,
			company         TEXT NOT NULL,
			role            TEXT NOT NULL DEFAULT '',
			question_title  TEXT NOT NULL,
			question_detail TEXT NOT NULL DEFAULT '',
			author_user_id  TEXT NOT NULL DEFAULT '',
			author_email    TEXT NOT NULL DEFAULT '',
			author_username TEXT NOT NULL DEFAULT '',
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_questions_created_at ON questions(created_at);
		CREATE INDEX IF NOT EXISTS idx_questions_company ON questions(company COLLATE NOCASE);
	`)
	if err != nil {
		return fmt.Errorf("creating questions table: %w", err)
	}

	// difficulty/tips were promoted out of the question_detail free text
	// into first-class optional columns. ALTER TABLE errors if the column
	// exists, so we check pragma_table_info first.
	if err := db.addColumnIfNotExists("questions", "difficulty",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding difficulty to questions: %w", err)
	}
	if err := db.addColumnIfNotExists("questions", "tips",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding tips to questions: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already
// exist, keeping ALTER TABLE migrations idempotent.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil // column already exists
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite surfaces these as plain errors whose message
// carries the constraint text, so we sniff the message rather than a code.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
