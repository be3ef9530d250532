// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the implementation;
// tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/jobtrack/internal/model"
)

// Question sort orders.
const (
	SortRecent = "recent" // createdAt descending (default)
	SortOldest = "oldest" // createdAt ascending
)

// QuestionFilter narrows question listings and counts. Company and Role
// are case-insensitive substring matches; empty means "no filter".
type QuestionFilter struct {
	Company string
	Role    string
}

// PageOptions selects one page of a question listing.
type PageOptions struct {
	Sort   string // SortRecent or SortOldest
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByIdentifier resolves a login identifier that may be either an
	// email address or a username.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	// FindConflict returns a user (other than excludeID) holding the given
	// email or username, or nil if neither is taken. When both fields
	// collide on different rows, the email match is returned.
	FindConflict(ctx context.Context, excludeID, email, username string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UsernamesByIDs returns id → current username for the given user ids.
	// Missing ids are simply absent from the map.
	UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// ApplicationRepository is strictly owner-scoped: every single-record
// operation carries the owner's user id in its WHERE clause, so a record
// belonging to another user is indistinguishable from one that doesn't
// exist.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	// ListByUser returns the owner's applications, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Application, error)
	GetForUser(ctx context.Context, userID, id string) (*model.Application, error)
	UpdateForUser(ctx context.Context, userID string, app *model.Application) error
	DeleteForUser(ctx context.Context, userID, id string) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	Count(ctx context.Context, filter QuestionFilter) (int, error)
	List(ctx context.Context, filter QuestionFilter, page PageOptions) ([]model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string) error
	// SyncAuthor rewrites the denormalized author fields on every question
	// matching the user by id or by their previous email. Returns the
	// number of rows touched.
	SyncAuthor(ctx context.Context, userID, oldEmail, newEmail, newUsername string) (int64, error)
	// AggregateCompanies groups questions by lower-cased company name,
	// keeping the first-seen original casing, ordered by descending count.
	// search, when non-empty, is a case-insensitive substring filter.
	AggregateCompanies(ctx context.Context, search string) ([]model.Company, error)
}
