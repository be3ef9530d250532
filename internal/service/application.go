package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// validStatuses is the closed set of application statuses accepted on
// update. Create ignores client-supplied status entirely.
var validStatuses = map[string]bool{
	model.StatusApplied:   true,
	model.StatusInterview: true,
	model.StatusOffer:     true,
	model.StatusRejected:  true,
	model.StatusPending:   true,
}

// ApplicationService handles business logic for job applications. Every
// operation takes the owner's user id and scopes the repository call to
// it — ownership is enforced here and in the SQL, never in the handler.
type ApplicationService struct {
	repo   repository.ApplicationRepository
	logger *slog.Logger
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(repo repository.ApplicationRepository, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:   repo,
		logger: logger,
	}
}

// ApplicationInput carries the client-editable application fields.
// SubmittedAt is a pointer so "absent" (default to now) is distinguishable
// from an explicit value.
type ApplicationInput struct {
	Company     string
	Role        string
	Status      string
	SubmittedAt *time.Time
	URL         string
	Notes       string
}

// applyDefaults normalizes an input the same way for create and update:
// missing company becomes "unknown", missing status becomes "applied",
// missing submittedAt becomes now. Update deliberately reuses this — an
// update that omits company RESETS it to "unknown" rather than preserving
// the stored value. Quirky, but it is the documented contract and the
// frontend always sends the full form.
func applyDefaults(app *model.Application, input ApplicationInput) {
	app.Company = strings.TrimSpace(input.Company)
	if app.Company == "" {
		app.Company = "unknown"
	}
	app.Role = strings.TrimSpace(input.Role)
	app.Status = input.Status
	if app.Status == "" {
		app.Status = model.StatusApplied
	}
	if input.SubmittedAt != nil {
		app.SubmittedAt = *input.SubmittedAt
	} else {
		app.SubmittedAt = time.Now().UTC()
	}
	app.URL = strings.TrimSpace(input.URL)
	app.Notes = strings.TrimSpace(input.Notes)
}

// Create saves a new application for ownerID. Status is always "applied"
// on creation regardless of what the client sent. No duplicate detection:
// applying twice to the same company is a fact of life, not an error.
func (s *ApplicationService) Create(ctx context.Context, ownerID string, input ApplicationInput) (*model.Application, error) {
	app := &model.Application{UserID: ownerID}
	input.Status = model.StatusApplied
	applyDefaults(app, input)

	if err := s.repo.Create(ctx, app); err != nil {
		s.logger.Error("failed to create application",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating application: %w", err)
	}

	s.logger.Info("application created",
		slog.String("id", app.ID),
		slog.String("userID", ownerID),
		slog.String("company", app.Company),
	)

	return app, nil
}

// List returns all of ownerID's applications, newest first.
func (s *ApplicationService) List(ctx context.Context, ownerID string) ([]model.Application, error) {
	applications, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list applications",
			slog.String("userID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	return applications, nil
}

// Get returns a single owned application. A record owned by someone else
// yields NotFound, same as a missing one.
func (s *ApplicationService) Get(ctx context.Context, ownerID, id string) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application id is required")
	}

	return s.repo.GetForUser(ctx, ownerID, id)
}

// Update rewrites an owned application with the same defaulting rules as
// Create (see applyDefaults). An explicit status must come from the known
// set.
func (s *ApplicationService) Update(ctx context.Context, ownerID, id string, input ApplicationInput) (*model.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "application id is required")
	}
	if input.Status != "" && !validStatuses[input.Status] {
		return nil, apperror.ValidationFailed("status",
			"status must be one of applied, interview, offer, rejected, pending")
	}

	app := &model.Application{ID: id, UserID: ownerID}
	applyDefaults(app, input)

	if err := s.repo.UpdateForUser(ctx, ownerID, app); err != nil {
		return nil, err
	}

	s.logger.Info("application updated",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)

	// Re-read so the response carries created_at and the canonical stored
	// state, not just what we wrote.
	return s.repo.GetForUser(ctx, ownerID, id)
}

// Delete removes an owned application. Deleting twice yields NotFound the
// second time.
func (s *ApplicationService) Delete(ctx context.Context, ownerID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "application id is required")
	}

	if err := s.repo.DeleteForUser(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("application deleted",
		slog.String("id", id),
		slog.String("userID", ownerID),
	)
	return nil
}
