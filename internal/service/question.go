package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// Pagination defaults for question listings.
const (
	DefaultQuestionPage  = 1
	DefaultQuestionLimit = 10
)

var validDifficulties = map[string]bool{
	model.DifficultyEasy:   true,
	model.DifficultyMedium: true,
	model.DifficultyHard:   true,
}

// QuestionService handles the Interview Hub business logic: public
// listing/reading with live username enrichment, and author-only mutation.
type QuestionService struct {
	questions repository.QuestionRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewQuestionService creates a new QuestionService. The user repository is
// needed for the live username lookups on the read paths.
func NewQuestionService(questions repository.QuestionRepository, users repository.UserRepository, logger *slog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		users:     users,
		logger:    logger,
	}
}

// QuestionInput carries the client-editable fields for creating a
// question. Author fields are never part of the input — they are stamped
// from the verified identity.
type QuestionInput struct {
	Company        string
	Role           string
	QuestionTitle  string
	QuestionDetail string
	Difficulty     string
	Tips           string
}

// QuestionPatch is a partial update: nil means "leave the field alone",
// a non-nil pointer (even to "") means "set it". Fields outside this
// struct — author identity, timestamps — cannot be patched at all; the
// handler's decode simply drops them.
type QuestionPatch struct {
	Company        *string
	Role           *string
	QuestionTitle  *string
	QuestionDetail *string
	Difficulty     *string
	Tips           *string
}

// QuestionPage is one page of a question listing plus its pagination
// bookkeeping.
type QuestionPage struct {
	Questions      []model.Question `json:"questions"`
	TotalQuestions int              `json:"totalQuestions"`
	TotalPages     int              `json:"totalPages"`
	CurrentPage    int              `json:"currentPage"`
	Limit          int              `json:"limit"`
}

// Create validates and saves a new question, stamping the author fields
// from the verified identity. Client-supplied author fields never reach
// this method — that's the anti-spoofing invariant.
func (s *QuestionService) Create(ctx context.Context, identity auth.Identity, input QuestionInput) (*model.Question, error) {
	input.Company = strings.TrimSpace(input.Company)
	input.QuestionTitle = strings.TrimSpace(input.QuestionTitle)

	if input.Company == "" || input.QuestionTitle == "" {
		return nil, apperror.ValidationFailed("", "company and questionTitle are required")
	}
	if input.Difficulty != "" && !validDifficulties[input.Difficulty] {
		return nil, apperror.ValidationFailed("difficulty", "difficulty must be Easy, Medium or Hard")
	}

	question := &model.Question{
		Company:        input.Company,
		Role:           strings.TrimSpace(input.Role),
		QuestionTitle:  input.QuestionTitle,
		QuestionDetail: strings.TrimSpace(input.QuestionDetail),
		Difficulty:     input.Difficulty,
		Tips:           strings.TrimSpace(input.Tips),
		AuthorUserID:   identity.ID,
		AuthorEmail:    identity.Email,
		AuthorUsername: identity.Username,
	}

	if err := s.questions.Create(ctx, question); err != nil {
		s.logger.Error("failed to create question",
			slog.String("userID", identity.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.logger.Info("question created",
		slog.String("id", question.ID),
		slog.String("company", question.Company),
	)

	return question, nil
}

// List returns one page of questions matching the filter, with pagination
// metadata and fresh usernames.
//
// page and limit must both be ≥ 1; sort accepts "oldest" for ascending and
// treats anything else as "recent" (descending).
func (s *QuestionService) List(ctx context.Context, filter repository.QuestionFilter, sort string, page, limit int) (*QuestionPage, error) {
	if page < 1 {
		return nil, apperror.ValidationFailed("page", "invalid page number")
	}
	if limit < 1 {
		return nil, apperror.ValidationFailed("limit", "invalid limit")
	}
	if sort != repository.SortOldest {
		sort = repository.SortRecent
	}

	total, err := s.questions.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting questions: %w", err)
	}

	totalPages := (total + limit - 1) / limit

	questions, err := s.questions.List(ctx, filter, repository.PageOptions{
		Sort:   sort,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}

	if err := s.refreshUsernames(ctx, questions); err != nil {
		return nil, fmt.Errorf("refreshing usernames: %w", err)
	}

	return &QuestionPage{
		Questions:      questions,
		TotalQuestions: total,
		TotalPages:     totalPages,
		CurrentPage:    page,
		Limit:          limit,
	}, nil
}

// Get returns a single question. The username refresh here is
// best-effort: a failed lookup logs and returns the stored value rather
// than failing the whole request.
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "question id is required")
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	page := []model.Question{*question}
	if err := s.refreshUsernames(ctx, page); err != nil {
		s.logger.Warn("username refresh failed for question",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return question, nil
	}

	return &page[0], nil
}

// refreshUsernames overwrites the denormalized AuthorUsername on each
// question with the author's CURRENT username. This is the live-join
// compensation for username drift: the stored value is only a
// point-in-time snapshot, and profile edits can leave it stale. Authors
// that no longer resolve (deleted accounts, legacy email-only rows) keep
// their stored value.
func (s *QuestionService) refreshUsernames(ctx context.Context, questions []model.Question) error {
	seen := make(map[string]bool)
	ids := []string{}
	for _, q := range questions {
		if q.AuthorUserID != "" && !seen[q.AuthorUserID] {
			seen[q.AuthorUserID] = true
			ids = append(ids, q.AuthorUserID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	usernames, err := s.users.UsernamesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range questions {
		if current, ok := usernames[questions[i].AuthorUserID]; ok {
			questions[i].AuthorUsername = current
		}
	}

	return nil
}

// authorize checks that the caller may mutate the question. The stable
// internal user id is the primary ownership key; the stored author email
// is an explicit fallback for legacy rows that predate id stamping.
func authorize(identity auth.Identity, question *model.Question, action string) error {
	if question.AuthorUserID != "" {
		if question.AuthorUserID == identity.ID {
			return nil
		}
	} else if question.AuthorEmail == identity.Email {
		return nil
	}
	return apperror.Forbidden("not authorized to " + action + " this question")
}

// Update merges the allow-listed fields into an existing question. Fails
// NotFound if the question doesn't exist, Forbidden if the caller isn't
// its author, and Validation if the patch contains nothing settable.
func (s *QuestionService) Update(ctx context.Context, identity auth.Identity, id string, patch QuestionPatch) (*model.Question, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "question id is required")
	}

	// Existence first, then ownership: a missing question is 404 for
	// everyone, an existing one is 403 for non-authors. Questions are
	// public, so there is no existence to hide.
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(identity, question, "update"); err != nil {
		return nil, err
	}

	touched := false
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			touched = true
		}
	}
	setString(&question.Company, patch.Company)
	setString(&question.Role, patch.Role)
	setString(&question.QuestionTitle, patch.QuestionTitle)
	setString(&question.QuestionDetail, patch.QuestionDetail)
	setString(&question.Difficulty, patch.Difficulty)
	setString(&question.Tips, patch.Tips)

	if !touched {
		return nil, apperror.ValidationFailed("", "no valid fields")
	}
	if question.Company == "" || question.QuestionTitle == "" {
		return nil, apperror.ValidationFailed("", "company and questionTitle are required")
	}
	if question.Difficulty != "" && !validDifficulties[question.Difficulty] {
		return nil, apperror.ValidationFailed("difficulty", "difficulty must be Easy, Medium or Hard")
	}

	if err := s.questions.Update(ctx, question); err != nil {
		return nil, err
	}

	s.logger.Info("question updated",
		slog.String("id", id),
		slog.String("userID", identity.ID),
	)

	return question, nil
}

// Delete removes a question after the same existence and ownership checks
// as Update.
func (s *QuestionService) Delete(ctx context.Context, identity auth.Identity, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "question id is required")
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(identity, question, "delete"); err != nil {
		return err
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("question deleted",
		slog.String("id", id),
		slog.String("userID", identity.ID),
	)
	return nil
}
