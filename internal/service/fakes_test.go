package service

// Hand-written in-memory fakes for the repository interfaces. They store
// data in maps, keep insertion order where the real store orders by
// created_at, and return the same apperror values the sqlite layer does —
// so errors.Is assertions hit the exact paths the handlers see.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// FAKE USER REPOSITORY
// =========================================================================

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (f *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == identifier || user.Username == identifier {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", identifier)
}

// FindConflict mirrors the sqlite store's email-first precedence.
func (f *fakeUserRepo) FindConflict(_ context.Context, excludeID, email, username string) (*model.User, error) {
	var byUsername *model.User
	for _, user := range f.users {
		if user.ID == excludeID {
			continue
		}
		if user.Email == email {
			result := *user
			return &result, nil
		}
		if user.Username == username {
			byUsername = user
		}
	}
	if byUsername != nil {
		result := *byUsername
		return &result, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UsernamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			result[id] = user.Username
		}
	}
	return result, nil
}

// =========================================================================
// FAKE APPLICATION REPOSITORY
// =========================================================================

type fakeApplicationRepo struct {
	applications map[string]*model.Application
	order        []string // insertion order; ListByUser returns newest first
	nextID       int
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: make(map[string]*model.Application)}
}

func (f *fakeApplicationRepo) Create(_ context.Context, app *model.Application) error {
	f.nextID++
	app.ID = fmt.Sprintf("app-%d", f.nextID)
	stored := *app
	f.applications[app.ID] = &stored
	f.order = append(f.order, app.ID)
	return nil
}

func (f *fakeApplicationRepo) ListByUser(_ context.Context, userID string) ([]model.Application, error) {
	result := []model.Application{}
	for i := len(f.order) - 1; i >= 0; i-- {
		app := f.applications[f.order[i]]
		if app != nil && app.UserID == userID {
			result = append(result, *app)
		}
	}
	return result, nil
}

func (f *fakeApplicationRepo) GetForUser(_ context.Context, userID, id string) (*model.Application, error) {
	app, ok := f.applications[id]
	if !ok || app.UserID != userID {
		return nil, apperror.NotFound("application", id)
	}
	result := *app
	return &result, nil
}

func (f *fakeApplicationRepo) UpdateForUser(_ context.Context, userID string, app *model.Application) error {
	stored, ok := f.applications[app.ID]
	if !ok || stored.UserID != userID {
		return apperror.NotFound("application", app.ID)
	}
	copied := *app
	copied.UserID = userID
	f.applications[app.ID] = &copied
	return nil
}

func (f *fakeApplicationRepo) DeleteForUser(_ context.Context, userID, id string) error {
	app, ok := f.applications[id]
	if !ok || app.UserID != userID {
		return apperror.NotFound("application", id)
	}
	delete(f.applications, id)
	return nil
}

// =========================================================================
// FAKE QUESTION REPOSITORY
// =========================================================================

type fakeQuestionRepo struct {
	questions map[string]*model.Question
	order     []string // insertion order; "recent" sort walks it backwards
	nextID    int
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[string]*model.Question)}
}

func (f *fakeQuestionRepo) Create(_ context.Context, q *model.Question) error {
	f.nextID++
	q.ID = fmt.Sprintf("question-%d", f.nextID)
	stored := *q
	f.questions[q.ID] = &stored
	f.order = append(f.order, q.ID)
	return nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id string) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	result := *q
	return &result, nil
}

func matchesFilter(q *model.Question, filter repository.QuestionFilter) bool {
	if filter.Company != "" &&
		!strings.Contains(strings.ToLower(q.Company), strings.ToLower(filter.Company)) {
		return false
	}
	if filter.Role != "" &&
		!strings.Contains(strings.ToLower(q.Role), strings.ToLower(filter.Role)) {
		return false
	}
	return true
}

func (f *fakeQuestionRepo) matching(filter repository.QuestionFilter) []model.Question {
	result := []model.Question{}
	for _, id := range f.order {
		q := f.questions[id]
		if q != nil && matchesFilter(q, filter) {
			result = append(result, *q)
		}
	}
	return result
}

func (f *fakeQuestionRepo) Count(_ context.Context, filter repository.QuestionFilter) (int, error) {
	return len(f.matching(filter)), nil
}

func (f *fakeQuestionRepo) List(_ context.Context, filter repository.QuestionFilter, page repository.PageOptions) ([]model.Question, error) {
	matched := f.matching(filter)
	if page.Sort != repository.SortOldest {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if page.Offset >= len(matched) {
		return []model.Question{}, nil
	}
	matched = matched[page.Offset:]
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, q *model.Question) error {
	stored, ok := f.questions[q.ID]
	if !ok {
		return apperror.NotFound("question", q.ID)
	}
	copied := *q
	// Author columns are never part of an update.
	copied.AuthorUserID = stored.AuthorUserID
	copied.AuthorEmail = stored.AuthorEmail
	copied.AuthorUsername = stored.AuthorUsername
	f.questions[q.ID] = &copied
	return nil
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.questions[id]; !ok {
		return apperror.NotFound("question", id)
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionRepo) SyncAuthor(_ context.Context, userID, oldEmail, newEmail, newUsername string) (int64, error) {
	var synced int64
	for _, q := range f.questions {
		if q.AuthorUserID == userID || q.AuthorEmail == oldEmail {
			q.AuthorEmail = newEmail
			q.AuthorUsername = newUsername
			synced++
		}
	}
	return synced, nil
}

func (f *fakeQuestionRepo) AggregateCompanies(_ context.Context, search string) ([]model.Company, error) {
	counts := map[string]int{}
	firstSeen := map[string]string{}
	for _, id := range f.order {
		q := f.questions[id]
		if q == nil {
			continue
		}
		key := strings.ToLower(q.Company)
		if search != "" && !strings.Contains(key, strings.ToLower(search)) {
			continue
		}
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = q.Company
		}
		counts[key]++
	}

	result := []model.Company{}
	for key, count := range counts {
		result = append(result, model.Company{
			Name:           firstSeen[key],
			ResourcesCount: count,
			Logo:           "https://logo.clearbit.com/" + key + ".com",
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ResourcesCount != result[j].ResourcesCount {
			return result[i].ResourcesCount > result[j].ResourcesCount
		}
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result, nil
}

// Guard: the fakes must keep implementing the real interfaces.
var (
	_ repository.UserRepository        = (*fakeUserRepo)(nil)
	_ repository.ApplicationRepository = (*fakeApplicationRepo)(nil)
	_ repository.QuestionRepository    = (*fakeQuestionRepo)(nil)
)
