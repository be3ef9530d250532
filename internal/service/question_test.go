package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/repository"
)

// questionFixture seeds the fake repo directly, bypassing the service, so
// tests can build legacy rows (no author id) that Create would never
// produce.
type questionFixture struct {
	company        string
	role           string
	title          string
	difficulty     string
	authorID       string
	authorEmail    string
	authorUsername string
}

func mustCreateQuestion(t *testing.T, repo *fakeQuestionRepo, fx questionFixture) *model.Question {
	t.Helper()
	q := &model.Question{
		Company:        fx.company,
		Role:           fx.role,
		QuestionTitle:  fx.title,
		QuestionDetail: "detail",
		Difficulty:     fx.difficulty,
		AuthorUserID:   fx.authorID,
		AuthorEmail:    fx.authorEmail,
		AuthorUsername: fx.authorUsername,
	}
	if err := repo.Create(context.Background(), q); err != nil {
		t.Fatalf("seeding question: %v", err)
	}
	return q
}

func newTestQuestionService(t *testing.T) (*QuestionService, *fakeQuestionRepo, *fakeUserRepo) {
	t.Helper()
	questions := newFakeQuestionRepo()
	users := newFakeUserRepo()
	svc := NewQuestionService(questions, users, testLogger())
	return svc, questions, users
}

func aliceIdentity() auth.Identity {
	return auth.Identity{ID: "user-1", Email: "alice@example.com", Username: "alice"}
}

func seedUser(t *testing.T, users *fakeUserRepo, username string) auth.Identity {
	t.Helper()
	user := &model.User{
		FirstName: "Test", LastName: "User",
		Username: username, Email: username + "@example.com",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return auth.Identity{ID: user.ID, Email: user.Email, Username: user.Username}
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestQuestionCreate_StampsAuthorFromIdentity(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	q, err := svc.Create(context.Background(), aliceIdentity(), QuestionInput{
		Company:       "Acme",
		QuestionTitle: "Reverse a linked list",
		Difficulty:    model.DifficultyMedium,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if q.AuthorUserID != "user-1" || q.AuthorEmail != "alice@example.com" || q.AuthorUsername != "alice" {
		t.Errorf("author = %s/%s/%s, want identity values",
			q.AuthorUserID, q.AuthorEmail, q.AuthorUsername)
	}
}

func TestQuestionCreate_RequiredFields(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	tests := []struct {
		name  string
		input QuestionInput
	}{
		{"no company", QuestionInput{QuestionTitle: "t"}},
		{"no title", QuestionInput{Company: "Acme"}},
		{"whitespace company", QuestionInput{Company: "   ", QuestionTitle: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), aliceIdentity(), tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestQuestionCreate_InvalidDifficulty(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	_, err := svc.Create(context.Background(), aliceIdentity(), QuestionInput{
		Company: "Acme", QuestionTitle: "t", Difficulty: "Impossible",
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestQuestionList_PaginationMath(t *testing.T) {
	svc, questions, users := newTestQuestionService(t)
	alice := seedUser(t, users, "alice")

	for i := 0; i < 7; i++ {
		mustCreateQuestion(t, questions, questionFixture{
			company: "Acme", title: "q",
			authorID: alice.ID, authorEmail: alice.Email, authorUsername: alice.Username,
		})
	}

	page, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 2, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if page.TotalQuestions != 7 {
		t.Errorf("TotalQuestions = %d, want 7", page.TotalQuestions)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3 (ceil(7/3))", page.TotalPages)
	}
	if page.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d, want 2", page.CurrentPage)
	}
	if len(page.Questions) != 3 {
		t.Errorf("len(Questions) = %d, want 3", len(page.Questions))
	}
}

func TestQuestionList_LastPageIsPartial(t *testing.T) {
	svc, questions, users := newTestQuestionService(t)
	alice := seedUser(t, users, "alice")

	for i := 0; i < 7; i++ {
		mustCreateQuestion(t, questions, questionFixture{
			company: "Acme", title: "q",
			authorID: alice.ID, authorEmail: alice.Email, authorUsername: alice.Username,
		})
	}

	page, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 3, 3)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Questions) != 1 {
		t.Errorf("len(Questions) = %d, want 1 on the last page", len(page.Questions))
	}
}

func TestQuestionList_BeyondLastPageIsEmptyNotError(t *testing.T) {
	svc, questions, users := newTestQuestionService(t)
	alice := seedUser(t, users, "alice")
	mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: alice.ID, authorEmail: alice.Email, authorUsername: alice.Username,
	})

	page, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 99, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Questions) != 0 {
		t.Errorf("len(Questions) = %d, want 0", len(page.Questions))
	}
	if page.TotalQuestions != 1 {
		t.Errorf("TotalQuestions = %d, want 1", page.TotalQuestions)
	}
}

func TestQuestionList_InvalidPageAndLimit(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	if _, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 0, 10); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("page 0: error = %v, want ErrValidation", err)
	}
	if _, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", -1, 10); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("page -1: error = %v, want ErrValidation", err)
	}
	if _, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 1, 0); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("limit 0: error = %v, want ErrValidation", err)
	}
}

func TestQuestionList_LiveUsernames(t *testing.T) {
	// The stored username is stale; the listing must show the current one.
	svc, questions, users := newTestQuestionService(t)
	alice := seedUser(t, users, "alice")

	mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: alice.ID, authorEmail: alice.Email, authorUsername: "old-name",
	})

	page, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Questions[0].AuthorUsername != "alice" {
		t.Errorf("AuthorUsername = %q, want live %q", page.Questions[0].AuthorUsername, "alice")
	}
}

func TestQuestionList_DeletedAuthorKeepsStoredUsername(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)

	mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: "gone-user", authorEmail: "gone@example.com", authorUsername: "ghost",
	})

	page, err := svc.List(context.Background(), repository.QuestionFilter{}, "recent", 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Questions[0].AuthorUsername != "ghost" {
		t.Errorf("AuthorUsername = %q, want stored %q", page.Questions[0].AuthorUsername, "ghost")
	}
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestQuestionGet_NotFound(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestQuestionGet_RefreshesUsername(t *testing.T) {
	svc, questions, users := newTestQuestionService(t)
	alice := seedUser(t, users, "alice")

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: alice.ID, authorEmail: alice.Email, authorUsername: "old-name",
	})

	q, err := svc.Get(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if q.AuthorUsername != "alice" {
		t.Errorf("AuthorUsername = %q, want live %q", q.AuthorUsername, "alice")
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func strptr(s string) *string { return &s }

func TestQuestionUpdate_ByAuthor(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)
	identity := aliceIdentity()

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "old title",
		authorID: identity.ID, authorEmail: identity.Email, authorUsername: identity.Username,
	})

	updated, err := svc.Update(context.Background(), identity, seeded.ID, QuestionPatch{
		QuestionTitle: strptr("new title"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.QuestionTitle != "new title" {
		t.Errorf("QuestionTitle = %q, want %q", updated.QuestionTitle, "new title")
	}
	// Untouched fields survive a partial patch.
	if updated.Company != "Acme" {
		t.Errorf("Company = %q, want %q", updated.Company, "Acme")
	}
}

func TestQuestionUpdate_LegacyRowFallsBackToEmail(t *testing.T) {
	// Rows created before author ids were stamped have an empty
	// AuthorUserID; ownership then keys on the email.
	svc, questions, _ := newTestQuestionService(t)
	identity := aliceIdentity()

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "legacy",
		authorEmail: identity.Email, authorUsername: identity.Username,
	})

	if _, err := svc.Update(context.Background(), identity, seeded.ID, QuestionPatch{
		QuestionTitle: strptr("edited"),
	}); err != nil {
		t.Fatalf("Update() on legacy row by author: %v", err)
	}
}

func TestQuestionUpdate_NonAuthorForbidden(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: "someone-else", authorEmail: "else@example.com", authorUsername: "else",
	})

	_, err := svc.Update(context.Background(), aliceIdentity(), seeded.ID, QuestionPatch{
		QuestionTitle: strptr("hijacked"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}

func TestQuestionUpdate_MatchingEmailDoesNotTrumpID(t *testing.T) {
	// If the row HAS an author id, a caller with a matching email but a
	// different id is still forbidden — the id check is authoritative.
	svc, questions, _ := newTestQuestionService(t)
	identity := aliceIdentity()

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: "someone-else", authorEmail: identity.Email, authorUsername: "else",
	})

	_, err := svc.Update(context.Background(), identity, seeded.ID, QuestionPatch{
		QuestionTitle: strptr("hijacked"),
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}
}

func TestQuestionUpdate_EmptyPatch(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)
	identity := aliceIdentity()

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: identity.ID, authorEmail: identity.Email, authorUsername: identity.Username,
	})

	_, err := svc.Update(context.Background(), identity, seeded.ID, QuestionPatch{})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation for empty patch", err)
	}
}

func TestQuestionUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestQuestionService(t)

	_, err := svc.Update(context.Background(), aliceIdentity(), "missing", QuestionPatch{
		QuestionTitle: strptr("x"),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestQuestionDelete_ByAuthor(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)
	identity := aliceIdentity()

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: identity.ID, authorEmail: identity.Email, authorUsername: identity.Username,
	})

	if err := svc.Delete(context.Background(), identity, seeded.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// A second delete finds nothing.
	if err := svc.Delete(context.Background(), identity, seeded.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestQuestionDelete_NonAuthorForbidden(t *testing.T) {
	svc, questions, _ := newTestQuestionService(t)

	seeded := mustCreateQuestion(t, questions, questionFixture{
		company: "Acme", title: "q",
		authorID: "someone-else", authorEmail: "else@example.com", authorUsername: "else",
	})

	err := svc.Delete(context.Background(), aliceIdentity(), seeded.ID)
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("error = %v, want ErrForbidden", err)
	}

	// Still there.
	if _, err := questions.GetByID(context.Background(), seeded.ID); err != nil {
		t.Errorf("question should survive a forbidden delete: %v", err)
	}
}
