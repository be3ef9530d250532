package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/repository"
	"github.com/sakif/jobtrack/internal/service"
)

// QuestionHandler serves the Interview Hub: question reads are public,
// mutations require authentication and authorship.
type QuestionHandler struct {
	service *service.QuestionService
	logger  *slog.Logger
}

func NewQuestionHandler(service *service.QuestionService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{service: service, logger: logger}
}

// questionInput is the decode target for both create and update. Pointers
// let update distinguish an omitted field from one explicitly set to "".
// Author fields are deliberately absent: they come from the token, so a
// spoofed "userId" in the body is simply dropped by the decoder.
type questionInput struct {
	Company        *string `json:"company"`
	Role           *string `json:"role"`
	QuestionTitle  *string `json:"questionTitle"`
	QuestionDetail *string `json:"questionDetail"`
	Difficulty     *string `json:"difficulty"`
	Tips           *string `json:"tips"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HandleCreate publishes a new interview question authored by the
// authenticated user.
//
// HTTP: POST /api/questions
// REQUEST BODY: {"company","role","questionTitle","questionDetail","difficulty","tips"}
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var input questionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	question, err := h.service.Create(r.Context(), identity, service.QuestionInput{
		Company:        deref(input.Company),
		Role:           deref(input.Role),
		QuestionTitle:  deref(input.QuestionTitle),
		QuestionDetail: deref(input.QuestionDetail),
		Difficulty:     deref(input.Difficulty),
		Tips:           deref(input.Tips),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, question)
}

// HandleList returns a page of questions with fresh author usernames.
//
// HTTP: GET /api/questions?company=&role=&sort=&page=&limit=
//
// company and role are case-insensitive substring filters. sort is
// "recent" (default) or "oldest". page defaults to 1, limit to 10;
// non-numeric values are a 400.
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := service.DefaultQuestionPage
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("page", "invalid page number"))
			return
		}
		page = n
	}

	limit := service.DefaultQuestionLimit
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperror.ValidationFailed("limit", "invalid limit"))
			return
		}
		limit = n
	}

	result, err := h.service.List(r.Context(), repository.QuestionFilter{
		Company: query.Get("company"),
		Role:    query.Get("role"),
	}, query.Get("sort"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet returns one question by id.
//
// HTTP: GET /api/questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, question)
}

// HandleUpdate applies a partial update to a question the authenticated
// user authored. A body with none of the editable fields is a 400.
//
// HTTP: PUT /api/questions/{id}
func (h *QuestionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var input questionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	if _, err := h.service.Update(r.Context(), identity, r.PathValue("id"), service.QuestionPatch{
		Company:        input.Company,
		Role:           input.Role,
		QuestionTitle:  input.QuestionTitle,
		QuestionDetail: input.QuestionDetail,
		Difficulty:     input.Difficulty,
		Tips:           input.Tips,
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "question updated successfully",
	})
}

// HandleDelete removes a question the authenticated user authored.
//
// HTTP: DELETE /api/questions/{id}
func (h *QuestionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), identity, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "question deleted successfully",
	})
}
