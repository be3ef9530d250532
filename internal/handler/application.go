package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/service"
)

// ApplicationHandler manages the owner-scoped job application CRUD. Every
// route here sits behind RequireAuth, so the identity is always present
// and the owner id never comes from the request body or URL.
type ApplicationHandler struct {
	service *service.ApplicationService
	logger  *slog.Logger
}

func NewApplicationHandler(service *service.ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, logger: logger}
}

// applicationInput mirrors service.ApplicationInput with the wire field
// names. SubmittedAt stays a pointer so an omitted timestamp can default
// to now.
type applicationInput struct {
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	SubmittedAt *time.Time `json:"submittedAt"`
	URL         string     `json:"url"`
	Notes       string     `json:"notes"`
}

// applicationResponse pairs a confirmation message with the stored record.
// Embedding flattens the application fields to the top level of the JSON.
type applicationResponse struct {
	Message string `json:"message"`
	*model.Application
}

func (h *ApplicationHandler) owner(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
	}
	return identity, ok
}

// HandleCreate records a new job application for the authenticated user.
//
// HTTP: POST /api/applications
// REQUEST BODY: {"company","role","submittedAt","url","notes"}
//
// Status is always forced to "applied" on create; missing company defaults
// to "unknown" and missing submittedAt to the current time.
func (h *ApplicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.owner(w, r)
	if !ok {
		return
	}

	var body applicationInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	application, err := h.service.Create(r.Context(), identity.ID, service.ApplicationInput(body))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, applicationResponse{
		Message:     "application created successfully",
		Application: application,
	})
}

// HandleList returns all of the authenticated user's applications, newest
// first.
//
// HTTP: GET /api/applications
func (h *ApplicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.owner(w, r)
	if !ok {
		return
	}

	applications, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applications)
}

// HandleGet returns a single application owned by the authenticated user.
// Someone else's application id returns 404, not 403 — ownership is part
// of the lookup, so foreign ids look nonexistent.
//
// HTTP: GET /api/applications/{id}
func (h *ApplicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.owner(w, r)
	if !ok {
		return
	}

	application, err := h.service.Get(r.Context(), identity.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, application)
}

// HandleUpdate replaces an application's client-editable fields.
//
// HTTP: PUT /api/applications/{id}
// REQUEST BODY: {"company","role","status","submittedAt","url","notes"}
//
// This is a full replace, not a merge: fields omitted from the body fall
// back to their defaults (company "unknown", status "applied", submittedAt
// now), matching create semantics.
func (h *ApplicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.owner(w, r)
	if !ok {
		return
	}

	var body applicationInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	application, err := h.service.Update(r.Context(), identity.ID, r.PathValue("id"), service.ApplicationInput(body))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, applicationResponse{
		Message:     "application updated successfully",
		Application: application,
	})
}

// HandleDelete removes an application owned by the authenticated user.
//
// HTTP: DELETE /api/applications/{id}
func (h *ApplicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "application deleted successfully",
	})
}
