package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/jobtrack/internal/apperror"
	"github.com/sakif/jobtrack/internal/auth"
	"github.com/sakif/jobtrack/internal/model"
	"github.com/sakif/jobtrack/internal/service"
)

// AuthHandler exposes registration, login, and the authenticated profile
// endpoints.
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// userPayload is the public projection of a user. The password hash never
// leaves the model (json:"-"), but we keep an explicit response struct so
// adding a column to User can't silently widen the API.
type userPayload struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

func profileOf(u *model.User) userPayload {
	return userPayload{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Email:     u.Email,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"firstName","lastName","username","email","password"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	if _, err := h.service.Register(r.Context(), service.RegisterInput(body)); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "user registered successfully",
	})
}

// HandleLogin authenticates by email or username and returns a signed
// token plus the user's public profile.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"identifier","password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	result, err := h.service.Login(r.Context(), input.Identifier, input.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := profileOf(result.User)
	user.ID = result.User.ID

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   result.Token,
		"user":    user,
	})
}

// HandleGetProfile returns the authenticated user's profile.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	user, err := h.service.GetProfile(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileOf(user))
}

// HandleUpdateProfile updates the name, username and email of the
// authenticated user, keeping denormalized question author fields in step.
//
// HTTP: PUT /api/auth/me
// REQUEST BODY: {"firstName","lastName","username","email"}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var body struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Username  string `json:"username"`
		Email     string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), identity, service.ProfileInput(body))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile updated successfully",
		"user":    profileOf(user),
	})
}

// HandleUpdatePassword changes the authenticated user's password after
// verifying the current one.
//
// HTTP: PUT /api/auth/me/password
// REQUEST BODY: {"currentPassword","newPassword"}
func (h *AuthHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthenticated("valid authentication required"))
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	if err := h.service.UpdatePassword(r.Context(), identity.ID, input.CurrentPassword, input.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "password updated successfully",
	})
}
