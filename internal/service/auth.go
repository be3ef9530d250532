// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate input,
// enforce ownership and uniqueness rules, and orchestrate the
// repositories; repositories talk to the database. Services accept
// primitives and context — never *http.Request — and return domain errors
// from internal/apperror, which the handlers translate to status codes.
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

// minPasswordLength applies to password changes. (Registration predates
// the rule and only requires a non-empty password.)
const minPasswordLength = 6

// AuthService handles registration, login, and self-profile management.
//
// It also owns the question denormalization repair: a profile edit
// re-syncs the author fields stored on question rows, so the questions
// repository is a dependency here too.
type AuthService struct {
	users     repository.UserRepository
	questions repository.QuestionRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	questions repository.QuestionRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		questions: questions,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is the full set of fields required to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// ProfileInput is the full set of editable profile fields. All four must
// be present on every profile update — partial patches are not accepted.
type ProfileInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
}

// AuthResult bundles a user with their issued token, so the login handler
// can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// Uniqueness is pre-checked so the error can name the colliding field;
// when both email and username are taken, the email conflict wins — the
// precedence is deterministic and tested.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.FirstName == "" || input.LastName == "" || input.Username == "" ||
		input.Email == "" || input.Password == "" {
		return nil, apperror.ValidationFailed("", "all fields are required")
	}

	existing, err := s.users.FindConflict(ctx, "", input.Email, input.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking registration conflict: %w", err)
	}
	if existing != nil {
		if existing.Email == input.Email {
			return nil, apperror.Conflict("email", "email already exists")
		}
		return nil, apperror.Conflict("username", "username already exists")
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies credentials and issues a token. The identifier matches
// against email OR username.
//
// NOTE: "user does not exist" and "incorrect password" are distinct
// messages, which allows account enumeration. Kept that way on purpose —
// registration's conflict messages already reveal the same information,
// and the frontend surfaces both messages verbatim.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperror.ValidationFailed("", "identifier and password are required")
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, apperror.ValidationFailed("identifier", "user does not exist")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.ValidationFailed("password", "incorrect password")
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetProfile returns the account for the authenticated identity.
// NotFound propagates as-is (404): the token was valid but the account is
// gone.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile edits the caller's own profile and then re-syncs the
// denormalized author fields on their questions.
//
// The repair pass is not transactional with the profile write: a crash in
// between leaves stale author_email/author_username values on question
// rows. That window is accepted — the read paths compensate with a live
// username lookup, and the pass result is logged so the sync is observed
// rather than silent.
func (s *AuthService) UpdateProfile(ctx context.Context, identity auth.Identity, input ProfileInput) (*model.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	if input.FirstName == "" || input.LastName == "" || input.Username == "" || input.Email == "" {
		return nil, apperror.ValidationFailed("", "all fields are required")
	}

	// Collision check excludes the caller — keeping your own email is not
	// a conflict.
	existing, err := s.users.FindConflict(ctx, identity.ID, input.Email, input.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: checking profile conflict: %w", err)
	}
	if existing != nil {
		if existing.Email == input.Email {
			return nil, apperror.Conflict("email", "email already taken")
		}
		return nil, apperror.Conflict("username", "username already taken")
	}

	user, err := s.users.GetByID(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Username = input.Username
	user.Email = input.Email

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating profile for user %s: %w", identity.ID, err)
	}

	// Repair pass: rewrite the author fields on every question this user
	// wrote, matching by id or by the pre-update email. A failure here
	// does not fail the profile update itself.
	synced, err := s.questions.SyncAuthor(ctx, identity.ID, identity.Email, input.Email, input.Username)
	if err != nil {
		s.logger.Error("question author sync failed",
			slog.String("userID", identity.ID),
			slog.String("error", err.Error()),
		)
	} else {
		s.logger.Info("profile updated",
			slog.String("userID", identity.ID),
			slog.Int64("questionsSynced", synced),
		)
	}

	return user, nil
}

// UpdatePassword changes the caller's password after verifying the
// current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperror.ValidationFailed("", "both passwords are required")
	}
	if len(newPassword) < minPasswordLength {
		return apperror.ValidationFailed("newPassword",
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Verify(user.PasswordHash, currentPassword); err != nil {
		return apperror.ValidationFailed("currentPassword", "incorrect current password")
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing new password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("service/auth: updating password for user %s: %w", userID, err)
	}

	s.logger.Info("password updated", slog.String("userID", userID))
	return nil
}
