// Package auth provides JWT token issue/verify, bcrypt password hashing,
// and the bearer-token middleware.
//
// AUTHENTICATION FLOW:
// 1. POST /api/auth/register creates an account (bcrypt-hashed password)
// 2. POST /api/auth/login verifies credentials and issues a signed JWT
// 3. The client presents it on each request as "Authorization: Bearer <token>"
// 4. RequireAuth validates the token, re-fetches the account, and attaches
//    the identity to the request context for the handlers
//
// WHY JWT?
// The token is stateless — the user id and expiry live inside the signed
// payload, so no session storage is needed. The HMAC signature means the
// server can verify a token with nothing but the secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenLifetime is how long an issued token stays valid. After expiry the
// client must log in again.
const tokenLifetime = 24 * time.Hour

const issuer = "jobtrack"

// TokenService handles JWT creation and validation. It holds the HMAC
// secret used to sign and verify tokens — the same secret serves both
// operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims (Subject holds
// the internal user id) plus the account email, which downstream ownership
// checks on legacy question rows key on.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenClaims is what Validate hands back to callers.
type TokenClaims struct {
	UserID string
	Email  string
}

// Generate creates and signs a JWT for the given user, valid for 24 hours.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and enough for
// a single-server deployment.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.GenerateWithDuration(userID, email, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, email string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the embedded
// claims.
//
// The jwt library checks the signature, the expiry, and the issuer.
// Passing jwt.WithValidMethods pins the algorithm to HS256 — without it an
// attacker could attempt an algorithm-confusion downgrade.
func (s *TokenService) Validate(tokenStr string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no subject")
	}

	return &TokenClaims{
		UserID: c.Subject,
		Email:  c.Email,
	}, nil
}
