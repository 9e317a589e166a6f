// Package middleware provides the HTTP middleware stack for the studio API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

type contextKey string

const (
	emailKey contextKey = "session_email"
	nameKey  contextKey = "session_name"
)

const defaultTokenTTL = 24 * time.Hour

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs an issuer with the shared signing secret.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the given identity.
func (t *TokenIssuer) Issue(name, email string) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			Issuer:    "studio-platform",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Validate parses and verifies a session token.
func (t *TokenIssuer) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.InvalidToken(nil).WithDetails("method", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, apperrors.InvalidToken(err)
	}
	if !token.Valid {
		return nil, apperrors.InvalidToken(nil)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.Email == "" {
		return nil, apperrors.InvalidToken(nil).WithDetails("reason", "missing email claim")
	}
	return claims, nil
}

// AuthMiddleware guards mutating endpoints behind a valid session token.
type AuthMiddleware struct {
	issuer *TokenIssuer
	log    *logger.Logger
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(issuer *TokenIssuer, log *logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &AuthMiddleware{issuer: issuer, log: log}
}

// Handler rejects requests without a valid Bearer session token.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, apperrors.Unauthorized("missing Authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respondError(w, r, apperrors.Unauthorized("invalid Authorization header format"))
			return
		}

		claims, err := m.issuer.Validate(parts[1])
		if err != nil {
			m.log.WithError(err).
				WithField("path", r.URL.Path).
				Warn("session token validation failed")
			m.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), emailKey, claims.Email)
		ctx = context.WithValue(ctx, nameKey, claims.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := apperrors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = apperrors.Internal("authentication failed", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   serviceErr.Code,
		"message": serviceErr.Message,
	})

	m.log.WithField("path", r.URL.Path).
		WithField("method", r.Method).
		WithField("status", serviceErr.HTTPStatus).
		Warn("request rejected")
}

// SessionEmail extracts the authenticated email from the request context.
func SessionEmail(ctx context.Context) string {
	if v := ctx.Value(emailKey); v != nil {
		return v.(string)
	}
	return ""
}

// SessionName extracts the authenticated display name from the context.
func SessionName(ctx context.Context) string {
	if v := ctx.Value(nameKey); v != nil {
		return v.(string)
	}
	return ""
}
