package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/store"
)

type ContextKey int

const (
	// UserIDContextKey is the key used to store the caller's user id in the request context
	UserIDContextKey ContextKey = iota
)

// UserID returns the authenticated user id stored by the auth middleware.
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}

// NewAuthMiddleware verifies the bearer token of each request and makes sure
// the caller has a landmark set.
func NewAuthMiddleware(authProvider authproviders.AuthProvider, landmarks store.LandmarkStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearerToken, err := parseBearerToken(r)
			if err != nil {
				log.Debug("failed to parse bearer token: %v", err)
				http.Error(w, "failed to parse bearer token", http.StatusUnauthorized)
				return
			}

			token, err := authProvider.VerifyToken(r.Context(), bearerToken)
			if err != nil {
				log.Warn("failed to verify ID token: %v", err)
				http.Error(w, "failed to verify ID token", http.StatusUnauthorized)
				return
			}

			if err := landmarks.EnsureUser(r.Context(), token.UID); err != nil {
				log.Error("failed to ensure user %s: %v", token.UID, err)
				http.Error(w, "failed to ensure user", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, token.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseBearerToken parses the bearer token from the Authorization header
func parseBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("invalid Authorization header format")
	}

	return parts[1], nil
}
