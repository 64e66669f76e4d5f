package providers

import (
	"context"
	"errors"
)

// ErrEmptyToken is returned when a login presents no credential at all.
var ErrEmptyToken = errors.New("empty token")

// AuthProvider resolves a credential presented by a host connection or an
// API caller to the user it belongs to.
type AuthProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error)
}

type TokenClaims struct {
	UID string `json:"uid"`
}
