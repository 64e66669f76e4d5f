package providers

import (
	"context"
	"strings"
)

var _ AuthProvider = &TrustedAuthProvider{}

// TrustedAuthProvider is used when the host has already authenticated its
// players: the presented token is the user id itself.
type TrustedAuthProvider struct{}

func NewTrustedAuthProvider() *TrustedAuthProvider {
	return &TrustedAuthProvider{}
}

func (p *TrustedAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	uid := strings.TrimSpace(idToken)
	if uid == "" {
		return nil, ErrEmptyToken
	}
	return &TokenClaims{
		UID: uid,
	}, nil
}
