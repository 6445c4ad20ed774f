// Package auth resolves the owner identity behind each API request.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/model"
)

// Authenticator maps an incoming request to an owner ID.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// DevAuthenticator attributes every request to the development user. Only for
// local single-user deployments.
type DevAuthenticator struct{}

// Authenticate always returns the dev owner ID.
func (DevAuthenticator) Authenticate(_ *http.Request) (string, error) {
	return model.DevOwnerID, nil
}

// TokenAuthenticator checks a static bearer token and maps it to a fixed
// owner. Good enough for a personal instance behind a reverse proxy.
type TokenAuthenticator struct {
	token   string
	ownerID string
}

// NewTokenAuthenticator creates a token authenticator. Token and owner must
// both be set.
func NewTokenAuthenticator(token, ownerID string) (*TokenAuthenticator, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: auth token", common.ErrMissingConfig)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id", common.ErrMissingConfig)
	}
	return &TokenAuthenticator{token: token, ownerID: ownerID}, nil
}

// Authenticate validates the Authorization header.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", fmt.Errorf("%w: missing bearer token", common.ErrUnauthorized)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		return "", fmt.Errorf("%w: invalid token", common.ErrUnauthorized)
	}
	return a.ownerID, nil
}
