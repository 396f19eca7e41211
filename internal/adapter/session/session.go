// Package session provides the credential used for the platform API and
// the push socket. The token is opaque to the tracker; when it happens to
// be a JWT its expiry is checked so an expired session fails fast.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

type Static struct {
	mu    sync.RWMutex
	token string
	now   func() time.Time
}

func NewStatic(token string) *Static {
	return &Static{
		token: strings.TrimSpace(token),
		now:   time.Now,
	}
}

// Set replaces the token, for example after a refresh by the auth collaborator.
func (s *Static) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = strings.TrimSpace(token)
}

func (s *Static) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", types.ErrNoCredential
	}
	if expired(token, s.now()) {
		return "", types.ErrCredentialExpired
	}
	return token, nil
}

// expired reports whether token is a JWT whose exp is in the past. The
// signature is not verified; the platform does that.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		// not a JWT: nothing to check
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
