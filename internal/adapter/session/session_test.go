package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestToken_Missing(t *testing.T) {
	_, err := NewStatic("  ").Token(context.Background())
	assert.ErrorIs(t, err, types.ErrNoCredential)
}

func TestToken_Opaque(t *testing.T) {
	got, err := NewStatic("a1b2c3d4").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", got)
}

func TestToken_JWTExpiry(t *testing.T) {
	valid := signed(t, time.Now().Add(time.Hour))
	got, err := NewStatic(valid).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, valid, got)

	_, err = NewStatic(signed(t, time.Now().Add(-time.Minute))).Token(context.Background())
	assert.ErrorIs(t, err, types.ErrCredentialExpired)
}

func TestSet(t *testing.T) {
	s := NewStatic("")
	s.Set("fresh")
	got, err := s.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
