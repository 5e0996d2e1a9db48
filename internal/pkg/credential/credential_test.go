package credential

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(now func() time.Time) *Service {
	return NewService("test-secret", DefaultTokenTTL, WithBcryptCost(bcrypt.MinCost), WithClock(now))
}

func TestHashPassword(t *testing.T) {
	s := newTestService(time.Now)

	first, err := s.HashPassword("correct horse")
	require.NoError(t, err)
	second, err := s.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", first)
	assert.NotEqual(t, first, second, "salt must differ per call")
	assert.True(t, s.VerifyPassword("correct horse", first))
	assert.True(t, s.VerifyPassword("correct horse", second))
	assert.False(t, s.VerifyPassword("wrong horse", first))
	assert.False(t, s.VerifyPassword("correct horse", "not-a-hash"))
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestService(time.Now)

	token, err := s.IssueToken("alice")
	require.NoError(t, err)

	subject, err := s.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestDecodeToken_Expired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newTestService(func() time.Time { return issuedAt })

	token, err := issuer.IssueToken("alice")
	require.NoError(t, err)

	t.Run("still valid just before expiry", func(t *testing.T) {
		reader := newTestService(func() time.Time { return issuedAt.Add(DefaultTokenTTL - time.Minute) })
		subject, err := reader.DecodeToken(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("rejected after expiry", func(t *testing.T) {
		reader := newTestService(func() time.Time { return issuedAt.Add(DefaultTokenTTL + time.Minute) })
		_, err := reader.DecodeToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDecodeToken_Tampered(t *testing.T) {
	s := newTestService(time.Now)
	token, err := s.IssueToken("alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	t.Run("signature flipped", func(t *testing.T) {
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := s.DecodeToken(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("payload swapped", func(t *testing.T) {
		other, err := s.IssueToken("mallory")
		require.NoError(t, err)
		otherParts := strings.Split(other, ".")
		_, err = s.DecodeToken(parts[0] + "." + otherParts[1] + "." + parts[2])
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("different key", func(t *testing.T) {
		other := NewService("another-secret", DefaultTokenTTL)
		_, err := other.DecodeToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.DecodeToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
