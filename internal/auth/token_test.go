package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	orig := Session{
		Role:           RoleManager,
		Nome:           "Maria Silva",
		Email:          "sindica@aurora.com",
		Matricula:      "COND-001",
		NomeCondominio: "Residencial Aurora",
		Condominiums: []CondominiumRef{
			{Matricula: "COND-001", NomeCondominio: "Residencial Aurora"},
			{Matricula: "COND-002", NomeCondominio: "Residencial Bosque"},
		},
	}

	tok, err := NewAccessToken("test-secret", orig, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	parsed, err := ParseAccessToken("test-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)
}

func TestParseAccessTokenRejections(t *testing.T) {
	tok, err := NewAccessToken("right-secret", Session{Role: RoleResident, ResidentID: "res-1"}, 15)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ParseAccessToken("wrong-secret", tok.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseAccessToken("right-secret", "not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		old, err := NewAccessToken("right-secret", Session{Role: RoleResident, ResidentID: "res-1"}, -1)
		require.NoError(t, err)
		_, err = ParseAccessToken("right-secret", old.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshTokenHashing(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, a.Raw, 96) // 48 random bytes, hex-encoded

	// Hashing is deterministic and never echoes the raw token.
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
	assert.NotEqual(t, a.Raw, HashRefreshRaw(a.Raw))
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3nh4-forte", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3nh4-forte"))
	assert.False(t, VerifyPassword(hash, "s3nh4-errada"))
	assert.False(t, VerifyPassword("not-a-hash", "s3nh4-forte"))
}
