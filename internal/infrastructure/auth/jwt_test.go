package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewTokenIssuer(key, "lancer", "lancer-api")
}

func TestIssueAndValidateAccessToken(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	scopes := []string{"read:jobs", "write:jobs", "escrow:manage"}

	tokenString, err := issuer.IssueAccessToken("user-123", "alice", scopes, 900)
	require.NoError(t, err)

	identity, err := issuer.ValidateAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, scopes, identity.Scopes)
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	tokenString, err := issuer.IssueAccessToken("user-123", "alice", nil, -10)
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(tokenString)
	assert.Error(t, err)
}

func TestValidateRejectsForeignKey(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	other := testIssuer(t)

	tokenString, err := other.IssueAccessToken("user-123", "alice", nil, 900)
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(tokenString)
	assert.Error(t, err)
}

func TestValidateRejectsWrongAlgorithm(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)

	// An HMAC token keyed with public material must never validate.
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username:  "alice",
		TokenType: tokenTypeAccess,
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guessable"))
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(forged)
	assert.Error(t, err)
}

func TestValidateRejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	issuer := NewTokenIssuer(key, "lancer", "lancer-api")

	// Same key, same claim shape, but not an access token.
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username:  "alice",
		TokenType: "refresh",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)

	_, err = issuer.ValidateAccessToken(signed)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	t.Parallel()

	issuer := testIssuer(t)
	for _, s := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := issuer.ValidateAccessToken(s)
		assert.Error(t, err, "token %q", s)
	}
}
