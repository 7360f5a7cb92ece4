package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast params keep the test suite quick; production uses defaults.
func testHasher() *Argon2Hasher {
	return NewArgon2Hasher(Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
}

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	h := testHasher()
	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))
	assert.True(t, h.Verify("correct horse battery staple", encoded))
	assert.False(t, h.Verify("wrong password", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	h := testHasher()
	a, err := h.Hash("same password")
	require.NoError(t, err)
	b, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same password", a))
	assert.True(t, h.Verify("same password", b))
}

func TestVerifyEncodedParams(t *testing.T) {
	t.Parallel()

	// Verification reads cost params from the hash, so a hasher with
	// different settings still verifies old hashes.
	old := testHasher()
	encoded, err := old.Hash("pw")
	require.NoError(t, err)

	current := NewArgon2Hasher(DefaultArgon2Params())
	assert.True(t, current.Verify("pw", encoded))
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	h := testHasher()
	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA",
	} {
		assert.False(t, h.Verify("pw", encoded), "hash %q", encoded)
	}
}
