package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

func newVerifyWallet(users *memUserRepo, store *memTokenStore, verifier *stubVerifier, admins []string) *VerifyWallet {
	return NewVerifyWallet(verifier, users, stubIssuer{}, store, NewScopeResolver(admins), 0, 0)
}

func TestVerifyWalletCreatesAccountOnFirstUse(t *testing.T) {
	t.Parallel()

	users := newMemUserRepo()
	store := newMemTokenStore()
	uc := newVerifyWallet(users, store, &stubVerifier{address: testWallet}, nil)

	in := VerifyWalletInput{
		Address:   testWallet,
		Message:   "openlancer.io wants you to sign in\n\nNonce: deadbeef01020304",
		Signature: "0xsigned",
		Nonce:     "deadbeef01020304",
	}
	res, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "wallet_8ba1f109", res.User.Username)
	assert.Equal(t, domain.UserTypeBoth, res.User.UserType)
	require.NotNil(t, res.User.WalletAddress)
	assert.Equal(t, "0x8ba1f109551bd432803012645ac136ddd64dba72", *res.User.WalletAddress)
	assert.NotEmpty(t, res.Session.RefreshToken)
	assert.Equal(t, 1, store.liveCount())

	// Second verification signs in the existing account.
	res2, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.Equal(t, res.User.ID, res2.User.ID)
}

func TestVerifyWalletNonceChecks(t *testing.T) {
	t.Parallel()

	uc := newVerifyWallet(newMemUserRepo(), newMemTokenStore(), &stubVerifier{address: testWallet}, nil)

	_, err := uc.Execute(context.Background(), VerifyWalletInput{
		Address: testWallet, Message: "Nonce: abc", Signature: "0xsig",
	})
	assert.ErrorIs(t, err, domerrors.ErrMissingNonce)

	_, err = uc.Execute(context.Background(), VerifyWalletInput{
		Address: testWallet, Message: "Nonce: something-else", Signature: "0xsig", Nonce: "abc123",
	})
	assert.ErrorIs(t, err, domerrors.ErrNonceMismatch)
}

func TestVerifyWalletBoundAddressMismatch(t *testing.T) {
	t.Parallel()

	uc := newVerifyWallet(newMemUserRepo(), newMemTokenStore(), &stubVerifier{address: testWallet}, nil)

	_, err := uc.Execute(context.Background(), VerifyWalletInput{
		Address:      testWallet,
		Message:      "Nonce: abc123",
		Signature:    "0xsig",
		Nonce:        "abc123",
		BoundAddress: "0x0000000000000000000000000000000000000099",
	})
	assert.ErrorIs(t, err, domerrors.ErrAddressMismatch)

	// Case differences in the bound address are not a mismatch.
	_, err = uc.Execute(context.Background(), VerifyWalletInput{
		Address:      testWallet,
		Message:      "Nonce: abc123",
		Signature:    "0xsig",
		Nonce:        "abc123",
		BoundAddress: "0x8BA1F109551BD432803012645AC136DDD64DBA72",
	})
	assert.NoError(t, err)
}

func TestVerifyWalletBadSignature(t *testing.T) {
	t.Parallel()

	in := VerifyWalletInput{
		Address: testWallet, Message: "Nonce: abc123", Signature: "0xsig", Nonce: "abc123",
	}

	// Recovery fails outright.
	uc := newVerifyWallet(newMemUserRepo(), newMemTokenStore(), &stubVerifier{err: errors.New("recover: invalid signature")}, nil)
	_, err := uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domerrors.ErrBadSignature)

	// Recovery succeeds but yields someone else's address.
	uc = newVerifyWallet(newMemUserRepo(), newMemTokenStore(), &stubVerifier{address: "0x0000000000000000000000000000000000000099"}, nil)
	_, err = uc.Execute(context.Background(), in)
	assert.ErrorIs(t, err, domerrors.ErrBadSignature)
}

func TestVerifyWalletAdminScope(t *testing.T) {
	t.Parallel()

	uc := newVerifyWallet(newMemUserRepo(), newMemTokenStore(), &stubVerifier{address: testWallet}, []string{testWallet})

	res, err := uc.Execute(context.Background(), VerifyWalletInput{
		Address: testWallet, Message: "Nonce: abc123", Signature: "0xsig", Nonce: "abc123",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Scopes, domain.ScopeAdminAll)
}
