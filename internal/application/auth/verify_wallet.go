package auth

import (
	"context"
	"strings"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
)

type VerifyWalletInput struct {
	Address   string
	Message   string
	Signature string
	// Nonce is the value from the siwe_nonce cookie; empty means the
	// cookie was absent or expired.
	Nonce string
	// BoundAddress is the siwe_addr cookie value, when the nonce was
	// issued for a specific address.
	BoundAddress string
	Meta         ports.RefreshTokenMeta
}

type VerifyWalletResult struct {
	User    *domain.User
	Session *Session
	Scopes  []string
	Created bool
}

// VerifyWallet authenticates by wallet signature: the signed message
// must embed the issued nonce, and the recovered signer must equal the
// claimed address. The caller clears the nonce cookies on success so a
// captured exchange cannot be replayed.
type VerifyWallet struct {
	verifier   ports.SignatureVerifier
	users      ports.UserRepository
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	scopes     *ScopeResolver
	accessExp  int64
	refreshExp int64
}

func NewVerifyWallet(verifier ports.SignatureVerifier, users ports.UserRepository, issuer ports.TokenIssuer, tokenStore ports.TokenStore, scopes *ScopeResolver, accessExp, refreshExp int64) *VerifyWallet {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &VerifyWallet{
		verifier:   verifier,
		users:      users,
		issuer:     issuer,
		tokenStore: tokenStore,
		scopes:     scopes,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *VerifyWallet) Execute(ctx context.Context, input VerifyWalletInput) (*VerifyWalletResult, error) {
	if input.Nonce == "" {
		return nil, domerrors.ErrMissingNonce
	}
	// The nonce must appear verbatim in what was signed, otherwise the
	// signature could be over an unrelated challenge.
	if !strings.Contains(input.Message, input.Nonce) {
		return nil, domerrors.ErrNonceMismatch
	}
	if input.BoundAddress != "" && !strings.EqualFold(input.BoundAddress, input.Address) {
		return nil, domerrors.ErrAddressMismatch
	}
	recovered, err := uc.verifier.RecoverAddress(input.Message, input.Signature)
	if err != nil {
		return nil, domerrors.ErrBadSignature
	}
	if !strings.EqualFold(recovered, input.Address) {
		return nil, domerrors.ErrBadSignature
	}

	address := strings.ToLower(input.Address)
	user, created, err := uc.users.UpsertByWallet(ctx, address, placeholderUsername(address), domain.UserTypeBoth)
	if err != nil {
		return nil, err
	}
	scopes := uc.scopes.Resolve(user)
	session, err := issueSession(ctx, uc.issuer, uc.tokenStore, user, scopes, uc.accessExp, uc.refreshExp, input.Meta)
	if err != nil {
		return nil, err
	}
	return &VerifyWalletResult{User: user, Session: session, Scopes: scopes, Created: created}, nil
}

// placeholderUsername derives a stable profile name for accounts
// created on first wallet verification: "wallet_" plus the first eight
// hex chars of the address.
func placeholderUsername(address string) string {
	s := strings.TrimPrefix(address, "0x")
	if len(s) > 8 {
		s = s[:8]
	}
	return "wallet_" + s
}
