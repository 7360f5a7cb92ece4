package auth

import (
	"strings"

	"github.com/openlancer/lancer/internal/domain"
)

// ScopeResolver derives the scope set minted into access tokens. The
// admin allow-list is re-evaluated on every mint so removing a wallet
// from the list takes effect at the next token, not the next signup.
type ScopeResolver struct {
	adminWallets map[string]struct{}
}

func NewScopeResolver(adminWallets []string) *ScopeResolver {
	set := make(map[string]struct{}, len(adminWallets))
	for _, w := range adminWallets {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &ScopeResolver{adminWallets: set}
}

// Resolve returns DefaultScopes for the user's type, plus admin:all
// when the account's wallet is allow-listed.
func (r *ScopeResolver) Resolve(user *domain.User) []string {
	scopes := domain.DefaultScopes(user.UserType)
	if user.WalletAddress != nil {
		if _, ok := r.adminWallets[strings.ToLower(*user.WalletAddress)]; ok {
			scopes = append(scopes, domain.ScopeAdminAll)
		}
	}
	return scopes
}
