package auth

import (
	"testing"

	"github.com/openlancer/lancer/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestScopeResolverDefaults(t *testing.T) {
	t.Parallel()

	r := NewScopeResolver(nil)
	client := &domain.User{UserType: domain.UserTypeClient}
	assert.ElementsMatch(t,
		[]string{domain.ScopeReadJobs, domain.ScopeWriteJobs, domain.ScopeEscrowManage},
		r.Resolve(client))

	freelancer := &domain.User{UserType: domain.UserTypeFreelancer}
	assert.NotContains(t, r.Resolve(freelancer), domain.ScopeEscrowManage)
}

func TestScopeResolverAdminAllowList(t *testing.T) {
	t.Parallel()

	wallet := "0xAbCd000000000000000000000000000000000001"
	r := NewScopeResolver([]string{" " + wallet + " "})

	lower := "0xabcd000000000000000000000000000000000001"
	admin := &domain.User{UserType: domain.UserTypeClient, WalletAddress: &lower}
	assert.Contains(t, r.Resolve(admin), domain.ScopeAdminAll)

	// Allow-listing is additive, not a replacement.
	assert.Contains(t, r.Resolve(admin), domain.ScopeWriteJobs)

	other := "0x0000000000000000000000000000000000000002"
	notAdmin := &domain.User{UserType: domain.UserTypeClient, WalletAddress: &other}
	assert.NotContains(t, r.Resolve(notAdmin), domain.ScopeAdminAll)

	noWallet := &domain.User{UserType: domain.UserTypeClient}
	assert.NotContains(t, r.Resolve(noWallet), domain.ScopeAdminAll)
}
