package domain

// Capability scopes carried in access tokens.
const (
	ScopeReadJobs          = "read:jobs"
	ScopeWriteJobs         = "write:jobs"
	ScopeWriteApplications = "write:applications"
	ScopeEscrowManage      = "escrow:manage"
	ScopeAdminAll          = "admin:all"
)

// DefaultScopes maps a user type to its fixed capability list. Admin
// scope is an authorization concern layered on top (wallet allow-list)
// and is not part of this mapping.
func DefaultScopes(t UserType) []string {
	switch t {
	case UserTypeClient:
		return []string{ScopeReadJobs, ScopeWriteJobs, ScopeEscrowManage}
	case UserTypeFreelancer:
		return []string{ScopeReadJobs, ScopeWriteApplications}
	case UserTypeBoth:
		return []string{ScopeReadJobs, ScopeWriteJobs, ScopeEscrowManage, ScopeWriteApplications}
	}
	return nil
}

// HasScope reports whether scope is present by exact membership.
func HasScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
