package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"

	"github.com/stretchr/testify/assert"
)

type fixedIssuer struct {
	valid    string
	identity *ports.AccessIdentity
}

func (f *fixedIssuer) IssueAccessToken(userID, username string, scopes []string, expiresInSeconds int64) (string, error) {
	return f.valid, nil
}

func (f *fixedIssuer) ValidateAccessToken(tokenString string) (*ports.AccessIdentity, error) {
	if tokenString != f.valid {
		return nil, errors.New("invalid token")
	}
	return f.identity, nil
}

func protected(issuer ports.TokenIssuer, scope string) http.Handler {
	v := NewAuthValidator(issuer)
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if scope != "" {
		h = RequireScope(scope)(h)
	}
	return v.Handler(h)
}

func TestAuthValidatorBearerAndCookie(t *testing.T) {
	t.Parallel()

	issuer := &fixedIssuer{
		valid:    "good-token",
		identity: &ports.AccessIdentity{UserID: "u1", Username: "alice", Scopes: []string{domain.ScopeReadJobs}},
	}
	h := protected(issuer, "")

	req := httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-token"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireScope(t *testing.T) {
	t.Parallel()

	issuer := &fixedIssuer{
		valid:    "good-token",
		identity: &ports.AccessIdentity{UserID: "u1", Username: "alice", Scopes: domain.DefaultScopes(domain.UserTypeFreelancer)},
	}

	// Freelancer tokens lack escrow:manage.
	h := protected(issuer, domain.ScopeEscrowManage)
	req := httptest.NewRequest(http.MethodPatch, "/jobs/1/escrow", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	h = protected(issuer, domain.ScopeReadJobs)
	req = httptest.NewRequest(http.MethodGet, "/jobs/1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
