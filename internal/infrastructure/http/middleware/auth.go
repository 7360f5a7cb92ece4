package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
)

// SessionCookieName carries the access token for browser clients that
// do not attach an Authorization header.
const SessionCookieName = "session_token"

// AuthValidator validates the access token and sets the identity in
// context (see IdentityFromContext).
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			writeAuthErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
			return
		}
		identity, err := m.issuer.ValidateAccessToken(tokenString)
		if err != nil {
			writeAuthErr(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		ctx := WithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireScope rejects authenticated requests whose token does not
// carry the scope. Mount after the AuthValidator.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				writeAuthErr(w, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization")
				return
			}
			if !domain.HasScope(identity.Scopes, scope) {
				writeAuthErr(w, http.StatusForbidden, "forbidden", "insufficient scope")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func writeAuthErr(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}
