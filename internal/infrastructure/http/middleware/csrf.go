package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Double-submit CSRF: the token lives in a readable cookie and must be
// echoed back in a request header on every unsafe method.
const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	csrfCookieTTL = time.Hour
)

// CSRFGuard issues and verifies double-submit token pairs.
type CSRFGuard struct {
	allowedOrigins map[string]bool
	cookieSecure   bool
}

func NewCSRFGuard(allowedOrigins []string, cookieSecure bool) *CSRFGuard {
	set := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			set[o] = true
		}
	}
	return &CSRFGuard{allowedOrigins: set, cookieSecure: cookieSecure}
}

// Issue mints a token and sets the cookie. The cookie is deliberately
// not HttpOnly: the client must be able to read it to mirror it into
// the header.
func (g *CSRFGuard) Issue(w http.ResponseWriter) (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(csrfCookieTTL.Seconds()),
		Secure:   g.cookieSecure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Handler verifies the pair on unsafe methods. It runs before body
// decoding and before any authorization check, so a forged request is
// rejected without parsing its payload and without leaking whether the
// target resource exists.
func (g *CSRFGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if safeMethod(r.Method) {
			// Lazily seed the cookie so the first write already has a
			// pair to submit.
			if _, err := r.Cookie(CSRFCookieName); err != nil {
				_, _ = g.Issue(w)
			}
			next.ServeHTTP(w, r)
			return
		}
		if len(g.allowedOrigins) > 0 {
			if origin := r.Header.Get("Origin"); origin != "" && !g.allowedOrigins[origin] {
				writeCSRFErr(w, "origin_not_allowed", "request origin not allowed")
				return
			}
		}
		header := r.Header.Get(CSRFHeaderName)
		cookie, err := r.Cookie(CSRFCookieName)
		if header == "" || err != nil || cookie.Value == "" {
			writeCSRFErr(w, "missing_token", "csrf token missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
			writeCSRFErr(w, "invalid_token", "csrf token mismatch")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func writeCSRFErr(w http.ResponseWriter, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}
