package handlers

import (
	"net/http"
	"time"
)

// Cookie names for the auth flows.
const (
	NonceCookieName        = "siwe_nonce"
	NonceAddressCookieName = "siwe_addr"
	SessionCookieName      = "session_token"
	RefreshCookieName      = "refresh_token"

	nonceCookieTTL = 300 * time.Second
)

// CookieSettings controls the Secure flag and domain for every cookie
// the handlers set.
type CookieSettings struct {
	Secure bool
	Domain string
}

func (c CookieSettings) set(w http.ResponseWriter, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   maxAge,
		Secure:   c.Secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieSettings) clear(w http.ResponseWriter, name string) {
	c.set(w, name, "", -1, true)
}

func (c CookieSettings) setNonce(w http.ResponseWriter, nonce, address string) {
	ttl := int(nonceCookieTTL.Seconds())
	c.set(w, NonceCookieName, nonce, ttl, true)
	if address != "" {
		c.set(w, NonceAddressCookieName, address, ttl, true)
	}
}

func (c CookieSettings) clearNonce(w http.ResponseWriter) {
	c.clear(w, NonceCookieName)
	c.clear(w, NonceAddressCookieName)
}

func (c CookieSettings) setSession(w http.ResponseWriter, accessToken string, accessTTL int64, refreshToken string, refreshExpiresAt time.Time) {
	c.set(w, SessionCookieName, accessToken, int(accessTTL), true)
	c.set(w, RefreshCookieName, refreshToken, int(time.Until(refreshExpiresAt).Seconds()), true)
}

func (c CookieSettings) clearSession(w http.ResponseWriter) {
	c.clear(w, SessionCookieName)
	c.clear(w, RefreshCookieName)
}

func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}
