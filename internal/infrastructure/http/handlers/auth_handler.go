package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/openlancer/lancer/internal/application/auth"
	"github.com/openlancer/lancer/internal/application/ports"
	"github.com/openlancer/lancer/internal/domain"
	domerrors "github.com/openlancer/lancer/internal/domain/errors"
	"github.com/openlancer/lancer/internal/infrastructure/http/middleware"
	"github.com/openlancer/lancer/internal/infrastructure/wallet"
)

type AuthHandler struct {
	register     *auth.Register
	login        *auth.Login
	verifyWallet *auth.VerifyWallet
	refresh      *auth.Refresh
	logout       *auth.Logout
	csrf         *middleware.CSRFGuard
	cookies      CookieSettings
	validate     *validator.Validate
	log          zerolog.Logger
}

func NewAuthHandler(register *auth.Register, login *auth.Login, verifyWallet *auth.VerifyWallet, refresh *auth.Refresh, logout *auth.Logout, csrf *middleware.CSRFGuard, cookies CookieSettings, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register:     register,
		login:        login,
		verifyWallet: verifyWallet,
		refresh:      refresh,
		logout:       logout,
		csrf:         csrf,
		cookies:      cookies,
		validate:     validator.New(),
		log:          log,
	}
}

func requestMeta(r *http.Request) ports.RefreshTokenMeta {
	return ports.RefreshTokenMeta{
		UserAgent: r.UserAgent(),
		IP:        getClientIP(r),
	}
}

func userJSON(u *domain.User) map[string]interface{} {
	out := map[string]interface{}{
		"id":        u.ID.String(),
		"username":  u.Username,
		"user_type": string(u.UserType),
	}
	if u.Email != nil {
		out["email"] = *u.Email
	}
	if u.WalletAddress != nil {
		out["wallet_address"] = *u.WalletAddress
	}
	return out
}

// SIWENonce issues a single-use challenge nonce (and lazily a CSRF
// token) for sign-in-with-wallet. The optional address query binds the
// nonce to one wallet.
func (h *AuthHandler) SIWENonce(w http.ResponseWriter, r *http.Request) {
	address := NormalizeAddress(r.URL.Query().Get("address"))
	if address != "" && !wallet.IsValidAddress(address) {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidAddress, domerrors.ErrInvalidAddress.Error())
		return
	}
	nonce, err := wallet.NewNonce()
	if err != nil {
		h.log.Error().Err(err).Msg("mint nonce")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	csrfToken, err := h.csrf.Issue(w)
	if err != nil {
		h.log.Error().Err(err).Msg("mint csrf token")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	h.cookies.setNonce(w, nonce, address)
	writeJSON(w, http.StatusOK, map[string]string{
		"nonce":      nonce,
		"csrf_token": csrfToken,
	})
}

// SIWEVerify authenticates a signed challenge. The nonce cookies are
// cleared on success so the exchange cannot be replayed.
func (h *AuthHandler) SIWEVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address   string `json:"address" validate:"required,max=64"`
		Message   string `json:"message" validate:"required,max=2048"`
		Signature string `json:"signature" validate:"required,max=256"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if !wallet.IsValidAddress(body.Address) {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidAddress, domerrors.ErrInvalidAddress.Error())
		return
	}
	result, err := h.verifyWallet.Execute(r.Context(), auth.VerifyWalletInput{
		Address:      body.Address,
		Message:      body.Message,
		Signature:    body.Signature,
		Nonce:        cookieValue(r, NonceCookieName),
		BoundAddress: cookieValue(r, NonceAddressCookieName),
		Meta:         requestMeta(r),
	})
	if err != nil {
		AuditLog(h.log, r, "auth.siwe.verify", NormalizeAddress(body.Address), false, err.Error())
		middleware.RecordAuthAttempt("siwe_verify", false)
		switch err {
		case domerrors.ErrMissingNonce:
			writeErr(w, http.StatusUnauthorized, ErrCodeMissingNonce, err.Error())
		case domerrors.ErrNonceMismatch:
			writeErr(w, http.StatusUnauthorized, ErrCodeNonceMismatch, err.Error())
		case domerrors.ErrAddressMismatch:
			writeErr(w, http.StatusUnauthorized, ErrCodeAddressMismatch, err.Error())
		case domerrors.ErrBadSignature:
			writeErr(w, http.StatusUnauthorized, ErrCodeBadSignature, err.Error())
		default:
			h.log.Error().Err(err).Msg("siwe verify failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "auth.siwe.verify", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("siwe_verify", true)
	h.cookies.clearNonce(w)
	h.cookies.setSession(w, result.Session.AccessToken, result.Session.ExpiresIn, result.Session.RefreshToken, result.Session.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"user":          userJSON(result.User),
		"token":         result.Session.AccessToken,
		"refresh_token": result.Session.RefreshToken,
		"expires_in":    result.Session.ExpiresIn,
		"scopes":        result.Scopes,
		"created":       result.Created,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,min=3,max=32"`
		Email    string `json:"email" validate:"omitempty,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=128"`
		UserType string `json:"user_type" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	username := SanitizeUsername(body.Username)
	password := SanitizePassword(body.Password)
	userType, ok := domain.ParseUserType(body.UserType)
	if username == "" || password == "" || !ok {
		writeErr(w, http.StatusBadRequest, "", "invalid username, password, or user type")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Username: username,
		Email:    body.Email,
		Password: password,
		UserType: userType,
		Meta:     requestMeta(r),
	})
	if err != nil {
		AuditLog(h.log, r, "user.register", "", false, err.Error())
		middleware.RecordAuthAttempt("register", false)
		switch err {
		case domerrors.ErrUserExists:
			writeErr(w, http.StatusConflict, "", err.Error())
		case domerrors.ErrInvalidRequest:
			writeErr(w, http.StatusBadRequest, "", err.Error())
		default:
			h.log.Error().Err(err).Msg("register failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditLog(h.log, r, "user.register", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("register", true)
	h.cookies.setSession(w, result.Session.AccessToken, result.Session.ExpiresIn, result.Session.RefreshToken, result.Session.RefreshExpiresAt)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":          userJSON(result.User),
		"token":         result.Session.AccessToken,
		"refresh_token": result.Session.RefreshToken,
		"expires_in":    result.Session.ExpiresIn,
		"scopes":        result.Scopes,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username" validate:"required,max=32"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{
		Username: SanitizeUsername(body.Username),
		Password: SanitizePassword(body.Password),
		Meta:     requestMeta(r),
	})
	if err != nil {
		AuditLog(h.log, r, "user.login", "", false, err.Error())
		middleware.RecordAuthAttempt("login", false)
		if err == domerrors.ErrInvalidCredentials {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "user.login", result.User.ID.String(), true, "")
	middleware.RecordAuthAttempt("login", true)
	h.cookies.setSession(w, result.Session.AccessToken, result.Session.ExpiresIn, result.Session.RefreshToken, result.Session.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":          userJSON(result.User),
		"token":         result.Session.AccessToken,
		"refresh_token": result.Session.RefreshToken,
		"expires_in":    result.Session.ExpiresIn,
		"scopes":        result.Scopes,
	})
}

// Refresh rotates the presented refresh token. The token comes from
// the refresh cookie or, for non-browser clients, the body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshCookieName)
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		refreshToken = body.RefreshToken
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{
		RefreshToken: refreshToken,
		Meta:         requestMeta(r),
	})
	if err != nil {
		AuditLog(h.log, r, "auth.refresh", "", false, err.Error())
		middleware.RecordAuthAttempt("refresh", false)
		if err == domerrors.ErrInvalidToken {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("refresh failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "auth.refresh", "", true, "")
	middleware.RecordAuthAttempt("refresh", true)
	h.cookies.setSession(w, result.AccessToken, result.ExpiresIn, result.RefreshToken, result.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":         result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

// Logout revokes the presented refresh token and clears both session
// cookies. Always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := cookieValue(r, RefreshCookieName)
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		refreshToken = body.RefreshToken
	}
	if err := h.logout.Execute(r.Context(), refreshToken); err != nil {
		h.log.Error().Err(err).Msg("logout revoke failed")
	}
	h.cookies.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
