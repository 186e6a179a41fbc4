// Package auth implements the OAuth 2.0 login, callback and logout
// endpoints for ORCID sign-in. The authorization-code protocol itself is
// the exchanger's concern; this package owns the cookies and redirects.
package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/researchid/orcid-auth-demo/config"
	"github.com/researchid/orcid-auth-demo/middleware"
	"github.com/researchid/orcid-auth-demo/orcid"
	"github.com/researchid/orcid-auth-demo/utils"
)

const (
	// StateCookieName is the cookie name for the OAuth state (CSRF)
	StateCookieName = "oauth_state"

	stateCookieMaxAge   = 600
	sessionCookieMaxAge = 86400 * 7
)

// CodeExchanger builds authorization URLs and exchanges authorization
// codes for id_tokens via the OAuth2 token endpoint.
type CodeExchanger interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (idToken string, err error)
}

// TokenValidator validates id_tokens and returns parsed claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*orcid.Claims, error)
}

// Handler handles the ORCID OAuth2 flow (login, callback, logout).
type Handler struct {
	cfg       *config.Config
	exchanger CodeExchanger
	validator TokenValidator
	logger    *zap.Logger
}

// NewHandler creates a new auth handler with the given config, code
// exchanger, and validator.
func NewHandler(cfg *config.Config, exchanger CodeExchanger, validator TokenValidator, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		exchanger: exchanger,
		validator: validator,
		logger:    logger,
	}
}

// HandleLogin sets a signed state cookie and redirects to the ORCID
// authorization endpoint
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.exchanger == nil {
		h.logger.Error("code exchanger not configured")
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
		return
	}

	state := newState(h.cfg.Server.SecretKey)

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.exchanger.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback verifies the state, exchanges the authorization code for
// an id_token, validates it, and sets the session cookie
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	// ORCID reports authorization failures (e.g. the user denied access)
	// via an error parameter; send the user back to login for a fresh
	// attempt rather than failing hard
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Warn("authorization server returned error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, h.loginPath(), http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		_ = utils.WriteBadRequest(w, "Missing authorization code", nil)
		return
	}
	if state == "" {
		_ = utils.WriteBadRequest(w, "Missing state parameter", nil)
		return
	}

	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil ||
		subtle.ConstantTimeCompare([]byte(stateCookie.Value), []byte(state)) != 1 ||
		!verifyState(h.cfg.Server.SecretKey, state) {
		_ = utils.WriteBadRequest(w, "Invalid or expired state", nil)
		return
	}

	h.clearCookie(w, StateCookieName)

	if h.exchanger == nil || h.validator == nil {
		h.logger.Error("auth collaborators not configured")
		_ = utils.WriteInternalServerError(w, "Authentication not configured")
		return
	}

	idToken, err := h.exchanger.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Warn("token exchange failed", zap.Error(err))
		_ = utils.WriteUnauthorized(w, "Authentication failed")
		return
	}

	claims, err := h.validator.ValidateToken(r.Context(), idToken)
	if err != nil {
		h.logger.Warn("token validation failed", zap.Error(err))
		_ = utils.WriteUnauthorized(w, "Invalid token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    idToken,
		Path:     "/",
		MaxAge:   sessionCookieMaxAge,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("login successful", zap.String("orcid", claims.ORCIDiD()))

	http.Redirect(w, r, h.cfg.Server.ProtectedPath, http.StatusFound)
}

// HandleLogout clears the session cookie and redirects to the home page.
// The id_token itself stays valid until expiry; a JWT cannot be revoked,
// only dropped.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, middleware.SessionCookieName)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) secureCookies() bool {
	return strings.HasPrefix(h.cfg.ORCID.RedirectURI, "https")
}

func (h *Handler) loginPath() string {
	return h.cfg.Server.ProtectedPath + "/login"
}
