package middleware

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/researchid/orcid-auth-demo/orcid"
	"github.com/researchid/orcid-auth-demo/utils"
)

// SessionCookieName is the cookie carrying the id_token issued at login.
// The Authorization header takes precedence when both are present.
const SessionCookieName = "session"

// CredentialSource records where a bearer credential was found.
type CredentialSource string

const (
	SourceHeader CredentialSource = "header"
	SourceCookie CredentialSource = "cookie"
)

// Credential is an opaque bearer token extracted from a request. It lives
// for one request and is never mutated after extraction.
type Credential struct {
	Token  string
	Source CredentialSource
}

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	// ValidateToken validates a token and returns its claims
	ValidateToken(ctx context.Context, token string) (*orcid.Claims, error)
}

// AuthMiddleware guards protected routes: it extracts a bearer credential
// from the request, delegates validation, and either attaches the
// authenticated identity to the context or rejects with 401.
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth is a middleware that requires a valid token from the
// Authorization header or the session cookie. Validation failure reasons
// are logged but never sent to the client.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)

		cred, ok := ExtractCredential(r)
		if !ok {
			m.logger.Warn("no credential supplied",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, cred.Token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.String("source", string(cred.Source)),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		identity := &Identity{
			Subject:   claims.Subject,
			Issuer:    claims.Issuer,
			ExpiresAt: claims.Expiry(),
			Source:    cred.Source,
			Token:     cred.Token,
			Claims:    claims,
		}
		ctx = WithIdentity(ctx, identity)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("orcid", identity.Subject),
			zap.String("source", string(identity.Source)))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractCredential locates at most one bearer credential on the request.
// The Authorization header is checked first; a malformed header (wrong
// scheme, empty token) falls through to the session cookie rather than
// failing the request. Absence of a credential is a valid outcome, not an
// error. Pure function of the request.
func ExtractCredential(r *http.Request) (Credential, bool) {
	if token := extractBearerToken(r); token != "" {
		return Credential{Token: token, Source: SourceHeader}, true
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return Credential{Token: cookie.Value, Source: SourceCookie}, true
	}
	return Credential{}, false
}

// extractBearerToken extracts the token from an "Authorization: Bearer"
// header, or returns "" when the header is absent or not Bearer-schemed.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
