// Package orcid integrates with the ORCID authorization server: it
// validates ORCID-issued id_tokens and exchanges authorization codes for
// them. Signature verification, key-set retrieval and caching, and the
// OAuth 2.0 protocol itself are delegated to libraries; this package only
// configures them and maps their failures onto a stable error taxonomy.
package orcid

import (
	"context"
	"errors"
	"fmt"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/researchid/orcid-auth-demo/utils"
)

// Config holds the settings shared by the validator and the exchanger.
type Config struct {
	// Issuer is the expected `iss` claim and the discovery base URL.
	Issuer string

	// KeysURL is the JWKS endpoint. When empty, it is resolved from the
	// issuer's discovery document.
	KeysURL string

	// ClientID is the OAuth client ID; ORCID sets it as the id_token
	// audience.
	ClientID string

	// ClientSecret is required for the code exchange only.
	ClientSecret string

	// RedirectURI is the registered OAuth callback URL.
	RedirectURI string

	// Leeway is the clock-skew tolerance for time-based claims.
	Leeway time.Duration
}

const defaultLeeway = 60 * time.Second

// Validator validates ORCID id_tokens against the issuer's published key
// set. It is safe for concurrent use; the underlying key set refreshes
// itself in the background.
type Validator struct {
	issuer   string
	clientID string
	leeway   time.Duration
	keys     jwt.Keyfunc
}

// NewValidator resolves the key-set endpoint (directly from cfg.KeysURL or
// via OIDC discovery) and starts the auto-refreshing JWKS cache.
func NewValidator(ctx context.Context, cfg Config) (*Validator, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	keysURL := cfg.KeysURL
	if keysURL == "" {
		var err error
		keysURL, err = discoverKeysURL(ctx, cfg.Issuer)
		if err != nil {
			return nil, err
		}
	}

	kf, err := keyfunc.NewDefaultCtx(ctx, []string{keysURL})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}

	leeway := cfg.Leeway
	if leeway == 0 {
		leeway = defaultLeeway
	}

	return &Validator{
		issuer:   cfg.Issuer,
		clientID: cfg.ClientID,
		leeway:   leeway,
		keys:     kf.Keyfunc,
	}, nil
}

// ValidateToken verifies the token's signature, issuer, audience and expiry
// and returns its claims. Failures map onto the package sentinel errors.
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keys,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.clientID),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return nil, mapValidationError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if err := utils.ValidateORCIDiD(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject is not an ORCID iD: %v", ErrMalformedToken, err)
	}

	return claims, nil
}

// mapValidationError translates golang-jwt failures onto the package
// error taxonomy.
func mapValidationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrUnknownIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformedToken
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

// discoverKeysURL reads jwks_uri from the issuer's OIDC discovery document.
func discoverKeysURL(ctx context.Context, issuer string) (string, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}

	var meta struct {
		JwksURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return "", fmt.Errorf("%w: invalid metadata: %v", ErrDiscoveryFailed, err)
	}
	if meta.JwksURI == "" {
		return "", fmt.Errorf("%w: missing jwks_uri", ErrDiscoveryFailed)
	}
	return meta.JwksURI, nil
}
