package middleware

import (
	"context"
	"time"

	"github.com/researchid/orcid-auth-demo/orcid"
)

// Context key type to avoid collisions
type contextKey string

// IdentityKey is the context key for the authenticated identity
const IdentityKey contextKey = "identity"

// Identity is the verified identity attached to a request that passed the
// auth gate. It is request-scoped and discarded after the response.
type Identity struct {
	// Subject is the authenticated researcher's ORCID iD
	Subject string

	// Issuer is the authorization server that signed the token
	Issuer string

	// ExpiresAt is the token expiry
	ExpiresAt time.Time

	// Source records which credential carrier authenticated the request
	Source CredentialSource

	// Token is the raw validated credential
	Token string

	// Claims are the full decoded id_token claims
	Claims *orcid.Claims
}

// WithIdentity attaches an authenticated identity to the context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext retrieves the authenticated identity from context,
// or nil when the request did not pass the auth gate
func IdentityFromContext(ctx context.Context) *Identity {
	if val := ctx.Value(IdentityKey); val != nil {
		if identity, ok := val.(*Identity); ok {
			return identity
		}
	}
	return nil
}
