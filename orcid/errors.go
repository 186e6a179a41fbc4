package orcid

import "errors"

var (
	// ErrInvalidToken is returned when the token fails validation for a
	// reason not covered by a more specific error below
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrBadSignature is returned when the token signature does not verify
	// against the published key set
	ErrBadSignature = errors.New("bad token signature")

	// ErrUnknownIssuer is returned when the token issuer is not the
	// configured authorization server
	ErrUnknownIssuer = errors.New("unknown token issuer")

	// ErrAudienceMismatch is returned when the token audience does not
	// include the configured client ID
	ErrAudienceMismatch = errors.New("token audience mismatch")

	// ErrMalformedToken is returned when the credential is not a parseable
	// JWT, or its subject is not an ORCID iD
	ErrMalformedToken = errors.New("malformed token")

	// ErrDiscoveryFailed is returned when the issuer's OIDC discovery
	// document cannot be fetched or is incomplete
	ErrDiscoveryFailed = errors.New("oidc discovery failed")
)
