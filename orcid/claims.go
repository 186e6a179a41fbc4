package orcid

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the id_token claims ORCID issues for the openid scope.
// The subject is the researcher's ORCID iD (e.g. 0000-0001-2345-6789).
type Claims struct {
	jwt.RegisteredClaims
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	AuthTime   int64  `json:"auth_time,omitempty"`
}

// ORCIDiD returns the researcher identifier carried in the subject claim.
func (c *Claims) ORCIDiD() string {
	return c.Subject
}

// Expiry returns the token expiration time, or the zero time when the
// claim is absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
