package orcid

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClientID = "APP-ZTT8BDD9D2LPQNFV"
	testSubject  = "0000-0001-2345-6789"
)

func newTestValidator(t *testing.T, m *mockAuthServer) *Validator {
	t.Helper()
	v, err := NewValidator(context.Background(), Config{
		Issuer:   m.issuer,
		KeysURL:  m.keysURL(),
		ClientID: testClientID,
	})
	require.NoError(t, err)
	return v
}

func TestNewValidator(t *testing.T) {
	m := newMockAuthServer(t)

	t.Run("explicit keys URL", func(t *testing.T) {
		v, err := NewValidator(context.Background(), Config{
			Issuer:   m.issuer,
			KeysURL:  m.keysURL(),
			ClientID: testClientID,
		})
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("keys URL from discovery", func(t *testing.T) {
		v, err := NewValidator(context.Background(), Config{
			Issuer:   m.issuer,
			ClientID: testClientID,
		})
		require.NoError(t, err)

		token := m.signToken(t, m.idTokenClaims(testSubject, testClientID))
		claims, err := v.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, testSubject, claims.ORCIDiD())
	})

	t.Run("missing issuer", func(t *testing.T) {
		_, err := NewValidator(context.Background(), Config{ClientID: testClientID})
		assert.Error(t, err)
	})

	t.Run("missing client ID", func(t *testing.T) {
		_, err := NewValidator(context.Background(), Config{Issuer: m.issuer})
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	m := newMockAuthServer(t)
	v := newTestValidator(t, m)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token := m.signToken(t, m.idTokenClaims(testSubject, testClientID))

		claims, err := v.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, testSubject, claims.Subject)
		assert.Equal(t, m.issuer, claims.Issuer)
		assert.Equal(t, "Josiah", claims.GivenName)
		assert.Equal(t, "Carberry", claims.FamilyName)
		assert.True(t, claims.Expiry().After(time.Now()))
	})

	t.Run("expired token", func(t *testing.T) {
		claims := m.idTokenClaims(testSubject, testClientID)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
		claims.IssuedAt = jwt.NewNumericDate(time.Now().Add(-3 * time.Hour))
		token := m.signToken(t, claims)

		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("unknown issuer", func(t *testing.T) {
		claims := m.idTokenClaims(testSubject, testClientID)
		claims.Issuer = "https://not-orcid.example"
		token := m.signToken(t, claims)

		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrUnknownIssuer)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		claims := m.idTokenClaims(testSubject, "APP-SOMEONE-ELSE")
		token := m.signToken(t, claims)

		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrAudienceMismatch)
	})

	t.Run("bad signature", func(t *testing.T) {
		// same kid, different key: the published key is found but the
		// signature does not verify
		rogue, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		token := signWith(t, rogue, testKid, m.idTokenClaims(testSubject, testClientID))

		_, err = v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrBadSignature)
	})

	t.Run("missing expiry is rejected", func(t *testing.T) {
		claims := m.idTokenClaims(testSubject, testClientID)
		claims.ExpiresAt = nil
		token := m.signToken(t, claims)

		_, err := v.ValidateToken(ctx, token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.ValidateToken(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := v.ValidateToken(ctx, "")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("subject is not an ORCID iD", func(t *testing.T) {
		claims := m.idTokenClaims("plain-user-42", testClientID)
		token := m.signToken(t, claims)

		_, err := v.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("repeated validation is deterministic", func(t *testing.T) {
		token := m.signToken(t, m.idTokenClaims(testSubject, testClientID))

		first, err := v.ValidateToken(ctx, token)
		require.NoError(t, err)
		second, err := v.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
