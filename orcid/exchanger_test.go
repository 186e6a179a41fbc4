package orcid

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExchanger(t *testing.T, m *mockAuthServer) *Exchanger {
	t.Helper()
	e, err := NewExchanger(context.Background(), Config{
		Issuer:       m.issuer,
		ClientID:     testClientID,
		ClientSecret: "client-secret",
		RedirectURI:  "http://127.0.0.1:8000/protected/auth",
	})
	require.NoError(t, err)
	return e
}

func TestNewExchanger(t *testing.T) {
	m := newMockAuthServer(t)

	t.Run("requires issuer", func(t *testing.T) {
		_, err := NewExchanger(context.Background(), Config{
			ClientID:    testClientID,
			RedirectURI: "http://127.0.0.1:8000/protected/auth",
		})
		assert.Error(t, err)
	})

	t.Run("requires client ID", func(t *testing.T) {
		_, err := NewExchanger(context.Background(), Config{
			Issuer:      m.issuer,
			RedirectURI: "http://127.0.0.1:8000/protected/auth",
		})
		assert.Error(t, err)
	})

	t.Run("requires redirect URI", func(t *testing.T) {
		_, err := NewExchanger(context.Background(), Config{
			Issuer:   m.issuer,
			ClientID: testClientID,
		})
		assert.Error(t, err)
	})

	t.Run("unreachable issuer", func(t *testing.T) {
		_, err := NewExchanger(context.Background(), Config{
			Issuer:      "http://127.0.0.1:1/nowhere",
			ClientID:    testClientID,
			RedirectURI: "http://127.0.0.1:8000/protected/auth",
		})
		assert.ErrorIs(t, err, ErrDiscoveryFailed)
	})
}

func TestAuthCodeURL(t *testing.T) {
	m := newMockAuthServer(t)
	e := newTestExchanger(t, m)

	raw := e.AuthCodeURL("state-123")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Contains(t, parsed.Path, "/oauth/authorize")
	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "http://127.0.0.1:8000/protected/auth", q.Get("redirect_uri"))
}

func TestExchangeCode(t *testing.T) {
	m := newMockAuthServer(t)
	e := newTestExchanger(t, m)
	ctx := context.Background()

	t.Run("returns the id_token", func(t *testing.T) {
		idToken := m.signToken(t, m.idTokenClaims(testSubject, testClientID))
		m.tokenRes = map[string]any{
			"access_token": "access-abc",
			"token_type":   "bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		}

		got, err := e.ExchangeCode(ctx, "auth-code")
		require.NoError(t, err)
		assert.Equal(t, idToken, got)
	})

	t.Run("missing id_token in response", func(t *testing.T) {
		m.tokenRes = map[string]any{
			"access_token": "access-abc",
			"token_type":   "bearer",
		}

		_, err := e.ExchangeCode(ctx, "auth-code")
		assert.Error(t, err)
	})

	t.Run("token endpoint failure", func(t *testing.T) {
		m.tokenRes = nil

		_, err := e.ExchangeCode(ctx, "auth-code")
		assert.Error(t, err)
	})
}
