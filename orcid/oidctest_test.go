package orcid

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const testKid = "test-key-1"

// mockAuthServer is a stand-in ORCID authorization server: it serves an
// OIDC discovery document, a JWKS endpoint, and a token endpoint.
type mockAuthServer struct {
	srv      *httptest.Server
	issuer   string
	key      *rsa.PrivateKey
	tokenRes map[string]any
}

func newMockAuthServer(t *testing.T) *mockAuthServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	m := &mockAuthServer{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		meta := map[string]any{
			"issuer":                   m.issuer,
			"jwks_uri":                 m.issuer + "/oauth/jwks",
			"authorization_endpoint":   m.issuer + "/oauth/authorize",
			"token_endpoint":           m.issuer + "/oauth/token",
			"response_types_supported": []string{"code"},
			"subject_types_supported":  []string{"public"},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(meta)
	})
	mux.HandleFunc("/oauth/jwks", func(w http.ResponseWriter, r *http.Request) {
		jwks := jose.JSONWebKeySet{
			Keys: []jose.JSONWebKey{{
				Key:       &m.key.PublicKey,
				KeyID:     testKid,
				Algorithm: "RS256",
				Use:       "sig",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if m.tokenRes == nil {
			http.Error(w, "exchange not configured", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.tokenRes)
	})

	m.srv = httptest.NewServer(mux)
	m.issuer = m.srv.URL
	t.Cleanup(m.srv.Close)
	return m
}

func (m *mockAuthServer) keysURL() string {
	return m.issuer + "/oauth/jwks"
}

// signToken mints an RS256 token with the server's key and kid header.
func (m *mockAuthServer) signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	return signWith(t, m.key, testKid, claims)
}

func signWith(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// idTokenClaims builds a claim set that passes validation against the
// mock server with the given subject.
func (m *mockAuthServer) idTokenClaims(subject, clientID string) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{clientID},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		GivenName:  "Josiah",
		FamilyName: "Carberry",
		AuthTime:   now.Unix(),
	}
}
