package orcid

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Exchanger performs the OAuth 2.0 authorization-code exchange against the
// ORCID token endpoint. Endpoint URLs come from the issuer's discovery
// document; only the openid scope is requested.
type Exchanger struct {
	oauth *oauth2.Config
}

// NewExchanger discovers the authorization and token endpoints for the
// configured issuer and prepares the OAuth client.
func NewExchanger(ctx context.Context, cfg Config) (*Exchanger, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("issuer is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.RedirectURI == "" {
		return nil, errors.New("redirect URI is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscoveryFailed, err)
	}

	return &Exchanger{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID},
		},
	}, nil
}

// AuthCodeURL builds the ORCID authorization URL carrying the given state.
func (e *Exchanger) AuthCodeURL(state string) string {
	return e.oauth.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for the id_token issued
// alongside the access token.
func (e *Exchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	token, err := e.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("no id_token in token response")
	}

	return idToken, nil
}
