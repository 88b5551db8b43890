package oidc

// Package oidc authenticates the dashboard operator against an OpenID Connect provider.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/clustermaster/clustermaster-ui/internal/domain/auth"
	"github.com/clustermaster/clustermaster-ui/internal/ports"
)

// Provider implements ports.AuthProvider using OIDC discovery and the authorization code flow.
type Provider struct {
	config   *oauth2.Config
	op       *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer URL, with or without /.well-known/openid-configuration.
	DiscoveryURL string
	HTTPClient   *http.Client
}

// NewProvider performs OIDC discovery and returns a ready Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.DiscoveryURL == "":
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, httpClient)

	op, err := gooidc.NewProvider(ctx, issuerFromDiscoveryURL(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}

	return &Provider{
		op:       op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
	}, nil
}

func issuerFromDiscoveryURL(u string) string {
	issuer := strings.TrimSuffix(strings.TrimSpace(u), "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	return strings.TrimSuffix(issuer, "/")
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri must match the registered RedirectURL exactly, so it is not overridden here.
	authURL := p.config.AuthCodeURL(state, gooidc.Nonce(nonce))
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	c, err := p.idTokenClaims(ctx, token, in.Nonce)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("extract id_token: %w", err)
	}

	if c.Sub == "" || c.Email == "" {
		ui, uiErr := p.op.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if uiErr != nil {
			return domainauth.Identity{}, fmt.Errorf("get user info: %w", uiErr)
		}
		var more claims
		if decodeErr := ui.Claims(&more); decodeErr != nil {
			return domainauth.Identity{}, fmt.Errorf("decode user info: %w", decodeErr)
		}
		c = c.merge(more)
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return toIdentity(c, expiresAt), nil
}

// claims is the subset of standard OIDC claims the dashboard uses.
type claims struct {
	Sub               string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Nonce             string `json:"nonce"`
}

func (c claims) merge(other claims) claims {
	c.Sub = firstNonEmpty(c.Sub, other.Sub)
	c.Email = firstNonEmpty(c.Email, other.Email)
	c.Name = firstNonEmpty(c.Name, other.Name)
	c.PreferredUsername = firstNonEmpty(c.PreferredUsername, other.PreferredUsername)
	return c
}

func toIdentity(c claims, expiresAt time.Time) domainauth.Identity {
	return domainauth.Identity{
		UserID:    c.Sub,
		Email:     c.Email,
		Name:      firstNonEmpty(c.Name, c.PreferredUsername, c.Email),
		ExpiresAt: expiresAt,
	}
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, expectedNonce string) (claims, error) {
	var c claims
	if !slices.Contains(p.config.Scopes, gooidc.ScopeOpenID) {
		return c, nil
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return c, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return c, fmt.Errorf("verify id_token: %w", err)
	}
	if err := idTok.Claims(&c); err != nil {
		return c, fmt.Errorf("parse id_token claims: %w", err)
	}
	if expectedNonce != "" && c.Nonce != expectedNonce {
		return c, errors.New("invalid nonce")
	}
	return c, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// generateRandomString returns a URL-safe random string of exactly length characters.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	b := make([]byte, (length*3+3)/4+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}
