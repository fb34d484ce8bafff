// Package identity talks to the Keycloak realm that owns user accounts.
package identity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/jrsteele09/go-auth-portal/internal/telemetry"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const logoutPath = "/protocol/openid-connect/logout"

type Config interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

// TokenSet is the result of a successful credential exchange.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
	Claims       Claims
}

type providerConfig struct {
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
	logoutURL    string
}

// Client exchanges user credentials with Keycloak using the resource owner
// password grant. The realm is discovered on first use.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.RWMutex
	provider *providerConfig
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(ctx, c.httpClient)
}

func (c *Client) providerConfig(ctx context.Context) (*providerConfig, error) {
	c.mu.RLock()
	p := c.provider
	c.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	// The key set keeps the discovery context for later refreshes.
	provider, err := oidc.NewProvider(c.clientContext(context.WithoutCancel(ctx)), c.cfg.GetIssuerURL())
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstream, "[Client providerConfig] discovery of %s: %v", c.cfg.GetIssuerURL(), err)
	}

	var metadata struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := provider.Claims(&metadata); err != nil || metadata.EndSessionEndpoint == "" {
		metadata.EndSessionEndpoint = c.cfg.GetIssuerURL() + logoutPath
	}

	endpoint := provider.Endpoint()
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	p = &providerConfig{
		oauth2Config: &oauth2.Config{
			ClientID:     c.cfg.GetClientID(),
			ClientSecret: c.cfg.GetClientSecret(),
			Endpoint:     endpoint,
			Scopes:       c.cfg.GetScopes(),
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID: c.cfg.GetClientID(),
		}),
		logoutURL: metadata.EndSessionEndpoint,
	}

	c.mu.Lock()
	c.provider = p
	c.mu.Unlock()
	return p, nil
}

// ExchangeCredentials trades an email and password for tokens. A rejection by
// the realm is returned as *ExchangeError.
func (c *Client) ExchangeCredentials(ctx context.Context, email, password string) (tokens *TokenSet, err error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.exchange")
	defer func() { telemetry.EndSpan(span, err) }()

	p, err := c.providerConfig(ctx)
	if err != nil {
		return nil, &ExchangeError{Code: CodeUpstreamUnavailable, Description: err.Error(), err: err}
	}

	tok, err := p.oauth2Config.PasswordCredentialsToken(c.clientContext(ctx), email, password)
	if err != nil {
		return nil, exchangeErrorFrom(err)
	}

	tokens = &TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
	if raw, ok := tok.Extra("id_token").(string); ok && raw != "" {
		tokens.IDToken = raw
		tokens.Claims, err = c.claimsFromIDToken(ctx, raw)
	} else {
		tokens.Claims, err = claimsFromAccessToken(tok.AccessToken)
	}
	if err != nil {
		return nil, fmt.Errorf("[Client ExchangeCredentials] claims: %w", err)
	}
	return tokens, nil
}

// Logout ends the realm session that issued refreshToken.
func (c *Client) Logout(ctx context.Context, refreshToken string) (err error) {
	if refreshToken == "" {
		return nil
	}

	ctx, span := telemetry.StartSpan(ctx, "identity.logout")
	defer func() { telemetry.EndSpan(span, err) }()

	p, err := c.providerConfig(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"client_id":     {c.cfg.GetClientID()},
		"refresh_token": {refreshToken},
	}
	if secret := c.cfg.GetClientSecret(); secret != "" {
		form.Set("client_secret", secret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.logoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("[Client Logout] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrUpstream, "[Client Logout] %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("logout rejected")
		return apperrors.Wrapf(apperrors.ErrUpstream, "[Client Logout] status %d", resp.StatusCode)
	}
	return nil
}
