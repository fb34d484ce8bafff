package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-portal/identity"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "auth-portal"
	testClientSecret = "portal-secret"
	testEmail        = "jane.doe@example.com"
	testPassword     = "password123"
	testSubject      = "4f1c0a2e-user"
	testRefresh      = "refresh-token-1"
	testKeyID        = "test-key"
)

type testConfig struct {
	issuer string
}

func (c testConfig) GetIssuerURL() string    { return c.issuer }
func (c testConfig) GetClientID() string     { return testClientID }
func (c testConfig) GetClientSecret() string { return testClientSecret }
func (c testConfig) GetScopes() []string     { return []string{"openid", "profile", "email", "address"} }

// realmFixture imitates the parts of a Keycloak realm used by the portal.
type realmFixture struct {
	server      *httptest.Server
	key         *rsa.PrivateKey
	issueIDTok  bool
	tokenCalls  atomic.Int32
	logoutCalls atomic.Int32
	lastForm    map[string]string
	logoutForm  map[string]string
}

func setupRealm(t *testing.T) *realmFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &realmFixture{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"issuer":                 f.server.URL,
			"authorization_endpoint": f.server.URL + "/protocol/openid-connect/auth",
			"token_endpoint":         f.server.URL + "/protocol/openid-connect/token",
			"jwks_uri":               f.server.URL + "/protocol/openid-connect/certs",
			"end_session_endpoint":   f.server.URL + "/protocol/openid-connect/logout",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		pub := f.key.PublicKey
		writeJSON(w, http.StatusOK, map[string]any{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": testKeyID,
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	})
	mux.HandleFunc("POST /protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		f.lastForm = flatten(r.PostForm)

		switch r.PostForm.Get("username") {
		case "unverified@example.com":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Account is not fully set up"})
			return
		case "disabled@example.com":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "Account disabled"})
			return
		}
		if r.PostForm.Get("password") != testPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant", "error_description": "Invalid user credentials"})
			return
		}

		resp := map[string]any{
			"access_token":  f.sign(t, "HS-unused", nil),
			"refresh_token": testRefresh,
			"token_type":    "Bearer",
			"expires_in":    300,
		}
		if f.issueIDTok {
			resp["id_token"] = f.sign(t, testClientID, map[string]any{"name": "Jane ID"})
		}
		writeJSON(w, http.StatusOK, resp)
	})
	mux.HandleFunc("POST /protocol/openid-connect/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logoutCalls.Add(1)
		require.NoError(t, r.ParseForm())
		f.logoutForm = flatten(r.PostForm)
		w.WriteHeader(http.StatusNoContent)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *realmFixture) sign(t *testing.T, audience string, extra map[string]any) string {
	t.Helper()

	claims := jwt.MapClaims{
		"iss":   f.server.URL,
		"sub":   testSubject,
		"aud":   audience,
		"exp":   time.Now().Add(5 * time.Minute).Unix(),
		"iat":   time.Now().Unix(),
		"name":  "Jane Doe",
		"email": testEmail,
		"address": map[string]string{
			"locality": "Berlin",
			"country":  "DE",
		},
	}
	for k, v := range extra {
		claims[k] = v
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKeyID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func (f *realmFixture) client() *identity.Client {
	return identity.NewClient(testConfig{issuer: f.server.URL}, f.server.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func TestExchangeCredentials_AccessTokenClaims(t *testing.T) {
	f := setupRealm(t)

	tokens, err := f.client().ExchangeCredentials(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.Equal(t, testRefresh, tokens.RefreshToken)
	require.Empty(t, tokens.IDToken)
	require.Equal(t, testSubject, tokens.Claims.Subject)
	require.Equal(t, "Jane Doe", tokens.Claims.Name)
	require.Equal(t, testEmail, tokens.Claims.Email)
	require.NotNil(t, tokens.Claims.Address)
	require.Equal(t, "Berlin", tokens.Claims.Address.Locality)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), tokens.Expiry, 30*time.Second)

	require.Equal(t, "password", f.lastForm["grant_type"])
	require.Equal(t, testEmail, f.lastForm["username"])
	require.Equal(t, testClientID, f.lastForm["client_id"])
	require.Equal(t, testClientSecret, f.lastForm["client_secret"])
	require.Equal(t, "openid profile email address", f.lastForm["scope"])
}

func TestExchangeCredentials_VerifiesIDToken(t *testing.T) {
	f := setupRealm(t)
	f.issueIDTok = true

	tokens, err := f.client().ExchangeCredentials(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.IDToken)
	require.Equal(t, "Jane ID", tokens.Claims.Name)
	require.Equal(t, testSubject, tokens.Claims.Subject)
}

func TestExchangeCredentials_Errors(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		code     string
		sentinel error
	}{
		{name: "wrong password", email: testEmail, password: "nope", code: identity.CodeIncorrectEmailPassword, sentinel: apperrors.ErrInvalidCredentials},
		{name: "unverified", email: "unverified@example.com", password: testPassword, code: identity.CodeUnverifiedEmail, sentinel: apperrors.ErrUserNotVerified},
		{name: "unmapped", email: "disabled@example.com", password: testPassword, code: "INVALID_GRANT", sentinel: apperrors.ErrUpstream},
	}

	f := setupRealm(t)
	client := f.client()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ExchangeCredentials(context.Background(), tt.email, tt.password)
			require.Error(t, err)

			var exErr *identity.ExchangeError
			require.ErrorAs(t, err, &exErr)
			require.Equal(t, tt.code, exErr.Code)
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestExchangeCredentials_RealmUnreachable(t *testing.T) {
	f := setupRealm(t)
	client := f.client()
	f.server.Close()

	_, err := client.ExchangeCredentials(context.Background(), testEmail, testPassword)
	var exErr *identity.ExchangeError
	require.ErrorAs(t, err, &exErr)
	require.Equal(t, identity.CodeUpstreamUnavailable, exErr.Code)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestLogout(t *testing.T) {
	f := setupRealm(t)
	client := f.client()

	require.NoError(t, client.Logout(context.Background(), ""))
	require.Zero(t, f.logoutCalls.Load())

	require.NoError(t, client.Logout(context.Background(), testRefresh))
	require.EqualValues(t, 1, f.logoutCalls.Load())
	require.Equal(t, testRefresh, f.logoutForm["refresh_token"])
	require.Equal(t, testClientID, f.logoutForm["client_id"])
}
