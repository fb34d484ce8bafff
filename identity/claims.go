package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
)

// Address is the OIDC address claim.
type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

// Claims are the user attributes carried by the tokens.
type Claims struct {
	Subject           string   `json:"sub"`
	Name              string   `json:"name,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	Email             string   `json:"email,omitempty"`
	EmailVerified     bool     `json:"email_verified,omitempty"`
	Picture           string   `json:"picture,omitempty"`
	Address           *Address `json:"address,omitempty"`
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
	Name              string   `json:"name,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	Email             string   `json:"email,omitempty"`
	EmailVerified     bool     `json:"email_verified,omitempty"`
	Picture           string   `json:"picture,omitempty"`
	Address           *Address `json:"address,omitempty"`
}

// claimsFromIDToken verifies the ID token against the realm keys.
func (c *Client) claimsFromIDToken(ctx context.Context, rawIDToken string) (Claims, error) {
	p, err := c.providerConfig(ctx)
	if err != nil {
		return Claims{}, err
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "[Client claimsFromIDToken] verify: %v", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrUpstreamMalformed, "[Client claimsFromIDToken] decode: %v", err)
	}
	return claims, nil
}

// claimsFromAccessToken decodes the access token payload without verifying
// the signature. The token came straight from the token endpoint over the
// back channel.
func claimsFromAccessToken(rawAccessToken string) (Claims, error) {
	var claims accessTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(rawAccessToken, &claims); err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrUpstreamMalformed, "[claimsFromAccessToken] %v", err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("[claimsFromAccessToken] missing subject: %w", apperrors.ErrUpstreamMalformed)
	}
	return Claims{
		Subject:           claims.Subject,
		Name:              claims.Name,
		PreferredUsername: claims.PreferredUsername,
		Email:             claims.Email,
		EmailVerified:     claims.EmailVerified,
		Picture:           claims.Picture,
		Address:           claims.Address,
	}, nil
}
