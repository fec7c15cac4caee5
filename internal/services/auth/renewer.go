package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vestigo/internal/common"
	"github.com/ternarybob/vestigo/internal/models"
	"golang.org/x/oauth2"
)

// OAuthRenewer exchanges refresh tokens at the identity provider's token
// endpoint. The refresh token survives renewal; providers that rotate it
// return the replacement, which we keep.
type OAuthRenewer struct {
	oauth   *oauth2.Config
	timeout time.Duration
	logger  arbor.ILogger
}

// NewOAuthRenewer creates a token-endpoint renewer from the auth config
func NewOAuthRenewer(cfg *common.AuthConfig, logger arbor.ILogger) *OAuthRenewer {
	return &OAuthRenewer{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.TokenURL,
			},
		},
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Renew exchanges the credential's refresh token for a new access token
func (r *OAuthRenewer) Renew(ctx context.Context, cred *models.Credential) (*models.Credential, error) {
	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("credential for %s has no refresh token", cred.PrincipalID)
	}

	renewCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	source := r.oauth.TokenSource(renewCtx, &oauth2.Token{
		RefreshToken: cred.RefreshToken,
	})

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("token endpoint refused renewal: %w", err)
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	return &models.Credential{
		PrincipalID:  cred.PrincipalID,
		AccessToken:  token.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
		CreatedAt:    cred.CreatedAt,
	}, nil
}
