// Package auth resolves bearer tokens to identity-provider profiles via the
// OIDC userinfo endpoint.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/config"
	"github.com/moviegraph/moviegraph/internal/models"
)

// UserInfo is the OIDC userinfo response.
type UserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
	Locale        string `json:"locale"`
}

// Client fetches user profiles from the configured userinfo endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.UserInfoEndpoint == "" {
		return nil, fmt.Errorf("userinfo endpoint is required")
	}

	return &Client{
		endpoint:   cfg.UserInfoEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}, nil
}

// UserInfo exchanges the access token for the caller's profile. An invalid
// or expired token surfaces as models.ErrValidation so the HTTP layer can
// answer 401-ish rather than 502.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w: %w", models.ErrExternalService, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("userinfo rejected token: %w", models.ErrValidation)
	default:
		return nil, fmt.Errorf("userinfo status %d: %w", resp.StatusCode, models.ErrExternalService)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w: %w", models.ErrDataFormat, err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo missing subject: %w", models.ErrDataFormat)
	}
	return &info, nil
}
