package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// Client verifies bearer tokens against the external identity provider.
// Successful verifications are cached in Redis for cacheTTL.
type Client struct {
	providerURL string
	cacheTTL    time.Duration
	httpClient  *http.Client
	redis       *redisclient.Client
	logger      *zap.Logger
}

// NewClient creates a new identity client
func NewClient(providerURL string, cacheTTL time.Duration, redis *redisclient.Client) *Client {
	return &Client{
		providerURL: providerURL,
		cacheTTL:    cacheTTL,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		redis:       redis,
		logger:      util.GetLogger(),
	}
}

// VerifySession resolves a bearer token to a session. An invalid or expired
// token returns nil session and nil error; transport failures return an error.
func (c *Client) VerifySession(ctx context.Context, token string) (*models.Session, error) {
	ctx, span := util.StartSpan(ctx, "IdentityClient.VerifySession")
	defer span.End()

	if cached, err := c.redis.GetCachedSession(ctx, token); err == nil && cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.providerURL+"/v1/sessions/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var session models.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if err := c.redis.CacheSession(ctx, token, &session, c.cacheTTL); err != nil {
		c.logger.Warn("Failed to cache session", zap.Error(err))
	}

	return &session, nil
}
