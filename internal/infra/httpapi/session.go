package httpapi

import (
	"context"
	"net/http"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/core/port"
)

var _ port.SessionAPI = (*Client)(nil)

// CurrentIdentity performs the "who am I" round trip using the ambient
// session cookie.
func (c *Client) CurrentIdentity(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Login exchanges credentials for a session cookie and the identity profile.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if creds.DeviceID != "" {
		c.SetDeviceID(creds.DeviceID)
	}
	var identity domain.Identity
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Register creates an account. The backend expects the payload nested under
// a "user" key.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.Identity, error) {
	payload := map[string]domain.Registration{"user": reg}
	var identity domain.Identity
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout revokes the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/auth/logout", nil, nil)
}
