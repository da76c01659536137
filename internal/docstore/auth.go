package docstore

import (
	"context"
	"net/http"

	"github.com/harulist/haru/internal/model"
)

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

// storeSession records a fresh login under the lock and persists it
func (c *Client) storeSession(resp authResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Token = resp.Token
	c.config.UserID = resp.UserID
	c.config.Email = resp.Email
	return c.saveConfigLocked()
}

// Register creates a new account and logs in. Credentials are validated
// locally first so malformed input never reaches the wire.
func (c *Client) Register(ctx context.Context, email, password string) (model.Identity, error) {
	if err := model.ValidateEmail(email); err != nil {
		return model.Identity{}, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return model.Identity{}, err
	}

	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/register",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return model.Identity{}, err
	}

	if err := c.storeSession(resp); err != nil {
		return model.Identity{}, err
	}

	return model.Identity{ID: resp.UserID, Email: resp.Email}, nil
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, email, password string) (model.Identity, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return model.Identity{}, err
	}

	if err := c.storeSession(resp); err != nil {
		return model.Identity{}, err
	}

	return model.Identity{ID: resp.UserID, Email: resp.Email}, nil
}

// Logout ends the server session, then clears the stored one
func (c *Client) Logout(ctx context.Context) error {
	if !c.IsLoggedIn() {
		return nil
	}

	if err := c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Token = ""
	c.config.UserID = ""
	c.config.Email = ""
	return c.saveConfigLocked()
}

// CurrentIdentity returns the logged-in identity, or nil in guest mode
func (c *Client) CurrentIdentity() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.config.Token == "" {
		return nil
	}
	return &model.Identity{ID: c.config.UserID, Email: c.config.Email}
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.Token != ""
}
