// Package docstore is the HTTP client for the haru account backend. It
// covers the two collaborator roles the todo store needs: the auth
// provider (register, login, logout, current identity) and the per-user
// document store (CRUD, field queries, live subscriptions).
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("document not found")

// ErrNotLoggedIn is returned when an operation requires a session
var ErrNotLoggedIn = errors.New("not logged in")

const defaultServerURL = "http://localhost:8080"

// sessionConfig is the persisted login state (~/.haru/session.json)
type sessionConfig struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
}

// Client talks to the account backend. Subscription poll loops read the
// session from their own goroutines, so config access goes through mu.
type Client struct {
	mu         sync.Mutex
	config     *sessionConfig
	configPath string
	httpClient *http.Client
}

// NewClient creates a client using the session file under ~/.haru
func NewClient() (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewClientAt(filepath.Join(home, ".haru", "session.json")), nil
}

// NewClientAt creates a client with an explicit session file path
func NewClientAt(configPath string) *Client {
	c := &Client{
		configPath: configPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	c.loadConfig()
	return c
}

// loadConfig reads the session file. A missing or corrupt file degrades
// to a logged-out session against the default server.
func (c *Client) loadConfig() {
	cfg := &sessionConfig{}
	if data, err := os.ReadFile(c.configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			cfg = &sessionConfig{}
		}
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}

	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
}

// saveConfigLocked writes the session file. Caller must hold c.mu.
func (c *Client) saveConfigLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// SetServer sets the backend base URL and persists it
func (c *Client) SetServer(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ServerURL = url
	return c.saveConfigLocked()
}

// ServerURL returns the configured backend base URL
func (c *Client) ServerURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.ServerURL
}

// UseServer overrides the backend base URL for this process only, without
// touching the session file
func (c *Client) UseServer(url string) {
	if url == "" {
		return
	}
	c.mu.Lock()
	c.config.ServerURL = url
	c.mu.Unlock()
}

// session snapshots the fields a request needs, so in-flight requests
// never observe a half-updated login state
func (c *Client) session() (serverURL, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.ServerURL, c.config.Token
}

// do performs an authenticated JSON request and decodes the response into
// out (which may be nil). Non-2xx responses become errors carrying the
// server's error message; 404 maps to ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	serverURL, token := c.session()

	req, err := http.NewRequestWithContext(ctx, method, serverURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return errors.New(errResp.Error)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
