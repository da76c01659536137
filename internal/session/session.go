// Package session tracks the current authenticated identity. Everything
// that routes between guest and account behavior reads it at call time;
// listeners get notified on every identity change so views can re-route.
package session

import (
	"context"
	"sync"

	"github.com/harulist/haru/internal/logger"
	"github.com/harulist/haru/internal/model"
)

// Provider is the auth backend the tracker sits in front of
type Provider interface {
	CurrentIdentity() *model.Identity
	Logout(ctx context.Context) error
}

// Tracker holds the current identity and fans out change notifications
type Tracker struct {
	provider Provider

	mu        sync.Mutex
	user      *model.Identity
	loading   bool
	listeners []func(*model.Identity)
}

// NewTracker creates a tracker in the loading state. Call Start to read
// the provider's current session.
func NewTracker(provider Provider) *Tracker {
	return &Tracker{
		provider: provider,
		loading:  true,
	}
}

// Start resolves the initial session from the provider and notifies
// listeners. The tracker leaves the loading state here, logged in or not.
func (t *Tracker) Start() {
	user := t.provider.CurrentIdentity()

	t.mu.Lock()
	t.user = user
	t.loading = false
	t.mu.Unlock()

	if user != nil {
		logger.Info("Session restored", logger.F("user", user.Email))
	}
	t.notify(user)
}

// Current returns the authenticated identity, or nil in guest mode
func (t *Tracker) Current() *model.Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.user
}

// Loading reports whether the initial session check is still pending
func (t *Tracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// SetIdentity records a new identity (after login or registration) and
// notifies listeners
func (t *Tracker) SetIdentity(user *model.Identity) {
	t.mu.Lock()
	t.user = user
	t.loading = false
	t.mu.Unlock()

	t.notify(user)
}

// Logout asks the provider to end the session, then clears the held
// identity. The identity is kept if the provider call fails.
func (t *Tracker) Logout(ctx context.Context) error {
	if err := t.provider.Logout(ctx); err != nil {
		return err
	}

	t.mu.Lock()
	t.user = nil
	t.mu.Unlock()

	logger.Info("Session ended")
	t.notify(nil)
	return nil
}

// OnChange registers a listener called on every identity change
func (t *Tracker) OnChange(fn func(*model.Identity)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

func (t *Tracker) notify(user *model.Identity) {
	t.mu.Lock()
	listeners := append([]func(*model.Identity){}, t.listeners...)
	t.mu.Unlock()

	for _, fn := range listeners {
		fn(user)
	}
}
