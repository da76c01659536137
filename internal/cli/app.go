package cli

import (
	"fmt"
	"strings"

	"github.com/harulist/haru/internal/config"
	"github.com/harulist/haru/internal/docstore"
	"github.com/harulist/haru/internal/local"
	"github.com/harulist/haru/internal/model"
	"github.com/harulist/haru/internal/session"
	"github.com/harulist/haru/internal/store"
)

// app wires the collaborators every command needs: device persistence,
// the backend client, the session tracker, and the todo store on top.
type app struct {
	Config   *config.Config
	Blobs    *local.Store
	Client   *docstore.Client
	Sessions *session.Tracker
	Store    *store.Store
}

// openApp assembles the store stack. The tracker is started after the
// store is bound to it, so a restored login triggers the initial fetch.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	blobs, err := local.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	client, err := docstore.NewClient()
	if err != nil {
		_ = blobs.Close()
		return nil, err
	}
	if !client.IsLoggedIn() {
		client.UseServer(cfg.ServerURL)
	}

	sessions := session.NewTracker(client)
	st := store.New(sessions, store.NewRemote(client), blobs)
	sessions.Start()

	return &app{
		Config:   cfg,
		Blobs:    blobs,
		Client:   client,
		Sessions: sessions,
		Store:    st,
	}, nil
}

// Close releases the store's live queries and the local database
func (a *app) Close() {
	a.Store.Close()
	_ = a.Blobs.Close()
}

// resolveID matches an id or unique id prefix against the current list
func (a *app) resolveID(prefix string) (model.Todo, error) {
	var matches []model.Todo
	for _, todo := range a.Store.Snapshot().Todos {
		if todo.ID == prefix {
			return todo, nil
		}
		if strings.HasPrefix(todo.ID, prefix) {
			matches = append(matches, todo)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Todo{}, fmt.Errorf("todo not found: %s", prefix)
	default:
		return model.Todo{}, fmt.Errorf("ambiguous id %q matches %d todos", prefix, len(matches))
	}
}
