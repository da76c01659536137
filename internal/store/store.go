// Package store holds the todo list state and the reconciliation policy
// around it: every operation decides at call time whether it acts on the
// device-local list only (guest mode) or writes through to the account's
// remote collection first and mirrors the result locally (account mode).
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/harulist/haru/internal/logger"
	"github.com/harulist/haru/internal/model"
)

// StorageKey names the blob the whole store state is persisted under
const StorageKey = "todo-storage"

// Sessions is the session-tracker collaborator
type Sessions interface {
	Current() *model.Identity
	OnChange(func(*model.Identity))
}

// Persister is the device persistence collaborator
type Persister interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, value []byte) error
	Remove(key string) error
}

// State is the store's full state. It is persisted wholesale, transient
// draft fields included, so an interrupted compose survives a restart.
type State struct {
	Todos         []model.Todo `json:"todos"`
	FilteredTodos []model.Todo `json:"filteredTodos"`
	IsFiltered    bool         `json:"isFiltered"`

	// Compose/edit drafts
	Title     string `json:"title"`
	Content   string `json:"content"`
	Date      string `json:"date"`
	EditingID string `json:"isEditingId"`
}

// Store is the process-wide todo store
type Store struct {
	sessions Sessions
	remote   Remote
	persist  Persister
	now      func() time.Time

	mu        sync.Mutex
	state     State
	cancelSub func()
}

// New creates the store, rehydrates persisted state, and binds to session
// changes: login replaces the visible list with the account's collection,
// logout resets state and purges the persisted blob.
func New(sessions Sessions, remote Remote, persist Persister) *Store {
	s := &Store{
		sessions: sessions,
		remote:   remote,
		persist:  persist,
		now:      time.Now,
	}

	if data, ok, err := persist.Load(StorageKey); err != nil {
		logger.Warn("Failed to load persisted todos", logger.F("error", err))
	} else if ok {
		if err := json.Unmarshal(data, &s.state); err != nil {
			logger.Warn("Discarding corrupt persisted todos", logger.F("error", err))
			s.state = State{}
		}
	}

	sessions.OnChange(s.onSessionChange)

	return s
}

func (s *Store) onSessionChange(user *model.Identity) {
	if user != nil {
		if err := s.Fetch(context.Background()); err != nil {
			logger.Error("Failed to fetch todos after login", logger.F("error", err))
		}
		return
	}

	// Logout: stale subscription callbacks must not resurrect account data
	s.dropSubscription()

	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if err := s.persist.Remove(StorageKey); err != nil {
		logger.Error("Failed to purge persisted todos", logger.F("error", err))
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Todos = append([]model.Todo{}, s.state.Todos...)
	st.FilteredTodos = append([]model.Todo{}, s.state.FilteredTodos...)
	return st
}

// Visible returns the list a view should render: the filtered list while
// the important-only view is active, the full list otherwise.
func (s *Store) Visible() []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsFiltered {
		return append([]model.Todo{}, s.state.FilteredTodos...)
	}
	return append([]model.Todo{}, s.state.Todos...)
}

// SetTitle updates the compose draft title
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Title = title
	s.saveLocked()
}

// SetContent updates the compose draft content
func (s *Store) SetContent(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Content = content
	s.saveLocked()
}

// SetDate updates the compose draft date
func (s *Store) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Date = date
	s.saveLocked()
}

// SetEditingID marks the todo targeted by an in-place edit ("" for none)
func (s *Store) SetEditingID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EditingID = id
	s.saveLocked()
}

// EditingID returns the id of the todo being edited, or ""
func (s *Store) EditingID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.EditingID
}

// repo picks the backing repository for the current session
func (s *Store) repo() repository {
	if s.sessions.Current() != nil {
		return &remoteRepository{remote: s.remote}
	}
	return &localRepository{now: s.now}
}

// saveLocked serializes the whole state to the persistence collaborator.
// Caller must hold s.mu. Persistence failures are logged, not fatal: the
// in-memory state is already consistent.
func (s *Store) saveLocked() {
	data, err := json.Marshal(s.state)
	if err != nil {
		logger.Error("Failed to marshal todo state", logger.F("error", err))
		return
	}
	if err := s.persist.Save(StorageKey, data); err != nil {
		logger.Warn("Failed to persist todo state", logger.F("error", err))
	}
}

// recomputeFilteredLocked refreshes the important-only view from the main
// list after a mutation. Caller must hold s.mu.
func (s *Store) recomputeFilteredLocked() {
	if !s.state.IsFiltered {
		s.state.FilteredTodos = []model.Todo{}
		return
	}

	filtered := []model.Todo{}
	for _, todo := range s.state.Todos {
		if todo.IsImportant {
			filtered = append(filtered, todo)
		}
	}
	s.state.FilteredTodos = filtered
}

// dropSubscription cancels the active live query, if any. Must be called
// without holding s.mu: cancellation waits for an in-flight delivery,
// which itself takes the lock.
func (s *Store) dropSubscription() {
	s.mu.Lock()
	cancel := s.cancelSub
	s.cancelSub = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Close cancels any live subscription
func (s *Store) Close() {
	s.dropSubscription()
}
