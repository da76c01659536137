package store

import (
	"context"

	"github.com/harulist/haru/internal/docstore"
	"github.com/harulist/haru/internal/logger"
	"github.com/harulist/haru/internal/model"
)

// Add creates a todo from the given fields. Guest mode appends it with a
// time-derived id; account mode creates the remote document first and
// appends the id-bearing result, so the local list never holds a todo the
// server did not confirm.
func (s *Store) Add(ctx context.Context, title, content, date string) (model.Todo, error) {
	todo := model.NewTodo("", title, content, date)

	added, err := s.repo().add(ctx, todo)
	if err != nil {
		logger.Error("Add todo failed", logger.F("error", err))
		return model.Todo{}, err
	}

	s.mu.Lock()
	s.state.Todos = append(s.state.Todos, added)
	s.recomputeFilteredLocked()
	s.saveLocked()
	s.mu.Unlock()

	return added, nil
}

// Delete removes the todo with the given id. Account mode deletes the
// remote document first; a failed remote delete leaves local state
// untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.repo().delete(ctx, id); err != nil {
		logger.Error("Delete todo failed", logger.F("id", id), logger.F("error", err))
		return err
	}

	s.mu.Lock()
	todos := s.state.Todos[:0]
	for _, todo := range s.state.Todos {
		if todo.ID != id {
			todos = append(todos, todo)
		}
	}
	s.state.Todos = todos
	s.recomputeFilteredLocked()
	s.saveLocked()
	s.mu.Unlock()

	return nil
}

// ToggleCompleted flips the completed flag. Account mode negates the
// remote document's current value and mirrors that result; a missing
// remote document aborts with ErrNotFound and no local change.
func (s *Store) ToggleCompleted(ctx context.Context, id string) error {
	current, _ := s.find(id)

	next, err := s.repo().toggleCompleted(ctx, id, current.Completed)
	if err != nil {
		logger.Error("Toggle completed failed", logger.F("id", id), logger.F("error", err))
		return err
	}

	s.apply(id, func(t *model.Todo) { t.Completed = next })
	return nil
}

// ToggleImportant flips the important flag, with the same remote-wins
// semantics as ToggleCompleted
func (s *Store) ToggleImportant(ctx context.Context, id string) error {
	current, _ := s.find(id)

	next, err := s.repo().toggleImportant(ctx, id, current.IsImportant)
	if err != nil {
		logger.Error("Toggle important failed", logger.F("id", id), logger.F("error", err))
		return err
	}

	s.apply(id, func(t *model.Todo) { t.IsImportant = next })
	return nil
}

// Edit rewrites a todo's title, content, and date. Content is normalized
// the same way Add normalizes it. Account mode verifies the remote
// document exists before writing; absence aborts with no partial update.
func (s *Store) Edit(ctx context.Context, id, title, content, date string) error {
	content = model.NormalizeContent(content)

	if err := s.repo().edit(ctx, id, title, content, date); err != nil {
		logger.Error("Edit todo failed", logger.F("id", id), logger.F("error", err))
		return err
	}

	s.apply(id, func(t *model.Todo) {
		t.Title = title
		t.Content = content
		t.Date = date
	})
	return nil
}

// ClearAll removes every todo. Account mode deletes all remote documents
// first (best-effort, collecting failures); on any remote failure the
// local list is left as it was, so local-empty/remote-non-empty cannot
// happen.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.repo().clearAll(ctx); err != nil {
		logger.Error("Clear all failed", logger.F("error", err))
		return err
	}

	s.mu.Lock()
	s.state.Todos = []model.Todo{}
	s.state.FilteredTodos = []model.Todo{}
	s.state.IsFiltered = false
	s.saveLocked()
	s.mu.Unlock()

	return nil
}

// ShowAll switches to the unfiltered view. Guest mode clears the filter
// synchronously. Account mode starts a live query over the whole
// collection; every delivery replaces the mirrored list wholesale.
func (s *Store) ShowAll(ctx context.Context) error {
	s.dropSubscription()

	s.mu.Lock()
	s.state.IsFiltered = false
	s.state.FilteredTodos = []model.Todo{}
	s.saveLocked()
	s.mu.Unlock()

	if s.sessions.Current() == nil {
		return nil
	}

	cancel := s.remote.Subscribe(todosCollection, "", "", func(coll docstore.Collection) {
		todos := decodeTodos(coll)
		s.mu.Lock()
		s.state.Todos = todos
		s.saveLocked()
		s.mu.Unlock()
	})

	s.setSubscription(cancel)
	return nil
}

// ShowImportant switches to the important-only view. Guest mode filters
// the local list synchronously; account mode live-queries the server-side
// filter, replacing filteredTodos on every delivery.
func (s *Store) ShowImportant(ctx context.Context) error {
	s.dropSubscription()

	if s.sessions.Current() == nil {
		s.mu.Lock()
		s.state.IsFiltered = true
		s.recomputeFilteredLocked()
		s.saveLocked()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.state.IsFiltered = true
	s.saveLocked()
	s.mu.Unlock()

	cancel := s.remote.Subscribe(todosCollection, "isImportant", "true", func(coll docstore.Collection) {
		todos := decodeTodos(coll)
		s.mu.Lock()
		s.state.FilteredTodos = todos
		s.saveLocked()
		s.mu.Unlock()
	})

	s.setSubscription(cancel)
	return nil
}

// Fetch replaces the local list wholesale with the account's remote
// collection. Guest todos are not merged; whatever was displayed before
// login simply stops being visible. No-op in guest mode.
func (s *Store) Fetch(ctx context.Context) error {
	if s.sessions.Current() == nil {
		return nil
	}

	coll, err := s.remote.ListDocuments(ctx, todosCollection)
	if err != nil {
		logger.Error("Fetch todos failed", logger.F("error", err))
		return err
	}

	s.mu.Lock()
	s.state.Todos = decodeTodos(coll)
	s.recomputeFilteredLocked()
	s.saveLocked()
	s.mu.Unlock()

	return nil
}

func (s *Store) find(id string) (model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, todo := range s.state.Todos {
		if todo.ID == id {
			return todo, true
		}
	}
	return model.Todo{}, false
}

func (s *Store) apply(id string, mutate func(*model.Todo)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Todos {
		if s.state.Todos[i].ID == id {
			mutate(&s.state.Todos[i])
			break
		}
	}
	s.recomputeFilteredLocked()
	s.saveLocked()
}

func (s *Store) setSubscription(cancel func()) {
	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()
}
