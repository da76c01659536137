package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harulist/haru/internal/docstore"
	"github.com/harulist/haru/internal/model"
)

// todosCollection is the remote collection todos are mirrored into
const todosCollection = "todos"

// ErrRecordMissing is returned when an account operation finds no backing
// record for the user on the server. Writing todos for such an account
// would strand them, so the operation aborts without mutating anything.
var ErrRecordMissing = errors.New("account record missing on server")

// ErrNotFound is returned when a targeted remote todo does not exist
var ErrNotFound = docstore.ErrNotFound

// Remote is the document-store collaborator, narrowed to what the store
// uses. Subscribe returns a cancel function for the live query.
type Remote interface {
	Record(ctx context.Context) (docstore.Document, error)
	CreateDocument(ctx context.Context, collection string, data interface{}) (string, error)
	GetDocument(ctx context.Context, collection, id string) (docstore.Document, error)
	UpdateDocument(ctx context.Context, collection, id string, patch interface{}) error
	DeleteDocument(ctx context.Context, collection, id string) error
	ListDocuments(ctx context.Context, collection string) (docstore.Collection, error)
	QueryDocuments(ctx context.Context, collection, field, equals string) (docstore.Collection, error)
	Subscribe(collection, field, equals string, callback func(docstore.Collection)) (cancel func())
}

// clientRemote adapts *docstore.Client to the Remote interface
type clientRemote struct {
	*docstore.Client
}

func (r clientRemote) Subscribe(collection, field, equals string, callback func(docstore.Collection)) func() {
	sub := r.Client.Subscribe(collection, field, equals, callback)
	return sub.Unsubscribe
}

// NewRemote wraps the docstore client for use by the store
func NewRemote(c *docstore.Client) Remote {
	return clientRemote{c}
}

// repository is the per-mode backing for mutation operations. The local
// variant acts on nothing but its return values (the store owns the
// in-memory list); the remote variant writes through to the document
// store first and reports what to mirror.
type repository interface {
	add(ctx context.Context, todo model.Todo) (model.Todo, error)
	delete(ctx context.Context, id string) error
	toggleCompleted(ctx context.Context, id string, current bool) (bool, error)
	toggleImportant(ctx context.Context, id string, current bool) (bool, error)
	edit(ctx context.Context, id, title, content, date string) error
	clearAll(ctx context.Context) error
}

// localRepository backs guest mode: no collaborators, ids derived from
// creation time
type localRepository struct {
	now func() time.Time
}

func (r *localRepository) add(ctx context.Context, todo model.Todo) (model.Todo, error) {
	todo.ID = model.LocalID(r.now())
	return todo, nil
}

func (r *localRepository) delete(ctx context.Context, id string) error { return nil }

func (r *localRepository) toggleCompleted(ctx context.Context, id string, current bool) (bool, error) {
	return !current, nil
}

func (r *localRepository) toggleImportant(ctx context.Context, id string, current bool) (bool, error) {
	return !current, nil
}

func (r *localRepository) edit(ctx context.Context, id, title, content, date string) error {
	return nil
}

func (r *localRepository) clearAll(ctx context.Context) error { return nil }

// remoteRepository backs account mode: every mutation is written to the
// remote collection before the store mirrors it
type remoteRepository struct {
	remote Remote
}

func (r *remoteRepository) add(ctx context.Context, todo model.Todo) (model.Todo, error) {
	// The account's backing record must exist before todos are attached
	// to it
	if _, err := r.remote.Record(ctx); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return model.Todo{}, ErrRecordMissing
		}
		return model.Todo{}, fmt.Errorf("failed to check account record: %w", err)
	}

	id, err := r.remote.CreateDocument(ctx, todosCollection, todo)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}

	// Stamp the assigned id back into the document so its data is
	// self-contained
	if err := r.remote.UpdateDocument(ctx, todosCollection, id, map[string]string{"id": id}); err != nil {
		return model.Todo{}, fmt.Errorf("failed to stamp todo id: %w", err)
	}

	todo.ID = id
	return todo, nil
}

func (r *remoteRepository) delete(ctx context.Context, id string) error {
	if err := r.remote.DeleteDocument(ctx, todosCollection, id); err != nil {
		return fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return nil
}

func (r *remoteRepository) toggleCompleted(ctx context.Context, id string, current bool) (bool, error) {
	return r.toggleField(ctx, id, "completed", func(t model.Todo) bool { return t.Completed })
}

func (r *remoteRepository) toggleImportant(ctx context.Context, id string, current bool) (bool, error) {
	return r.toggleField(ctx, id, "isImportant", func(t model.Todo) bool { return t.IsImportant })
}

// toggleField reads the remote document's current boolean and writes its
// negation. The remote value wins over whatever the local mirror held.
func (r *remoteRepository) toggleField(ctx context.Context, id, field string, get func(model.Todo) bool) (bool, error) {
	doc, err := r.remote.GetDocument(ctx, todosCollection, id)
	if err != nil {
		return false, fmt.Errorf("todo %s: %w", id, err)
	}

	var todo model.Todo
	if err := doc.Decode(&todo); err != nil {
		return false, fmt.Errorf("todo %s: %w", id, err)
	}

	next := !get(todo)
	if err := r.remote.UpdateDocument(ctx, todosCollection, id, map[string]bool{field: next}); err != nil {
		return false, fmt.Errorf("todo %s: %w", id, err)
	}

	return next, nil
}

func (r *remoteRepository) edit(ctx context.Context, id, title, content, date string) error {
	// Read-before-write: a missing document aborts with no partial update
	if _, err := r.remote.GetDocument(ctx, todosCollection, id); err != nil {
		return fmt.Errorf("todo %s: %w", id, err)
	}

	patch := map[string]string{
		"title":   title,
		"content": content,
		"date":    date,
	}
	if err := r.remote.UpdateDocument(ctx, todosCollection, id, patch); err != nil {
		return fmt.Errorf("todo %s: %w", id, err)
	}
	return nil
}

// clearAll deletes every remote todo, best-effort: individual failures
// are collected and do not stop the rest. Any failure means the caller
// must not reset local state.
func (r *remoteRepository) clearAll(ctx context.Context) error {
	coll, err := r.remote.ListDocuments(ctx, todosCollection)
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}

	var errs []error
	for _, doc := range coll.Documents {
		if err := r.remote.DeleteDocument(ctx, todosCollection, doc.ID); err != nil {
			errs = append(errs, fmt.Errorf("todo %s: %w", doc.ID, err))
		}
	}
	return errors.Join(errs...)
}

// decodeTodos maps a collection snapshot to todos, using the server's
// document ids
func decodeTodos(coll docstore.Collection) []model.Todo {
	todos := make([]model.Todo, 0, len(coll.Documents))
	for _, doc := range coll.Documents {
		var todo model.Todo
		if err := doc.Decode(&todo); err != nil {
			continue
		}
		todo.ID = doc.ID
		todos = append(todos, todo)
	}
	return todos
}
