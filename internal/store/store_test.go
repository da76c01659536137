package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harulist/haru/internal/docstore"
	"github.com/harulist/haru/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessions implements Sessions with manual login/logout transitions
type fakeSessions struct {
	user      *model.Identity
	listeners []func(*model.Identity)
}

func (f *fakeSessions) Current() *model.Identity { return f.user }

func (f *fakeSessions) OnChange(fn func(*model.Identity)) {
	f.listeners = append(f.listeners, fn)
}

func (f *fakeSessions) login(user *model.Identity) {
	f.user = user
	for _, fn := range f.listeners {
		fn(user)
	}
}

func (f *fakeSessions) logout() {
	f.user = nil
	for _, fn := range f.listeners {
		fn(nil)
	}
}

// memPersister implements Persister in memory
type memPersister struct {
	blobs map[string][]byte
}

func newMemPersister() *memPersister {
	return &memPersister{blobs: map[string][]byte{}}
}

func (m *memPersister) Load(key string) ([]byte, bool, error) {
	value, ok := m.blobs[key]
	return value, ok, nil
}

func (m *memPersister) Save(key string, value []byte) error {
	m.blobs[key] = value
	return nil
}

func (m *memPersister) Remove(key string) error {
	delete(m.blobs, key)
	return nil
}

// fakeRemote implements Remote over an ordered in-memory collection
type fakeRemote struct {
	docs       []docstore.Document
	hasRecord  bool
	nextID     int
	failDelete map[string]bool

	subscribed   []fakeSubscription
	createCalls  int
	deletedCount int
}

type fakeSubscription struct {
	field     string
	equals    string
	callback  func(docstore.Collection)
	cancelled *bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{hasRecord: true, failDelete: map[string]bool{}}
}

func (f *fakeRemote) addTodo(todo model.Todo) string {
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	todo.ID = id
	data, _ := json.Marshal(todo)
	f.docs = append(f.docs, docstore.Document{ID: id, Data: data})
	return id
}

func (f *fakeRemote) Record(ctx context.Context) (docstore.Document, error) {
	if !f.hasRecord {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: "record", Data: []byte(`{}`)}, nil
}

func (f *fakeRemote) CreateDocument(ctx context.Context, collection string, data interface{}) (string, error) {
	f.createCalls++
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	f.nextID++
	id := fmt.Sprintf("doc-%d", f.nextID)
	f.docs = append(f.docs, docstore.Document{ID: id, Data: raw})
	return id, nil
}

func (f *fakeRemote) GetDocument(ctx context.Context, collection, id string) (docstore.Document, error) {
	for _, doc := range f.docs {
		if doc.ID == id {
			return doc, nil
		}
	}
	return docstore.Document{}, docstore.ErrNotFound
}

func (f *fakeRemote) UpdateDocument(ctx context.Context, collection, id string, patch interface{}) error {
	for i, doc := range f.docs {
		if doc.ID != id {
			continue
		}
		var merged map[string]interface{}
		if err := json.Unmarshal(doc.Data, &merged); err != nil {
			return err
		}
		patchRaw, err := json.Marshal(patch)
		if err != nil {
			return err
		}
		var patchMap map[string]interface{}
		if err := json.Unmarshal(patchRaw, &patchMap); err != nil {
			return err
		}
		for k, v := range patchMap {
			merged[k] = v
		}
		data, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		f.docs[i].Data = data
		return nil
	}
	return docstore.ErrNotFound
}

func (f *fakeRemote) DeleteDocument(ctx context.Context, collection, id string) error {
	if f.failDelete[id] {
		return errors.New("permission denied")
	}
	for i, doc := range f.docs {
		if doc.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			f.deletedCount++
			return nil
		}
	}
	return nil
}

func (f *fakeRemote) ListDocuments(ctx context.Context, collection string) (docstore.Collection, error) {
	return docstore.Collection{Documents: append([]docstore.Document{}, f.docs...)}, nil
}

func (f *fakeRemote) QueryDocuments(ctx context.Context, collection, field, equals string) (docstore.Collection, error) {
	var matched []docstore.Document
	for _, doc := range f.docs {
		var fields map[string]interface{}
		_ = json.Unmarshal(doc.Data, &fields)
		if fmt.Sprintf("%v", fields[field]) == equals {
			matched = append(matched, doc)
		}
	}
	return docstore.Collection{Documents: matched}, nil
}

func (f *fakeRemote) Subscribe(collection, field, equals string, callback func(docstore.Collection)) func() {
	cancelled := false
	f.subscribed = append(f.subscribed, fakeSubscription{
		field:     field,
		equals:    equals,
		callback:  callback,
		cancelled: &cancelled,
	})
	return func() { cancelled = true }
}

func newTestStore(t *testing.T) (*Store, *fakeSessions, *fakeRemote, *memPersister) {
	t.Helper()
	sessions := &fakeSessions{}
	remote := newFakeRemote()
	persist := newMemPersister()
	s := New(sessions, remote, persist)

	// Deterministic clock so rapid guest adds get distinct ids
	var tick int64
	s.now = func() time.Time {
		tick++
		return time.UnixMilli(1700000000000 + tick)
	}
	return s, sessions, remote, persist
}

func TestGuestReplayMatchesReferenceModel(t *testing.T) {
	s, _, remote, _ := newTestStore(t)
	ctx := context.Background()

	a, err := s.Add(ctx, "first", "body", "2024-01-01")
	require.NoError(t, err)
	b, err := s.Add(ctx, "second", "body", "2024-01-02")
	require.NoError(t, err)
	_, err = s.Add(ctx, "third", "body", "2024-01-03")
	require.NoError(t, err)

	require.NoError(t, s.ToggleCompleted(ctx, a.ID))
	require.NoError(t, s.ToggleImportant(ctx, b.ID))
	require.NoError(t, s.Edit(ctx, a.ID, "first edited", "new body", "2024-02-01"))
	require.NoError(t, s.Delete(ctx, b.ID))

	got := s.Snapshot().Todos
	require.Len(t, got, 2)
	assert.Equal(t, "first edited", got[0].Title)
	assert.Equal(t, "new body", got[0].Content)
	assert.Equal(t, "2024-02-01", got[0].Date)
	assert.True(t, got[0].Completed)
	assert.Equal(t, "third", got[1].Title)

	// Pure reducer semantics: no backend calls in guest mode
	assert.Zero(t, remote.createCalls)
	assert.Zero(t, remote.deletedCount)
}

func TestGuestAddNormalizesEmptyContent(t *testing.T) {
	s, _, _, _ := newTestStore(t)

	todo, err := s.Add(context.Background(), "Buy milk", "", "2024-01-01")
	require.NoError(t, err)

	assert.Equal(t, model.NonBreakingSpace, todo.Content)
	assert.False(t, todo.Completed)
	assert.False(t, todo.IsImportant)

	// Guest ids are the creation time in unix milliseconds
	assert.Equal(t, model.LocalID(time.UnixMilli(1700000000001)), todo.ID)

	require.NoError(t, s.ToggleImportant(context.Background(), todo.ID))
	require.NoError(t, s.ShowImportant(context.Background()))

	st := s.Snapshot()
	assert.True(t, st.IsFiltered)
	require.Len(t, st.FilteredTodos, 1)
	assert.Equal(t, todo.ID, st.FilteredTodos[0].ID)
	assert.True(t, st.FilteredTodos[0].IsImportant)
}

func TestGuestShowImportantThenShowAll(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, "a", "x", "")
	require.NoError(t, s.ToggleImportant(ctx, a.ID))
	require.NoError(t, s.ShowImportant(ctx))

	// Intervening mutations must not disturb the restore
	b, _ := s.Add(ctx, "b", "x", "")
	require.NoError(t, s.ToggleCompleted(ctx, b.ID))

	require.NoError(t, s.ShowAll(ctx))

	st := s.Snapshot()
	assert.False(t, st.IsFiltered)
	assert.Empty(t, st.FilteredTodos)
}

func TestGuestDeleteRecomputesFilteredView(t *testing.T) {
	s, _, _, _ := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Add(ctx, "a", "x", "")
	b, _ := s.Add(ctx, "b", "x", "")
	require.NoError(t, s.ToggleImportant(ctx, a.ID))
	require.NoError(t, s.ToggleImportant(ctx, b.ID))
	require.NoError(t, s.ShowImportant(ctx))

	require.NoError(t, s.Delete(ctx, a.ID))

	st := s.Snapshot()
	require.Len(t, st.FilteredTodos, 1)
	assert.Equal(t, b.ID, st.FilteredTodos[0].ID)
}

func TestAccountAddWritesThroughRemote(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	sessions.login(&model.Identity{ID: "u1"})

	todo, err := s.Add(context.Background(), "remote", "body", "2024-01-01")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", todo.ID)
	require.Len(t, remote.docs, 1)

	// The created document carries its own id after the stamp-back
	var stored model.Todo
	require.NoError(t, remote.docs[0].Decode(&stored))
	assert.Equal(t, "doc-1", stored.ID)

	got := s.Snapshot().Todos
	require.Len(t, got, 1)
	assert.Equal(t, "doc-1", got[0].ID)
}

func TestAccountAddMissingRecordAborts(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	sessions.login(&model.Identity{ID: "u1"})
	remote.hasRecord = false

	_, err := s.Add(context.Background(), "x", "y", "")
	require.ErrorIs(t, err, ErrRecordMissing)

	assert.Empty(t, s.Snapshot().Todos)
	assert.Zero(t, remote.createCalls)
	assert.Empty(t, remote.docs)
}

func TestAccountToggleReadsRemoteValue(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	id := remote.addTodo(model.Todo{Title: "t", Completed: false})
	sessions.login(&model.Identity{ID: "u1"})
	require.NoError(t, s.Fetch(context.Background()))

	require.NoError(t, s.ToggleCompleted(context.Background(), id))

	var stored model.Todo
	doc, err := remote.GetDocument(context.Background(), todosCollection, id)
	require.NoError(t, err)
	require.NoError(t, doc.Decode(&stored))
	assert.True(t, stored.Completed)

	got := s.Snapshot().Todos
	require.Len(t, got, 1)
	assert.True(t, got[0].Completed)
}

func TestAccountToggleMissingDocumentIsNoOp(t *testing.T) {
	s, sessions, _, _ := newTestStore(t)
	sessions.login(&model.Identity{ID: "u1"})

	err := s.ToggleImportant(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Snapshot().Todos)
}

func TestAccountDeleteRemoteFirst(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	id := remote.addTodo(model.Todo{Title: "t"})
	sessions.login(&model.Identity{ID: "u1"})
	require.NoError(t, s.Fetch(context.Background()))

	remote.failDelete[id] = true
	err := s.Delete(context.Background(), id)
	require.Error(t, err)

	// Remote delete failed, so local state is untouched
	require.Len(t, s.Snapshot().Todos, 1)

	remote.failDelete[id] = false
	require.NoError(t, s.Delete(context.Background(), id))
	assert.Empty(t, s.Snapshot().Todos)
	assert.Empty(t, remote.docs)
}

func TestAccountEditMissingDocumentAborts(t *testing.T) {
	s, sessions, _, _ := newTestStore(t)
	sessions.login(&model.Identity{ID: "u1"})

	err := s.Edit(context.Background(), "ghost", "t", "c", "d")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAccountClearAllPartialFailureKeepsLocal(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	remote.addTodo(model.Todo{Title: "a"})
	bad := remote.addTodo(model.Todo{Title: "b"})
	remote.addTodo(model.Todo{Title: "c"})
	sessions.login(&model.Identity{ID: "u1"})
	require.NoError(t, s.Fetch(context.Background()))

	remote.failDelete[bad] = true
	err := s.ClearAll(context.Background())
	require.Error(t, err)

	// Not partially cleared: all three still visible locally
	assert.Len(t, s.Snapshot().Todos, 3)
	// Best-effort: the other deletes still went through
	assert.Equal(t, 2, remote.deletedCount)
}

func TestAccountClearAllSuccessResetsState(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	remote.addTodo(model.Todo{Title: "a"})
	remote.addTodo(model.Todo{Title: "b"})
	sessions.login(&model.Identity{ID: "u1"})
	require.NoError(t, s.Fetch(context.Background()))
	require.NoError(t, s.ShowImportant(context.Background()))

	require.NoError(t, s.ClearAll(context.Background()))

	st := s.Snapshot()
	assert.Empty(t, st.Todos)
	assert.Empty(t, st.FilteredTodos)
	assert.False(t, st.IsFiltered)
	assert.Empty(t, remote.docs)
}

func TestLoginReplacesGuestTodos(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	ctx := context.Background()

	s.Add(ctx, "A", "x", "")
	s.Add(ctx, "B", "x", "")
	remote.addTodo(model.Todo{Title: "C"})

	sessions.login(&model.Identity{ID: "u1"})

	got := s.Snapshot().Todos
	require.Len(t, got, 1)
	assert.Equal(t, "C", got[0].Title)

	// Guest todos were not pushed to the account
	require.Len(t, remote.docs, 1)
}

func TestLogoutPurgesPersistedState(t *testing.T) {
	s, sessions, remote, persist := newTestStore(t)
	remote.addTodo(model.Todo{Title: "C"})
	sessions.login(&model.Identity{ID: "u1"})
	require.NoError(t, s.Fetch(context.Background()))

	_, ok, _ := persist.Load(StorageKey)
	require.True(t, ok)

	sessions.logout()

	assert.Empty(t, s.Snapshot().Todos)
	_, ok, _ = persist.Load(StorageKey)
	assert.False(t, ok, "persisted blob must be purged, not just in-memory state")
}

func TestAccountShowImportantSubscribes(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	important := remote.addTodo(model.Todo{Title: "hot", IsImportant: true})
	sessions.login(&model.Identity{ID: "u1"})

	require.NoError(t, s.ShowImportant(context.Background()))

	require.Len(t, remote.subscribed, 1)
	sub := remote.subscribed[0]
	assert.Equal(t, "isImportant", sub.field)
	assert.Equal(t, "true", sub.equals)

	// Simulate a server-side delivery
	coll, err := remote.QueryDocuments(context.Background(), todosCollection, "isImportant", "true")
	require.NoError(t, err)
	sub.callback(coll)

	st := s.Snapshot()
	assert.True(t, st.IsFiltered)
	require.Len(t, st.FilteredTodos, 1)
	assert.Equal(t, important, st.FilteredTodos[0].ID)
}

func TestSwitchingViewsCancelsPreviousSubscription(t *testing.T) {
	s, sessions, remote, _ := newTestStore(t)
	sessions.login(&model.Identity{ID: "u1"})

	require.NoError(t, s.ShowImportant(context.Background()))
	require.NoError(t, s.ShowAll(context.Background()))
	require.NoError(t, s.ShowImportant(context.Background()))

	require.Len(t, remote.subscribed, 3)
	assert.True(t, *remote.subscribed[0].cancelled)
	assert.True(t, *remote.subscribed[1].cancelled)
	assert.False(t, *remote.subscribed[2].cancelled)

	sessions.logout()
	assert.True(t, *remote.subscribed[2].cancelled, "logout must cancel the live view")
}

func TestStateRehydratesFromPersistence(t *testing.T) {
	sessions := &fakeSessions{}
	remote := newFakeRemote()
	persist := newMemPersister()

	s := New(sessions, remote, persist)
	todo, err := s.Add(context.Background(), "keep me", "body", "2024-01-01")
	require.NoError(t, err)
	s.SetTitle("draft title")

	// A fresh store over the same persister sees the same state,
	// drafts included
	s2 := New(&fakeSessions{}, newFakeRemote(), persist)
	st := s2.Snapshot()
	require.Len(t, st.Todos, 1)
	assert.Equal(t, todo.ID, st.Todos[0].ID)
	assert.Equal(t, "draft title", st.Title)
}
