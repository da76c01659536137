package local

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "haru.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("todo-state", []byte(`{"todos":[]}`)))

	value, ok, err := s.Load("todo-state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"todos":[]}`), value)
}

func TestLoadMissingKey(t *testing.T) {
	s := openTestStore(t)

	value, ok, err := s.Load("nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, value)
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("k", []byte("first")))
	require.NoError(t, s.Save("k", []byte("second")))

	value, ok, err := s.Load("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), value)
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("k", []byte("v")))
	require.NoError(t, s.Remove("k"))

	_, ok, err := s.Load("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing again is fine
	require.NoError(t, s.Remove("k"))
}
