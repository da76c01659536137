package session

import (
	"context"
	"errors"
	"testing"

	"github.com/harulist/haru/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	identity  *model.Identity
	logoutErr error
}

func (f *fakeProvider) CurrentIdentity() *model.Identity { return f.identity }

func (f *fakeProvider) Logout(ctx context.Context) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.identity = nil
	return nil
}

func TestStartResolvesSession(t *testing.T) {
	p := &fakeProvider{identity: &model.Identity{ID: "u1", Email: "a@b.com"}}
	tr := NewTracker(p)

	assert.True(t, tr.Loading())
	assert.Nil(t, tr.Current())

	tr.Start()

	assert.False(t, tr.Loading())
	require.NotNil(t, tr.Current())
	assert.Equal(t, "u1", tr.Current().ID)
}

func TestStartGuest(t *testing.T) {
	tr := NewTracker(&fakeProvider{})
	tr.Start()

	assert.False(t, tr.Loading())
	assert.Nil(t, tr.Current())
}

func TestListenerFanOut(t *testing.T) {
	tr := NewTracker(&fakeProvider{})

	var seen []*model.Identity
	tr.OnChange(func(u *model.Identity) { seen = append(seen, u) })
	tr.OnChange(func(u *model.Identity) { seen = append(seen, u) })

	tr.Start()
	tr.SetIdentity(&model.Identity{ID: "u2"})

	require.Len(t, seen, 4)
	assert.Nil(t, seen[0])
	assert.Equal(t, "u2", seen[2].ID)
}

func TestLogoutClearsIdentity(t *testing.T) {
	p := &fakeProvider{identity: &model.Identity{ID: "u1"}}
	tr := NewTracker(p)
	tr.Start()

	var notified bool
	tr.OnChange(func(u *model.Identity) {
		notified = true
		assert.Nil(t, u)
	})

	require.NoError(t, tr.Logout(context.Background()))
	assert.Nil(t, tr.Current())
	assert.True(t, notified)
}

func TestLogoutProviderFailureKeepsIdentity(t *testing.T) {
	p := &fakeProvider{
		identity:  &model.Identity{ID: "u1"},
		logoutErr: errors.New("network down"),
	}
	tr := NewTracker(p)
	tr.Start()

	err := tr.Logout(context.Background())
	require.Error(t, err)
	assert.NotNil(t, tr.Current())
}
