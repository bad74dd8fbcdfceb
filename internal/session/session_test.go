package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showup-events/showup/internal/api"
)

type fakeFetcher struct {
	users    map[string]*api.User
	accounts map[string]*api.Account
}

func (f *fakeFetcher) GetUser(_ context.Context, id string) (*api.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("failed to fetch user details")
}

func (f *fakeFetcher) GetAccount(_ context.Context, id string) (*api.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, errors.New("failed to fetch account details")
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return &FileStore{Path: filepath.Join(t.TempDir(), "state", "session.yaml")}
}

func TestFileStore_RoundTrip(t *testing.T) {
	store := newStore(t)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	require.NoError(t, store.Save(State{UserID: "u1", AccountID: "a1"}))
	st, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{UserID: "u1", AccountID: "a1"}, st)

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Save(State{}))
	_, err = os.Stat(store.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "empty state removes the file")
}

func TestFileStore_Corrupt(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path), 0o700))
	require.NoError(t, os.WriteFile(store.Path, []byte("userId: [unterminated"), 0o600))

	_, err := store.Load()
	assert.Error(t, err)
}

func TestSession_Hydrate(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(State{UserID: "u1", AccountID: "a1"}))

	fetch := &fakeFetcher{
		users:    map[string]*api.User{"u1": {ID: "u1", Username: "dana"}},
		accounts: map[string]*api.Account{"a1": {ID: "a1", Name: "Wedding Co"}},
	}
	s, err := New(store, fetch, logr.Discard())
	require.NoError(t, err)

	require.NoError(t, s.Hydrate(context.Background()))
	assert.Equal(t, "dana", s.User().Username)
	assert.Equal(t, "Wedding Co", s.Account().Name)

	id, err := s.UserID()
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestSession_HydrateDropsUnknownIDs(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(State{UserID: "gone", AccountID: "a1"}))

	fetch := &fakeFetcher{accounts: map[string]*api.Account{"a1": {ID: "a1", Name: "Wedding Co"}}}
	s, err := New(store, fetch, logr.Discard())
	require.NoError(t, err)

	err = s.Hydrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user:")
	assert.Nil(t, s.User())
	assert.NotNil(t, s.Account())

	_, err = s.UserID()
	assert.ErrorIs(t, err, ErrNoUser)

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{AccountID: "a1"}, st)
}

func TestSession_HydrateEmpty(t *testing.T) {
	s, err := New(newStore(t), &fakeFetcher{}, logr.Discard())
	require.NoError(t, err)

	assert.NoError(t, s.Hydrate(context.Background()))
	assert.Nil(t, s.User())
}

func TestSession_SetAndClear(t *testing.T) {
	store := newStore(t)
	s, err := New(store, &fakeFetcher{}, logr.Discard())
	require.NoError(t, err)

	s.SetUser(&api.User{ID: "u9"})
	s.SetAccount(&api.Account{ID: "a9"})

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{UserID: "u9", AccountID: "a9"}, st)

	s.Clear()
	assert.Nil(t, s.User())
	assert.Nil(t, s.Account())
	st, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, State{}, st)
}
