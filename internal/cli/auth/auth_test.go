package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/branchd-dev/storefront/internal/session"
)

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	store := NewKeyringStore("https://shop.example.com")

	snap, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{}, snap)

	want := session.Snapshot{User: `{"_id":"u1"}`, Token: "tok-1"}
	require.NoError(t, store.Write(ctx, want))

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Profiles do not share items
	other, err := NewKeyringStore("https://other.example.com").Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{}, other)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	got, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{}, got)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions", "shop.json")
	store := NewFileStore(path)

	snap, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.Snapshot{}, snap)

	want := session.Snapshot{User: `{"_id":"u1"}`, Token: "tok-1"}
	require.NoError(t, store.Write(ctx, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	_, err := NewFileStore(path).Read(context.Background())
	require.ErrorIs(t, err, session.ErrInvalidSession)
}

func TestFileStore_HydratesSessionStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"user":"{\"_id\":\"u1\",\"role\":\"user\"}","userToken":"tok-9"}`), 0600))

	store := session.NewStore(NewFileStore(path), zerolog.Nop())
	got := store.Hydrate(ctx)

	assert.True(t, got.IsAuthenticated)
	assert.Equal(t, "tok-9", got.Token)
	assert.Equal(t, "u1", got.User.ID)
}

// failingDelete wraps the mock keyring and refuses to delete one item
type failingDelete struct {
	osKeyring
	key string
}

func (f failingDelete) Delete(service, user string) error {
	if user == f.key {
		return errors.New("keychain locked")
	}
	return f.osKeyring.Delete(service, user)
}

func TestKeyringStore_ClearRestoresTokenOnFailure(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()

	store := NewKeyringStore("https://shop.example.com")
	want := session.Snapshot{User: `{"_id":"u1","role":"user"}`, Token: "tok-1"}
	require.NoError(t, store.Write(ctx, want))

	store.ring = failingDelete{key: store.getKeyringKey(session.KeyUser)}
	sessions := session.NewStore(store, zerolog.Nop())
	require.True(t, sessions.Hydrate(ctx).IsAuthenticated)

	require.Error(t, sessions.SignOut(ctx))
	assert.True(t, sessions.Session().IsAuthenticated)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
