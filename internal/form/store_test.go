package form

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestStoreRoundTripKeepsDirtyState(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	d := loaded()
	require.NoError(t, d.PatchField("name", "Grace"))
	require.NoError(t, Save(ctx, store, "sess", "supplier:7", d))
	assert.True(t, mr.Exists("draft:sess:supplier:7"))

	got, found, err := Load[contact](ctx, store, "sess", "supplier:7")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Dirty())
	assert.Equal(t, "Grace", got.Current.Name)
	assert.Equal(t, "Ada", got.Snapshot.Name)

	require.NoError(t, store.Discard(ctx, "sess", "supplier:7"))
	_, found, err = Load[contact](ctx, store, "sess", "supplier:7")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreDraftExpires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	require.NoError(t, Save(ctx, store, "sess", "product:new", loaded()))
	mr.FastForward(2 * time.Hour)
	_, found, err := Load[contact](ctx, store, "sess", "product:new")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreIgnoresCorruptDraft(t *testing.T) {
	store, mr := newStore(t)
	require.NoError(t, mr.Set("draft:sess:x", "{not json"))
	d, found, err := Load[contact](context.Background(), store, "sess", "x")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, StateLoading, d.State)
}

func TestSubmitLockIsExclusive(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	release, err := store.Lock(ctx, "sess", "po:3")
	require.NoError(t, err)

	_, err = store.Lock(ctx, "sess", "po:3")
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	// other forms are independent
	other, err := store.Lock(ctx, "sess", "po:4")
	require.NoError(t, err)
	other()

	release()
	again, err := store.Lock(ctx, "sess", "po:3")
	require.NoError(t, err)
	again()
}
