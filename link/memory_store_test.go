package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claritycash "github.com/clarity-cash/claritycash"
)

func TestMemoryTokenStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	defer store.Close()

	grant := testGrant()
	require.NoError(t, store.Put(ctx, grant))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, grant, got)
}

func TestMemoryTokenStore_EmptyGet(t *testing.T) {
	store := NewMemoryTokenStore()
	defer store.Close()

	got, err := store.Get(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, claritycash.ErrLinkTokenNotFound)
}

func TestMemoryTokenStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	defer store.Close()

	first := testGrant()
	second := testGrant()
	second.AttemptID = "attempt-2"
	second.LinkToken = "link-sandbox-def"

	require.NoError(t, store.Put(ctx, first))
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "attempt-2", got.AttemptID)
}

func TestMemoryTokenStore_ExpiredGrantClearsSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	defer store.Close()

	require.NoError(t, store.Put(ctx, testGrant()))

	expired := testGrant()
	expired.Expiration = time.Now().Add(-time.Minute)
	require.NoError(t, store.Put(ctx, expired))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, claritycash.ErrLinkTokenNotFound)
}

func TestMemoryTokenStore_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()
	defer store.Close()

	require.NoError(t, store.Put(ctx, testGrant()))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, claritycash.ErrLinkTokenNotFound)
}
