package content_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
)

func TestLocalPutGet(t *testing.T) {
	root := filepath.Join(t.TempDir(), "files_manager")
	store, err := content.NewLocal(root)
	require.NoError(t, err)

	ctx := context.Background()
	key := store.NewKey()
	assert.True(t, strings.HasPrefix(key, root+string(filepath.Separator)))
	assert.NotEqual(t, key, store.NewKey())

	_, err = os.Stat(root)
	require.True(t, os.IsNotExist(err), "root is created lazily")
	require.NoError(t, store.Ping(ctx))

	require.NoError(t, store.Put(ctx, key, []byte("Hello")))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(got))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	_, err = store.Get(ctx, content.VariantKey(key, 500))
	require.ErrorIs(t, err, content.ErrNotFound)
}

func TestLocalPutFailsWhenRootIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store, err := content.NewLocal(blocker)
	require.NoError(t, err)

	err = store.Put(context.Background(), store.NewKey(), []byte("data"))
	require.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

func TestVariantKey(t *testing.T) {
	assert.Equal(t, "/tmp/files_manager/abc_250", content.VariantKey("/tmp/files_manager/abc", 250))
}

func TestCachedServesFromCache(t *testing.T) {
	root := t.TempDir()
	local, err := content.NewLocal(root)
	require.NoError(t, err)

	cached := content.NewCached(local, 1<<20)
	ctx := context.Background()
	key := cached.NewKey()

	_, err = cached.Get(ctx, key)
	require.ErrorIs(t, err, content.ErrNotFound, "misses are not cached")

	require.NoError(t, cached.Put(ctx, key, []byte("payload")))

	got, err := cached.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	require.NoError(t, os.Remove(key))

	got, err = cached.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
	assert.EqualValues(t, 1, cached.Stats().CacheHits.Get())
}

func TestNewFromConfig(t *testing.T) {
	cfg := configs.Default().Content
	cfg.Root = t.TempDir()

	store, err := content.New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "local+groupcache", store.Backend())

	cfg.Backend = "ftp"
	_, err = content.New(context.Background(), cfg)
	require.Error(t, err)
}
