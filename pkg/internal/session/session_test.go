package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

func newStore(t *testing.T, ttl time.Duration) (*session.Store, kv.KVStore) {
	t.Helper()

	store, err := kv.New(context.Background(), configs.Default().KV)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := configs.Default().Auth
	cfg.SessionTTL = ttl

	return session.New(cache.NewCache(store), cfg), store
}

func TestIssueResolveRevoke(t *testing.T) {
	ctx := context.Background()
	s, store := newStore(t, time.Hour)

	token, err := s.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, token, 36)

	ok, err := store.Exists(ctx, "auth_"+token)
	require.NoError(t, err)
	assert.True(t, ok)

	userID, found, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user-1", userID)

	require.NoError(t, s.Revoke(ctx, token))
	require.NoError(t, s.Revoke(ctx, token))

	_, found, err = s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIssueGivesDistinctTokens(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, time.Hour)

	a, err := s.Issue(ctx, "u")
	require.NoError(t, err)
	b, err := s.Issue(ctx, "u")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestResolveUnknownToken(t *testing.T) {
	s, _ := newStore(t, time.Hour)

	for _, token := range []string{"", "not-a-token"} {
		_, found, err := s.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, 30*time.Millisecond)

	token, err := s.Issue(ctx, "u")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, found, err := s.Resolve(ctx, token)
		return err == nil && !found
	}, time.Second, 10*time.Millisecond)
}

type brokenStore struct{ kv.KVStore }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestResolveSurfacesStoreFailure(t *testing.T) {
	s := session.New(cache.NewCache(brokenStore{}), configs.Default().Auth)

	_, found, err := s.Resolve(context.Background(), "token")
	require.Error(t, err)
	assert.False(t, found)
}
