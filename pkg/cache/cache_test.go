package cache_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
)

type testUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// mockKVStore 模拟KV存储实现，可注入错误.
type mockKVStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}

	if value, ok := m.data[key]; ok {
		return value, nil
	}

	return nil, fmt.Errorf("%w: %s", kv.ErrKeyNotFound, key)
}

func (m *mockKVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}

	m.data[key] = value
	m.ttls[key] = ttl

	return nil
}

func (m *mockKVStore) Delete(_ context.Context, key string) error {
	delete(m.data, key)

	return nil
}

func (m *mockKVStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.data[key]

	return ok, nil
}

func (m *mockKVStore) Keys(_ context.Context, _ string) ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}

	return keys, nil
}

func (m *mockKVStore) Ping(context.Context) error { return m.err }

func (m *mockKVStore) Close() error { return nil }

func TestGetSet(t *testing.T) {
	store := newMockKVStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	_, err := cache.Get[testUser](ctx, c, "missing")
	require.Error(t, err)
	assert.True(t, cache.IsMiss(err))

	u := testUser{ID: "01HZX", Email: "bob@dylan.com"}
	require.NoError(t, cache.Set(ctx, c, "user:1", u, time.Minute))
	assert.Equal(t, time.Minute, store.ttls["user:1"])

	got, err := cache.Get[testUser](ctx, c, "user:1")
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestPrefix(t *testing.T) {
	store := newMockKVStore()
	sessions := cache.NewCache(store).WithPrefix("auth_")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sessions, "tok", "user-1", 0))
	assert.Contains(t, store.data, "auth_tok")

	keys, err := sessions.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tok"}, keys)

	require.NoError(t, sessions.Delete(ctx, "tok"))

	ok, err := sessions.Exists(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreErrorIsNotMiss(t *testing.T) {
	store := newMockKVStore()
	store.err = errors.New("connection refused")
	c := cache.NewCache(store)

	_, err := cache.Get[string](context.Background(), c, "k")
	require.Error(t, err)
	assert.False(t, cache.IsMiss(err))
}

func TestGetOrSet(t *testing.T) {
	store := newMockKVStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	calls := 0
	getter := func() (testUser, error) {
		calls++

		return testUser{ID: "5", Email: "eve@example.com"}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "user:5", getter, 0)
	require.NoError(t, err)

	second, err := cache.GetOrSet(ctx, c, "user:5", getter, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = cache.GetOrSet(ctx, c, "user:6", func() (testUser, error) {
		return testUser{}, errors.New("boom")
	}, 0)
	require.EqualError(t, err, "boom")

	store.err = errors.New("down")

	_, err = cache.GetOrSet(ctx, c, "user:7", getter, 0)
	require.EqualError(t, err, "down")
	assert.Equal(t, 1, calls)
}
