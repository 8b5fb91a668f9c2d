package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestStatusCacheTTLByStatus(t *testing.T) {
	store := newMemStore()
	c := NewStatusCache(store, 30*time.Second, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &StatusEntry{TransactionID: "T1", Code: "P", Status: "pending"}))
	require.NoError(t, c.Set(ctx, &StatusEntry{TransactionID: "T2", Code: "S", Status: "success"}))

	require.Equal(t, 30*time.Second, store.ttls["dragonpay:status:T1"])
	require.Equal(t, 24*time.Hour, store.ttls["dragonpay:status:T2"])

	got, err := c.Get(ctx, "T2")
	require.NoError(t, err)
	require.Equal(t, "success", got.Status)
	require.False(t, got.CachedAt.IsZero())
}

func TestStatusCacheMissAndInvalidate(t *testing.T) {
	c := NewStatusCache(newMemStore(), time.Minute, time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, &StatusEntry{TransactionID: "T1", Status: "void"}))
	require.NoError(t, c.Invalidate(ctx, "T1"))
	_, err = c.Get(ctx, "T1")
	require.ErrorIs(t, err, ErrMiss)
}

func TestStatusCacheDisabledTTL(t *testing.T) {
	store := newMemStore()
	c := NewStatusCache(store, 0, time.Hour)
	require.NoError(t, c.Set(context.Background(), &StatusEntry{TransactionID: "T1", Status: "pending"}))
	require.Empty(t, store.data)
}
