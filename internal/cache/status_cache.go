package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/gtd_dragonpay/pkg/dragonpay"
)

// Store is the subset of RedisClient used by StatusCache.
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}

// StatusEntry is a cached GETSTATUS answer.
type StatusEntry struct {
	TransactionID string    `json:"transactionId"`
	Code          string    `json:"code"`
	Status        string    `json:"status"`
	CachedAt      time.Time `json:"cachedAt"`
}

// StatusCache caches gateway status lookups. Final statuses are kept longer
// than pending ones since they no longer change on the gateway.
type StatusCache struct {
	store    Store
	ttl      time.Duration
	finalTTL time.Duration
}

// NewStatusCache creates a new StatusCache.
func NewStatusCache(store Store, ttl, finalTTL time.Duration) *StatusCache {
	return &StatusCache{store: store, ttl: ttl, finalTTL: finalTTL}
}

func (c *StatusCache) key(txnID string) string {
	return fmt.Sprintf("dragonpay:status:%s", txnID)
}

// Set stores entry, picking the TTL from its decoded status.
func (c *StatusCache) Set(ctx context.Context, entry *StatusEntry) error {
	entry.CachedAt = time.Now()

	ttl := c.ttl
	if dragonpay.IsFinalStatus(entry.Status) {
		ttl = c.finalTTL
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal status entry: %w", err)
	}
	if err := c.store.Set(ctx, c.key(entry.TransactionID), string(data), ttl); err != nil {
		return fmt.Errorf("failed to cache status: %w", err)
	}
	return nil
}

// Get returns the cached entry for txnID or ErrMiss.
func (c *StatusCache) Get(ctx context.Context, txnID string) (*StatusEntry, error) {
	raw, err := c.store.Get(ctx, c.key(txnID))
	if err != nil {
		return nil, err
	}
	var entry StatusEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status entry: %w", err)
	}
	return &entry, nil
}

// Invalidate drops the cached entry for txnID.
func (c *StatusCache) Invalidate(ctx context.Context, txnID string) error {
	return c.store.Delete(ctx, c.key(txnID))
}
