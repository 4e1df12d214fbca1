package memory

import (
	"context"
	"encoding/json"
	"sync"
)

// StatsCache 进程内的 repository.StatsCache，不做过期
type StatsCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[string][]byte)}
}

func (c *StatsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *StatsCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *StatsCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}
