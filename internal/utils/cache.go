package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache 是带过期时间的 LRU 缓存，值类型由调用方决定
type Cache[V any] struct {
	entries *lru.Cache[string, entry[V]]
	now     func() time.Time
}

// NewCache creates a cache holding at most size entries.
func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Cache[V]{entries: l, now: time.Now}, nil
}

// Set 写入缓存，ttl <= 0 时不缓存
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.entries.Add(key, entry[V]{value: value, expiresAt: c.now().Add(ttl)})
}

// Get 读取缓存；过期的条目顺手删掉
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.entries.Get(key)
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Delete(keys ...string) {
	for _, key := range keys {
		c.entries.Remove(key)
	}
}

func (c *Cache[V]) Len() int {
	return c.entries.Len()
}
