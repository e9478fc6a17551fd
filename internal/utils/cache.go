package utils

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      any
	ExpiresAt time.Time
}

// Cache 本地 LRU 缓存，带 TTL
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
	now      func() time.Time
}

// NewCache 创建指定容量的缓存
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &Cache{lruCache: l, now: time.Now}, nil
}

// Set 设置缓存，TTL 为过期时间
func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 nil
func (c *Cache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	// 检查过期
	if c.now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// Delete 删除指定缓存
func (c *Cache) Delete(key string) {
	c.lruCache.Remove(key)
}

// Purge 清空缓存，内容写入后调用
func (c *Cache) Purge() {
	c.lruCache.Purge()
}
