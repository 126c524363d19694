package ocr

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

// ResultCache 以圖片雜湊快取辨識結果
type ResultCache struct {
	mu      sync.Mutex
	store   map[string]cacheEntry
	maxSize int
	ttl     time.Duration
	stats   cacheStats
	stop    chan struct{}
	once    sync.Once
}

// cacheEntry 緩存條目
type cacheEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// cacheStats 緩存統計
type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewResultCache 創建結果快取，停用時回傳 nil
func NewResultCache(cfg config.CacheConfig) *ResultCache {
	if !cfg.Enabled {
		common.LogInfo("OCR cache disabled")
		return nil
	}

	c := &ResultCache{
		store:   make(map[string]cacheEntry),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		stop:    make(chan struct{}),
	}

	// 啟動清理過期緩存的協程
	if cfg.CleanupInterval > 0 {
		go c.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("快取管理員已初始化",
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
	)
	return c
}

// Get 取得快取結果
func (c *ResultCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		c.stats.misses++
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.evictions++
		c.stats.misses++
		return "", false
	}

	// 更新訪問統計
	entry.lastAccess = time.Now()
	entry.accessCount++
	c.store[key] = entry
	c.stats.hits++
	return entry.value, true
}

// Set 儲存結果，滿了先清過期再淘汰最少使用者
func (c *ResultCache) Set(key, value string) {
	if c == nil || c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxSize {
		c.cleanup()
		for len(c.store) >= c.maxSize {
			c.evictLRU()
		}
	}

	now := time.Now()
	c.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
}

// Len 目前項目數
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// startCleanup 定期清理過期項目，直到 Close
func (c *ResultCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.cleanup()
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

// cleanup 清理過期的緩存，呼叫者需持有鎖
func (c *ResultCache) cleanup() int {
	now := time.Now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
			c.stats.evictions++
		}
	}
	return count
}

// evictLRU 淘汰訪問次數最少、最久未使用的項目
func (c *ResultCache) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.evictions++
	}
}

// Close 停止清理協程
func (c *ResultCache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		close(c.stop)
		c.mu.Lock()
		defer c.mu.Unlock()
		common.LogInfo("快取管理員已關閉",
			zap.Int64("命中次數", c.stats.hits),
			zap.Int64("未命中次數", c.stats.misses),
			zap.Int64("淘汰次數", c.stats.evictions),
		)
		c.store = make(map[string]cacheEntry)
	})
}
