package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

const pageKeyPrefix = "recipe-ingest:page:"

// PageCache 以 Redis 快取抓取結果；nil 代表停用
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache 創建網頁快取，停用時回傳 nil
func NewPageCache(ctx context.Context, cfg config.RedisConfig) (*PageCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewPageCacheWithClient(client, cfg.TTL), nil
}

// NewPageCacheWithClient 使用既有的 client
func NewPageCacheWithClient(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Get 取得快取的網頁
func (c *PageCache) Get(ctx context.Context, url string) (*Page, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, pageKey(url)).Bytes()
	if err != nil {
		if err != redis.Nil {
			common.LogWarn("Page cache lookup failed", zap.Error(err))
		}
		common.LogCacheMiss("page")
		return nil, false
	}

	var page Page
	if err := common.ParseJSONBytes(data, &page); err != nil {
		common.LogWarn("Page cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	page.FromCache = true
	common.LogCacheHit("page")
	return &page, true
}

// Set 儲存網頁，失敗只記錄不回傳
func (c *PageCache) Set(ctx context.Context, page *Page) {
	if c == nil {
		return
	}

	data, err := common.ToJSON(page)
	if err != nil {
		common.LogWarn("Failed to encode page for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, pageKey(page.URL), data, c.ttl).Err(); err != nil {
		common.LogWarn("Failed to store page in cache", zap.Error(err))
	}
}

// Close 關閉連線
func (c *PageCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func pageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return pageKeyPrefix + hex.EncodeToString(sum[:])
}
