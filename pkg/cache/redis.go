package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache 报表读路径的 JSON 缓存
// nil 接收者安全：未配置 Redis 时所有操作退化为未命中/no-op
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New 创建缓存；addr 为空返回 nil（直查数据库）
func New(addr, password string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &Cache{client: client, ttl: ttl}
}

// GetJSON 命中时反序列化到 dest，返回是否命中
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON 写入缓存，失败只影响命中率，不上抛
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, raw, c.ttl)
}

// Invalidate 删除指定键
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// Close 关闭底层连接
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
