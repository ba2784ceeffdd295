// Package cache 封装 Redis，未启用或不可达时所有读写退化为未命中/空操作。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/paygate-next/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "pg"
	pingTimeout      = 3 * time.Second
)

var (
	client    *redis.Client
	keyPrefix = defaultKeyPrefix
)

// InitRedis 初始化并探活 Redis；不可达时保持禁用并返回错误
func InitRedis(cfg *config.RedisConfig) error {
	client = nil
	keyPrefix = defaultKeyPrefix
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		keyPrefix = prefix
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}

	candidate := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := candidate.Ping(ctx).Err(); err != nil {
		_ = candidate.Close()
		return fmt.Errorf("redis %s unreachable: %w", candidate.Options().Addr, err)
	}
	client = candidate
	return nil
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return client != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	return client
}

// Key 拼接带全局前缀的 key，空段会被忽略
func Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, keyPrefix)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, ":")
}

// GetJSON 读取 JSON 缓存，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// 脏数据直接丢弃，按未命中处理
		_ = client.Del(ctx, Key(key)).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, Key(key)).Err()
}
