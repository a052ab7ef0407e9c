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

	"github.com/dfn-network/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "dfn"
	pingTimeout   = 3 * time.Second
)

var (
	redisClient *redis.Client
	redisPrefix = defaultPrefix
)

// InitRedis 初始化 Redis 客户端
// 未启用时保持关闭；启用但无法连通时返回错误并保持关闭，调用方降级为本地实现
func InitRedis(cfg *config.RedisConfig) error {
	redisClient = nil
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		redisPrefix = prefix
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	redisClient = client
	return nil
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return redisClient != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	return redisClient
}

// Prefix 键前缀
func Prefix() string {
	return redisPrefix
}

// Key 拼接带前缀的键
func Key(parts ...string) string {
	return strings.Join(append([]string{redisPrefix}, parts...), ":")
}

// GetJSON 获取 JSON 缓存
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Del(ctx, Key(key)).Err()
}

// Remember 读取缓存，未命中时调用 load 并回写
// 缓存读写失败不影响结果，通过 onErr 上报
func Remember[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error), onErr func(stage string, err error)) (T, error) {
	var cached T
	hit, err := GetJSON(ctx, key, &cached)
	if err != nil && onErr != nil {
		onErr("get", err)
	}
	if hit {
		return cached, nil
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	if err := SetJSON(ctx, key, value, ttl); err != nil && onErr != nil {
		onErr("set", err)
	}
	return value, nil
}
