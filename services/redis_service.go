package services

import (
	"context"
	"encoding/json"
	"time"

	"vcall-signal-service/config"

	"github.com/go-redis/redis/v8"
)

// 在线状态快照的缓存键前缀与有效期
const (
	presenceCachePrefix = "vcall:presence:"
	presenceCacheTTL    = 24 * time.Hour
)

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: "", // No password set
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()

	return &RedisService{
		Client: client,
		Ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// Get gets a value from Redis by key
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Delete deletes a key from Redis
func (s *RedisService) Delete(key string) error {
	return s.Client.Del(s.Ctx, key).Err()
}

// CachePresence 写入用户在线状态快照
func (s *RedisService) CachePresence(userID, status string) error {
	return s.Client.Set(s.Ctx, presenceCachePrefix+userID, status, presenceCacheTTL).Err()
}

// GetCachedPresence 读取用户在线状态快照
func (s *RedisService) GetCachedPresence(userID string) (string, error) {
	return s.Client.Get(s.Ctx, presenceCachePrefix+userID).Result()
}
