package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const prefsKeyPrefix = "prefs:user:"

// redisStore 是 Store 的持久化实现，偏好以 JSON 形式保存在 Redis 中。
type redisStore struct {
	client   *redis.Client
	defaults Preferences
}

// NewRedisStore creates the durable Redis-backed preference store.
func NewRedisStore(client *redis.Client, defaults Preferences) Store {
	return &redisStore{client: client, defaults: defaults}
}

func (s *redisStore) Get(ctx context.Context, userID uint) (Preferences, error) {
	key := fmt.Sprintf("%s%d", prefsKeyPrefix, userID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return s.defaults, nil // 从未保存过偏好，返回默认值
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("读取用户 %d 偏好失败: %w", userID, err)
	}

	var p Preferences
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return Preferences{}, fmt.Errorf("解析用户 %d 偏好失败: %w", userID, err)
	}
	return p, nil
}

func (s *redisStore) Set(ctx context.Context, userID uint, p Preferences) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("序列化用户 %d 偏好失败: %w", userID, err)
	}

	key := fmt.Sprintf("%s%d", prefsKeyPrefix, userID)
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("保存用户 %d 偏好失败: %w", userID, err)
	}
	return nil
}
