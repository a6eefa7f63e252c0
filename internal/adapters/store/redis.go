package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "replies:"

// RedisStore хранит каждый список ответов под своим ключем <prefix><original id>
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(originalID string) string {
	return s.prefix + originalID
}

func (s *RedisStore) GetReplies(ctx context.Context, originalID string) ([]string, error) {
	raw, err := s.client.Get(ctx, s.key(originalID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key(originalID), err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.key(originalID), err)
	}
	return ids, nil
}

func (s *RedisStore) SetReplies(ctx context.Context, originalID string, replyIDs []string) error {
	if replyIDs == nil {
		replyIDs = []string{}
	}
	raw, err := json.Marshal(replyIDs)
	if err != nil {
		return fmt.Errorf("marshal replies: %w", err)
	}
	if err := s.client.Set(ctx, s.key(originalID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(originalID), err)
	}
	return nil
}

// Ping проверяет соединение при старте
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
