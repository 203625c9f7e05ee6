package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix = "user:"
)

// RedisStore はユーザー情報を Redis に JSON で保存します。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Get はユーザー情報を取得します。
func (s *RedisStore) Get(ctx context.Context, email string) (*Record, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	data, err := s.rdb.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create は SETNX でユーザー情報を保存します（既に存在する場合は ErrAlreadyExists）。
func (s *RedisStore) Create(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.Email == "" {
		return fmt.Errorf("record.Email is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, userKey(record.Email), payload, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyExists
	}
	return nil
}

func userKey(email string) string {
	return userKeyPrefix + email
}
