package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	sessionredis "github.com/gin-contrib/sessions/redis"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/config"
	"github.com/yourusername/user-portal/internal/users"
)

// Redis セッションストアは MaxAge <= 0 を削除扱いにするため、明示的な有効期限を持たせる
const redisSessionMaxAge = 24 * time.Hour

// setupCredentialStore は設定に応じた認証情報ストアを作成します。
func setupCredentialStore(ctx context.Context, cfg *config.Config) (users.Store, func(), error) {
	switch cfg.CredentialStore {
	case config.CredentialStoreMemory:
		return users.NewMemoryStore(), func() {}, nil

	case config.CredentialStoreRedis:
		opt, err := redis.ParseURL(cfg.UsersRedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse USERS_REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect users redis: %w", err)
		}
		return users.NewRedisStore(client), func() { _ = client.Close() }, nil

	case config.CredentialStoreDynamoDB:
		client, err := users.NewDynamoClient(ctx, users.DynamoOptions{
			Region:          cfg.AWSRegion,
			Endpoint:        cfg.DynamoEndpoint,
			AccessKeyID:     cfg.DynamoAccessKeyID,
			SecretAccessKey: cfg.DynamoSecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return users.NewDynamoStore(client, cfg.DynamoTable), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported credential store: %s", cfg.CredentialStore)
	}
}

// setupSessionStore は設定に応じたセッションストアと、そのCookie属性を返します。
func setupSessionStore(cfg *config.Config) (sessions.Store, sessions.Options, error) {
	secure := cfg.GinMode == "release"
	secret := []byte(cfg.SessionSecret)

	switch cfg.SessionStore {
	case config.SessionStoreMemory:
		opts := auth.SessionOptions(secure, 0)
		store := memstore.NewStore(secret)
		store.Options(opts)
		return store, opts, nil

	case config.SessionStoreRedis:
		store, err := sessionredis.NewStore(10, "tcp", cfg.SessionRedisAddr, "", "", secret)
		if err != nil {
			return nil, sessions.Options{}, fmt.Errorf("failed to connect session redis: %w", err)
		}
		opts := auth.SessionOptions(secure, int(redisSessionMaxAge.Seconds()))
		store.Options(opts)
		return store, opts, nil

	default:
		return nil, sessions.Options{}, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}
}
