// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/user-portal/internal/account"
)

// DefaultSessionSecret は開発用のセッション署名鍵です。release モードでは使用できません。
const DefaultSessionSecret = "devops-secret"

// セッションストアの種別
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// 認証情報ストアの種別
const (
	CredentialStoreDynamoDB = "dynamodb"
	CredentialStoreRedis    = "redis"
	CredentialStoreMemory   = "memory"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// セッション設定
	SessionSecret    string // セッション署名用の秘密鍵
	SessionStore     string // memory または redis
	SessionRedisAddr string // セッション用Redisのアドレス (host:port)

	// 認証情報ストア設定
	CredentialStore string // dynamodb, redis, memory のいずれか
	UsersRedisURL   string // ユーザー保存用Redis接続URL

	// DynamoDB設定
	AWSRegion         string // AWSリージョン
	DynamoTable       string // ユーザーテーブル名
	DynamoEndpoint    string // dynamodb-local などのエンドポイント（空ならAWS既定）
	DynamoAccessKeyID string // 静的クレデンシャル（任意）
	DynamoSecretKey   string // 静的クレデンシャル（任意）

	// パスワードハッシュ設定
	BcryptCost int // bcrypt のコスト係数（起動時に固定）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		// セッション設定
		SessionSecret:    getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionStore:     getEnv("SESSION_STORE", SessionStoreMemory),
		SessionRedisAddr: getEnv("SESSION_REDIS_ADDR", "127.0.0.1:6379"),

		// 認証情報ストア設定
		CredentialStore: getEnv("CREDENTIAL_STORE", CredentialStoreDynamoDB),
		UsersRedisURL:   getEnv("USERS_REDIS_URL", "redis://127.0.0.1:6379/1"),

		// DynamoDB設定
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		DynamoTable:       getEnv("DDB_TABLE", "Users"),
		DynamoEndpoint:    getEnv("DDB_ENDPOINT", ""),
		DynamoAccessKeyID: getEnv("DDB_ACCESS_KEY_ID", ""),
		DynamoSecretKey:   getEnv("DDB_SECRET_ACCESS_KEY", ""),

		// パスワードハッシュ設定
		BcryptCost: getEnvAsInt("BCRYPT_COST", account.DefaultCost),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.SessionStore)
	}

	switch c.CredentialStore {
	case CredentialStoreDynamoDB, CredentialStoreRedis, CredentialStoreMemory:
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be one of dynamodb, redis, memory, got %q", c.CredentialStore)
	}

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}

	if c.CredentialStore == CredentialStoreDynamoDB && c.DynamoTable == "" {
		return fmt.Errorf("DDB_TABLE is required when CREDENTIAL_STORE=dynamodb")
	}

	// 本番環境では開発用の署名鍵を許可しない
	if c.GinMode == "release" && c.SessionSecret == DefaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set explicitly in release mode")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
