// Package main はWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/user-portal/internal/account"
	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/config"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 認証情報ストアとワークフローの組み立て
	userStore, closeStore, err := setupCredentialStore(initCtx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up credential store: %v", err)
	}
	defer closeStore()

	hasher, err := account.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to create password hasher: %v", err)
	}
	workflow, err := account.NewService(userStore, hasher)
	if err != nil {
		log.Fatalf("Failed to create account service: %v", err)
	}

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	tmpl, err := auth.LoadTemplates()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.Use(auth.RequestID())

	// セッションストアの設定
	sessionStore, cookieOpts, err := setupSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up session store: %v", err)
	}
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.ExposeHeaders = []string{auth.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, auth.NewManager(workflow, cookieOpts, log.Default()))

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Server running on %s (mode: %s, credentials: %s, sessions: %s)",
		addr, cfg.GinMode, cfg.CredentialStore, cfg.SessionStore)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "user-portal",
		"version": "0.1.0",
	})
}

// setupRoutes はヘルスチェックと画面・認証ルートを登録します。
func setupRoutes(router *gin.Engine, authManager *auth.Manager) {
	router.GET("/health", handleHealth)
	authManager.Register(router)
}
