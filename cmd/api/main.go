// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"database/sql"
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/auth-sessions/internal/auth"
	"github.com/yourusername/auth-sessions/internal/config"
	"github.com/yourusername/auth-sessions/internal/pages"
	"github.com/yourusername/auth-sessions/internal/store/sessions"
	"github.com/yourusername/auth-sessions/internal/store/users"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(pages.Templates())

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
	}
	router.Use(cors.New(corsConfig))

	// ストアの初期化
	userRepo, err := newUserRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize user store: %v", err)
	}
	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	secureCookies := cfg.GinMode == gin.ReleaseMode
	authManager := auth.NewManager(userRepo, sessionStore, secureCookies)
	pageHandler := pages.NewHandler(authManager)

	// ルーティングの設定
	setupRoutes(router, authManager, pageHandler)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newUserRepository はユーザーストアを作成します。
// DATABASE_URL が設定されていれば PostgreSQL、なければメモリストアを使用します。
func newUserRepository(cfg *config.Config) (users.Repository, error) {
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL not set, using in-memory user store")
		return users.NewMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return users.NewPostgresRepository(db), nil
}

// newSessionStore はセッションストアを作成します。
// SESSION_REDIS_URL が設定されていれば Redis、なければメモリストアを使用します。
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.SessionRedisURL == "" {
		log.Printf("SESSION_REDIS_URL not set, using in-memory session store")
		return sessions.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(cfg.SessionRedisURL)
	if err != nil {
		return nil, err
	}
	return sessions.NewRedisStore(redis.NewClient(opts)), nil
}
