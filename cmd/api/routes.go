package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-sessions/internal/auth"
	"github.com/yourusername/auth-sessions/internal/pages"
)

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "auth-sessions",
		"version": "0.1.0",
	})
}

// securityHeaders は全レスポンスに共通のセキュリティヘッダーを付与するミドルウェアです。
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Cache-Control", "no-cache, private")
		c.Header("Strict-Transport-Security", "max-age=31536000")
		c.Next()
	}
}

// setupRoutes はページと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, authManager *auth.Manager, pageHandler *pages.Handler) {
	router.Use(securityHeaders())

	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	// ページ
	router.GET("/", pageHandler.Home)
	router.GET("/login", authManager.LoginPage)
	router.GET("/signup", authManager.SignupPage)
	router.GET("/settings",
		authManager.RequireSession("/"),
		pageHandler.Settings,
	)

	// フォーム送信。各ハンドラーが最初にダブルサブミットのCSRF検証を行う
	router.POST("/login", authManager.Login)
	router.POST("/signup", authManager.Signup)
	router.POST("/logout", authManager.Logout)

	// JSON API
	api := router.Group("/api")
	{
		api.GET("/user", authManager.UserData)
	}
}
