// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-roles/internal/auth"
	"github.com/yourusername/login-roles/internal/config"
	"github.com/yourusername/login-roles/internal/db"
	"github.com/yourusername/login-roles/internal/models"
	"github.com/yourusername/login-roles/internal/roles"
	"github.com/yourusername/login-roles/internal/session"
	"github.com/yourusername/login-roles/internal/users"
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

	// セッションストアの設定（バックエンドは設定で切り替え、クッキー署名鍵は必須）
	auth.ConfigureSessionLifetime(cfg.SessionMaxAgeDays)
	store, err := session.NewStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init session store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteStrictMode,
	})
	router.Use(sessions.Sessions(auth.SessionCookieName, store))
	// 初回リクエストでもセッションIDクッキーを必ず発行する
	router.Use(session.Touch())

	// CORSミドルウェアの設定（許可オリジンは1つ、/api/ 配下のみに適用）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.CORSAllowedOrigin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-CSRF-Token", // CSRF保護用ヘッダー
	}
	// フロントエンドがレスポンスヘッダーから CSRF トークンを読み取れるように公開
	corsConfig.ExposeHeaders = []string{"X-CSRF-Token"}
	router.Use(corsForPrefix(cfg.CORSPathPrefix, cfg.CORSAllowedOrigin, cors.New(corsConfig)))

	// 永続化ハンドルの初期化。スキーマの最新化が完了するまでリスナーは起動しない
	repos, err := db.NewPostgresRepositoryManager(context.Background(), cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer repos.Close()

	// セッション掃除ジョブ（filesystemバックエンドかつRedis設定時のみ）
	jobManager, err := setupJobs(cfg)
	if err != nil {
		log.Fatalf("Failed to init session sweep jobs: %v", err)
	}
	if jobManager != nil {
		jobManager.StartWorkers()
		defer jobManager.Shutdown()
		if _, err := jobManager.EnqueueSweep(context.Background()); err != nil {
			log.Printf("failed to enqueue initial session sweep: %v", err)
		}
	}

	// ルーティングの設定
	router.LoadHTMLGlob("templates/*")
	setupRoutes(router, repos)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting API server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsForPrefix は指定パスプレフィックスのリクエストにのみCORSを適用します。
// 許可外オリジンのリクエストも拒否はせず、許可ヘッダーを付けずにそのまま
// 処理します。同一オリジンポリシーの強制はブラウザ側の仕事です。
func corsForPrefix(prefix, allowedOrigin string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin != "" && origin != allowedOrigin && c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		handler(c)
	}
}

// handleHome はトップページのハンドラーです。
func handleHome(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Login Role Management",
	})
}

// handleHealth はヘルスチェックエンドポイントのハンドラーを返します。
func handleHealth(repos db.RepositoryManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := repos.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "degraded",
				"database": "unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "login-roles-api",
			"version": "0.1.0",
		})
	}
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, repos db.RepositoryManager) {
	router.GET("/", handleHome)
	router.GET("/health", handleHealth(repos))

	authManager := auth.NewManager(repos.Users(), repos.Roles(), repos)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// 登録・ログイン時はセッション未生成なので CSRF 検証は不要
			authRoutes.POST("/register", authManager.Register)
			authRoutes.POST("/login", authManager.Login)
			authRoutes.POST("/logout",
				authManager.RequireLogin(),
				authManager.VerifyCSRF(),
				authManager.Logout,
			)
			authRoutes.GET("/me", authManager.RequireLogin(), authManager.Me)
		}

		// 管理系APIは admin ロール必須
		admin := api.Group("",
			authManager.RequireLogin(),
			authManager.VerifyCSRF(),
			authManager.RequireRole(models.RoleAdmin),
		)
		{
			admin.GET("/users", users.ListHandler(repos.Users()))
			admin.GET("/roles", roles.ListHandler(repos.Roles()))
			admin.POST("/users/:id/roles", roles.AssignHandler(repos.Roles()))
			admin.DELETE("/users/:id/roles/:role", roles.RevokeHandler(repos.Roles()))
		}
	}
}
