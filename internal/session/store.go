// Package session はサーバーサイドセッションの保存先を差し替え可能にします。
// gin-contrib/sessions の Store 契約の背後に、filesystem / cookie / redis の
// 3バックエンドを実装します。
package session

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/login-roles/internal/config"
)

// NewStore は設定に応じたセッションストアを作成します。
// filesystem が既定で、保存ディレクトリは起動時に作成されます。
func NewStore(cfg *config.Config) (sessions.Store, error) {
	secret := []byte(cfg.SessionSecret)

	switch cfg.SessionBackend {
	case "cookie":
		return cookie.NewStore(secret), nil

	case "redis":
		opt, err := redis.ParseURL(cfg.SessionRedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_REDIS_URL: %w", err)
		}
		return NewRedisStore(redis.NewClient(opt), "session:", secret), nil

	case "filesystem":
		return NewFilesystemStore(cfg.SessionFileDir, secret)

	default:
		return nil, fmt.Errorf("unknown session backend: %q", cfg.SessionBackend)
	}
}
