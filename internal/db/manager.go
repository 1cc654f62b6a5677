// Package db は共有データベースハンドルとリポジトリの組み立てを提供します。
package db

import (
	"context"

	"github.com/yourusername/login-roles/internal/models"
	"github.com/yourusername/login-roles/internal/roles"
	"github.com/yourusername/login-roles/internal/users"
)

// RepositoryManager はプロセス全体で共有する永続化ハンドルです。
// 起動時に一度だけ生成し、全リクエストハンドラーで使い回します。
type RepositoryManager interface {
	Users() users.Repository
	Roles() roles.Repository

	// CreateWithRole はユーザー作成と初期ロール付与を
	// ひとつのトランザクションで行います。
	CreateWithRole(ctx context.Context, user *models.User, roleName string) error

	// RunMigrations はスキーマを最新化します。冪等で、何度呼んでも安全です。
	RunMigrations(ctx context.Context) error

	// Ping は接続の生存確認を行います。
	Ping(ctx context.Context) error

	Close() error
}
