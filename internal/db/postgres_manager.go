package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourusername/login-roles/internal/dbx"
	"github.com/yourusername/login-roles/internal/migrations"
	"github.com/yourusername/login-roles/internal/models"
	"github.com/yourusername/login-roles/internal/roles"
	"github.com/yourusername/login-roles/internal/users"
)

// PostgresRepositoryManager は pgx ドライバ経由の *sql.DB に
// ユーザーとロールのリポジトリを束ねたものです。
type PostgresRepositoryManager struct {
	db    *sql.DB
	users users.Repository
	roles roles.Repository
}

// NewPostgresRepositoryManager は接続を開き、マイグレーションを実行して
// リポジトリ群を組み立てます。スキーマの最新化が完了するまで戻りません
// （リスナー起動前のレディネスバリア）。
func NewPostgresRepositoryManager(ctx context.Context, dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:    db,
		users: users.NewPostgresRepository(db),
		roles: roles.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) Roles() roles.Repository {
	return m.roles
}

// CreateWithRole はユーザー作成と初期ロール付与を同一トランザクションで
// 実行します。ロール付与に失敗した場合、ユーザー行も残りません。
func (m *PostgresRepositoryManager) CreateWithRole(ctx context.Context, user *models.User, roleName string) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := users.NewPostgresRepository(tx).Create(ctx, user); err != nil {
			return err
		}
		return roles.NewPostgresRepository(tx).Assign(ctx, user.ID, roleName)
	})
}

// RunMigrations は埋め込みSQLをgooseで適用します。
// 各マイグレーションは CREATE TABLE IF NOT EXISTS を使っており、
// gooseのバージョン管理と合わせて何度実行しても冪等です。
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
