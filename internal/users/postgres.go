package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/login-roles/internal/dbx"
	"github.com/yourusername/login-roles/internal/models"
)

// PostgreSQLの一意制約違反コード。
const pgUniqueViolation = "23505"

// PostgresRepository は dbx.DBTX（*sql.DB または *sql.Tx）上で
// ユーザーのCRUDを実装します。
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository は与えられた DBTX に紐づくリポジトリを作成します。
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create は新しいユーザーを挿入します。
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("user %q: %w", user.Username, models.ErrDuplicate)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByUsername はユーザー名で1件取得します。
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// FindByID はIDで1件取得します。
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// ListWithRoles は全ユーザーをロール名つきで返します。
// ロール名は string_agg で1列に集約し、database/sql のまま走査できるようにしています。
func (r *PostgresRepository) ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	query := `
		SELECT u.id, u.username, u.email, u.created_at,
		       COALESCE(string_agg(ro.name, ',' ORDER BY ro.name), '')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles ro ON ro.id = ur.role_id
		GROUP BY u.id, u.username, u.email, u.created_at
		ORDER BY u.created_at
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.UserWithRoles
	for rows.Next() {
		var u models.UserWithRoles
		var roleNames string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &roleNames); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if roleNames != "" {
			u.Roles = strings.Split(roleNames, ",")
		} else {
			u.Roles = []string{}
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
