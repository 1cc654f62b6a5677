package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/login-roles/internal/dbx"
	"github.com/yourusername/login-roles/internal/models"
)

const pgForeignKeyViolation = "23503"

// PostgresRepository は dbx.DBTX 上でロール操作を実装します。
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository は与えられた DBTX に紐づくリポジトリを作成します。
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List は全ロールを返します。
func (r *PostgresRepository) List(ctx context.Context) ([]models.Role, error) {
	query := `
		SELECT id, name, description
		FROM roles
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// ListForUser はユーザーに割り当てられたロール名を返します。
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT ro.name
		FROM roles ro
		JOIN user_roles ur ON ur.role_id = ro.id
		WHERE ur.user_id = $1
		ORDER BY ro.name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return names, nil
}

// Assign はロールをユーザーに割り当てます。重複割り当ては無視します。
func (r *PostgresRepository) Assign(ctx context.Context, userID, roleName string) error {
	var roleID int64
	findQuery := `
		SELECT id
		FROM roles
		WHERE name = $1
	`
	if err := r.db.QueryRowContext(ctx, findQuery, roleName).Scan(&roleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("role %q: %w", roleName, models.ErrNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}

	insertQuery := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insertQuery, userID, roleID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("user %q: %w", userID, models.ErrNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Revoke は割り当てを取り消します。
func (r *PostgresRepository) Revoke(ctx context.Context, userID, roleName string) error {
	query := `
		DELETE FROM user_roles
		USING roles
		WHERE user_roles.role_id = roles.id
		  AND user_roles.user_id = $1
		  AND roles.name = $2
	`
	result, err := r.db.ExecContext(ctx, query, userID, roleName)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("assignment %s/%s: %w", userID, roleName, models.ErrNotFound)
	}
	return nil
}
