// Package users はユーザーアカウントの永続化とHTTPハンドラーを提供します。
package users

import (
	"context"

	"github.com/yourusername/login-roles/internal/models"
)

// Repository はユーザーの保存と参照の契約です。
type Repository interface {
	// Create は新しいユーザーを保存します。
	// ユーザー名が既に存在する場合は models.ErrDuplicate を返します。
	Create(ctx context.Context, user *models.User) error

	// FindByUsername はユーザー名で検索します。
	// 見つからない場合は models.ErrNotFound を返します。
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByID はIDで検索します。見つからない場合は models.ErrNotFound を返します。
	FindByID(ctx context.Context, id string) (*models.User, error)

	// ListWithRoles は全ユーザーを、割り当て済みロール名とともに返します。
	ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
}
