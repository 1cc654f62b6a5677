// Package roles はロールの参照とユーザーへの割り当てを提供します。
package roles

import (
	"context"

	"github.com/yourusername/login-roles/internal/models"
)

// Repository はロールの参照と割り当ての契約です。
// ロール自体の登録はマイグレーションで行い、ここでは変更しません。
type Repository interface {
	// List は登録済みの全ロールを返します。
	List(ctx context.Context) ([]models.Role, error)

	// ListForUser はユーザーに割り当てられたロール名を返します。
	ListForUser(ctx context.Context, userID string) ([]string, error)

	// Assign はロールをユーザーに割り当てます。割り当て済みなら何もしません。
	// ロールまたはユーザーが存在しない場合は models.ErrNotFound を返します。
	Assign(ctx context.Context, userID, roleName string) error

	// Revoke は割り当てを取り消します。
	// 割り当てが存在しない場合は models.ErrNotFound を返します。
	Revoke(ctx context.Context, userID, roleName string) error
}
