package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-roles/internal/models"
)

// ListService はユーザー一覧ハンドラーが必要とする操作です。
type ListService interface {
	ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error)
}

// ListHandler は GET /api/users のハンドラーを返します。
// 管理者向けに、全ユーザーとその割り当てロールを返します。
func ListHandler(service ListService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := service.ListWithRoles(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ユーザー一覧の取得に失敗しました。",
			})
			return
		}

		payload := make([]gin.H, 0, len(list))
		for _, u := range list {
			payload = append(payload, gin.H{
				"id":        u.ID,
				"username":  u.Username,
				"email":     u.Email,
				"roles":     u.Roles,
				"createdAt": u.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"users": payload})
	}
}
