package roles

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/login-roles/internal/models"
)

// Service はロール管理ハンドラーが必要とする操作です。
type Service interface {
	List(ctx context.Context) ([]models.Role, error)
	Assign(ctx context.Context, userID, roleName string) error
	Revoke(ctx context.Context, userID, roleName string) error
}

type assignRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListHandler は GET /api/roles のハンドラーを返します。
func ListHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := service.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ロール一覧の取得に失敗しました。",
			})
			return
		}

		payload := make([]gin.H, 0, len(list))
		for _, role := range list {
			payload = append(payload, gin.H{
				"id":          role.ID,
				"name":        role.Name,
				"description": role.Description,
			})
		}
		c.JSON(http.StatusOK, gin.H{"roles": payload})
	}
}

// AssignHandler は POST /api/users/:id/roles のハンドラーを返します。
func AssignHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Param("id"))
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "ユーザーIDを指定してください。",
			})
			return
		}

		var req assignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "role を JSON で送ってください。",
			})
			return
		}

		if err := service.Assign(c.Request.Context(), userID, req.Role); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"code":    "NOT_FOUND",
					"message": "指定されたユーザーまたはロールは存在しません。",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ロールの割り当てに失敗しました。",
			})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// RevokeHandler は DELETE /api/users/:id/roles/:role のハンドラーを返します。
func RevokeHandler(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Param("id"))
		roleName := strings.TrimSpace(c.Param("role"))
		if userID == "" || roleName == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "ユーザーIDとロール名を指定してください。",
			})
			return
		}

		if err := service.Revoke(c.Request.Context(), userID, roleName); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"code":    "NOT_FOUND",
					"message": "指定された割り当ては存在しません。",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "ロールの取り消しに失敗しました。",
			})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
