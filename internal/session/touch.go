package session

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// セッションの生成時刻。Touch が初回リクエストで設定します。
const keyCreatedAt = "created_at"

// Touch は、有効なセッションを持たないクライアントの最初のリクエストで
// 空のセッションを保存し、セッションIDクッキーを必ず発行するミドルウェアです。
// 期限切れ・改ざんされたクッキーを持つリクエストも初回として扱われます。
func Touch() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		if s.Get(keyCreatedAt) == nil {
			s.Set(keyCreatedAt, time.Now().Unix())
			// 保存失敗（ディレクトリ不可視など）はハンドラー側の保存で再度表面化する
			_ = s.Save()
		}
		c.Next()
	}
}
