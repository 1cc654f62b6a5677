package models

// Role は権限のまとまりを表すロールです。
// ロールはマイグレーションで登録され、実行時には割り当てのみ変化します。
type Role struct {
	ID          int64
	Name        string
	Description string
}

// 初期データとして投入される既定のロール名。
const (
	RoleAdmin   = "admin"
	RoleDefault = "user"
)
