// Package models はデータベースで永続化されるエンティティを定義します。
package models

import "time"

// User はログイン可能なアカウントを表します。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserWithRoles は管理画面向けにロール名を束ねたユーザー表現です。
type UserWithRoles struct {
	User
	Roles []string
}
