package models

import "errors"

// リポジトリ層が返す共通のエラー。ハンドラー側で errors.Is により判別します。
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)
