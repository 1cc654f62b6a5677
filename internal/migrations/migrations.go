// Package migrations はバイナリに埋め込んだgoose用SQLマイグレーションを公開します。
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
