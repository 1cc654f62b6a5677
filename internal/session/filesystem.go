package session

import (
	"fmt"
	"os"

	"github.com/gin-contrib/sessions"
	gsessions "github.com/gorilla/sessions"
)

// fsStore は gorilla の FilesystemStore を gin-contrib/sessions の
// Store 契約に合わせた薄いラッパーです。セッションは
// <dir>/session_<id> という1セッション1ファイルで保存されます。
// 同一セッションIDへの並行書き込みは last-write-wins です。
type fsStore struct {
	*gsessions.FilesystemStore
}

// NewFilesystemStore はディレクトリを作成してストアを返します。
// ディレクトリが作成できない場合は起動時にエラーとなります。
func NewFilesystemStore(dir string, keyPairs ...[]byte) (sessions.Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session dir %q: %w", dir, err)
	}

	fs := gsessions.NewFilesystemStore(dir, keyPairs...)
	// 値のサイズ制限（既定4KB）はサーバーサイド保存では不要
	fs.MaxLength(0)
	return &fsStore{fs}, nil
}

func (s *fsStore) Options(options sessions.Options) {
	s.FilesystemStore.Options = options.ToGorillaOptions()
}
