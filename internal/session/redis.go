package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gsessions "github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// RedisStore はセッション本体をRedisに保存するストアです。
// クッキーには署名済みのセッションIDのみを載せ、値は
// gobエンコードして <prefix><id> キーにTTL付きで保存します。
type RedisStore struct {
	client  *redis.Client
	codecs  []securecookie.Codec
	opts    *gsessions.Options
	prefix  string
	encoder securecookie.GobEncoder
}

// NewRedisStore はRedisバックエンドのストアを作成します。
func NewRedisStore(client *redis.Client, prefix string, keyPairs ...[]byte) *RedisStore {
	return &RedisStore{
		client: client,
		codecs: securecookie.CodecsFromPairs(keyPairs...),
		opts: &gsessions.Options{
			Path:   "/",
			MaxAge: int((24 * time.Hour).Seconds()),
		},
		prefix: prefix,
	}
}

// Options は gin-contrib/sessions から渡されるクッキー設定を反映します。
func (s *RedisStore) Options(options sessions.Options) {
	s.opts = options.ToGorillaOptions()
}

// Get はリクエスト内レジストリ経由でセッションを返します。
func (s *RedisStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(s, name)
}

// New はクッキーからセッションを復元し、復元できない場合は
// （クッキー欠如・改ざん・期限切れのいずれでも）新規の空セッションを返します。
func (s *RedisStore) New(r *http.Request, name string) (*gsessions.Session, error) {
	session := gsessions.NewSession(s, name)
	opts := *s.opts
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var id string
	if err := securecookie.DecodeMulti(name, c.Value, &id, s.codecs...); err != nil {
		// 署名が合わないクッキーは「セッションなし」と同じ扱い
		return session, nil
	}
	session.ID = id

	ok, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	session.IsNew = !ok
	return session, nil
}

// Save はセッションをRedisへ書き込み、クッキーを設定します。
// MaxAge が負の場合はセッションを削除します。
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *gsessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.client.Del(r.Context(), s.key(session.ID)).Err(); err != nil {
				return err
			}
		}
		http.SetCookie(w, gsessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.save(r.Context(), session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, gsessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *RedisStore) save(ctx context.Context, session *gsessions.Session) error {
	data, err := s.encoder.Serialize(session.Values)
	if err != nil {
		return err
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	return s.client.Set(ctx, s.key(session.ID), data, ttl).Err()
}

func (s *RedisStore) load(ctx context.Context, session *gsessions.Session) (bool, error) {
	data, err := s.client.Get(ctx, s.key(session.ID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.encoder.Deserialize(data, &session.Values); err != nil {
		// 壊れたデータは新規セッション扱い
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}
