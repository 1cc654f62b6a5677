package session

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const testCookieName = "lr_session"

func newSessionRouter(t *testing.T, store sessions.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	})

	router := gin.New()
	router.Use(sessions.Sessions(testCookieName, store))
	router.Use(Touch())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/set", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set("v", c.Query("v"))
		if err := s.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/get", func(c *gin.Context) {
		s := sessions.Default(c)
		v, _ := s.Get("v").(string)
		c.String(http.StatusOK, v)
	})
	return router
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func TestTouchIssuesCookieOnFirstRequest(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), []byte("secret"))
	if err != nil {
		t.Fatalf("NewFilesystemStore error: %v", err)
	}
	router := newSessionRouter(t, store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected session cookie on first request")
	}
	if cookie.MaxAge != 86400 {
		t.Fatalf("unexpected cookie MaxAge: %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}
}

func TestTouchDoesNotReissueCookie(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), []byte("secret"))
	if err != nil {
		t.Fatalf("NewFilesystemStore error: %v", err)
	}
	router := newSessionRouter(t, store)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := sessionCookie(t, first)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	second := httptest.NewRecorder()
	router.ServeHTTP(second, req)

	if c := sessionCookie(t, second); c != nil {
		t.Fatalf("expected no new cookie on second request, got %v", c)
	}
}

func TestFilesystemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFilesystemStore(dir, []byte("secret"))
	if err != nil {
		t.Fatalf("NewFilesystemStore error: %v", err)
	}
	router := newSessionRouter(t, store)

	setReq := httptest.NewRequest(http.MethodPost, "/set?v=hello", nil)
	setRec := httptest.NewRecorder()
	router.ServeHTTP(setRec, setReq)
	if setRec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", setRec.Code)
	}
	cookie := sessionCookie(t, setRec)
	if cookie == nil {
		t.Fatal("expected session cookie after save")
	}

	// セッションは1ファイルとして保存される
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "session_") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected session file under %s", dir)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/get", nil)
	getReq.AddCookie(cookie)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)

	if getRec.Body.String() != "hello" {
		t.Fatalf("unexpected value: %q", getRec.Body.String())
	}
}

func TestTamperedCookieTreatedAsNewSession(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), []byte("secret"))
	if err != nil {
		t.Fatalf("NewFilesystemStore error: %v", err)
	}
	router := newSessionRouter(t, store)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "tampered-garbage"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.String() != "" {
		t.Fatalf("expected empty session value, got %q", rec.Body.String())
	}
}

func TestNewFilesystemStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	if _, err := NewFilesystemStore(dir, []byte("secret")); err != nil {
		t.Fatalf("NewFilesystemStore error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory %s, err=%v", dir, err)
	}
}
