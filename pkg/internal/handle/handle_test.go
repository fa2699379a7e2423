package handle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory/directorytest"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/middleware"
)

type discard struct{}

func (discard) Enqueue(context.Context, string, *message.Message) error { return nil }

func newServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := configs.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost

	dir, _ := directorytest.New(t)

	store, err := content.NewLocal(t.TempDir())
	require.NoError(t, err)

	kvStore, err := kv.New(context.Background(), cfg.KV)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvStore.Close() })

	c := cache.NewCache(kvStore)
	svc := service.New(service.Deps{
		Directory: dir,
		Content:   store,
		Sessions:  session.New(c, cfg.Auth),
		Jobs:      discard{},
		Cache:     kvStore,
	}, cfg)

	r := gin.New()
	r.Use(middleware.TokenMiddleware(cfg.Auth))
	router.Register(r, handle.New(svc), router.Options{StatsCache: c.WithPrefix("resp_"), StatsTTL: time.Minute})

	return r
}

type call struct {
	method string
	path   string
	body   string
	token  string
	header map[string]string
}

func do(t *testing.T, r http.Handler, c call) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("X-Token", c.token)
	}

	for k, v := range c.header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func signIn(t *testing.T, r http.Handler, email string) string {
	t.Helper()

	w := do(t, r, call{method: http.MethodPost, path: "/users", body: `{"email":"` + email + `","password":"toto1234!"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.SetBasicAuth(email, "toto1234!")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[types.TokenResponse](t, rec).Token
}

func TestStatus(t *testing.T) {
	r := newServer(t)

	w := do(t, r, call{method: http.MethodGet, path: "/status"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"redis":true,"db":true}`, w.Body.String())
}

func TestStatsIsCached(t *testing.T) {
	r := newServer(t)

	w := do(t, r, call{method: http.MethodGet, path: "/stats"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":0,"files":0}`, w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = do(t, r, call{method: http.MethodGet, path: "/stats"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"users":0,"files":0}`, w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/stats", header: map[string]string{"If-None-Match": etag}})
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestUserLifecycle(t *testing.T) {
	r := newServer(t)

	w := do(t, r, call{method: http.MethodPost, path: "/users", body: `{"password":"x"}`})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing email"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodPost, path: "/users", body: `{"email":"bob@dylan.com"}`})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing password"}`, w.Body.String())

	token := signIn(t, r, "bob@dylan.com")

	w = do(t, r, call{method: http.MethodPost, path: "/users", body: `{"email":"bob@dylan.com","password":"other"}`})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Already exist"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/users/me", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob@dylan.com", decode[types.UserResponse](t, w).Email)

	w = do(t, r, call{method: http.MethodGet, path: "/disconnect", token: token})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, call{method: http.MethodGet, path: "/users/me", token: token})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/disconnect", token: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConnectRejectsBadCredentials(t *testing.T) {
	r := newServer(t)
	signIn(t, r, "bob@dylan.com")

	w := do(t, r, call{method: http.MethodGet, path: "/connect"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.SetBasicAuth("bob@dylan.com", "wrong")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFileRoutes(t *testing.T) {
	r := newServer(t)
	token := signIn(t, r, "bob@dylan.com")

	w := do(t, r, call{method: http.MethodPost, path: "/files", token: token, body: `{"name":"myText.txt","type":"file","data":"SGVsbG8="}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, float64(0), created["parentId"])
	assert.Equal(t, false, created["isPublic"])

	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "myText.txt", decode[types.FileResponse](t, w).Name)

	w = do(t, r, call{method: http.MethodGet, path: "/files", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.FileResponse](t, w), 1)

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id + "/data", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id + "/data", token: token, header: map[string]string{"If-None-Match": etag}})
	assert.Equal(t, http.StatusNotModified, w.Code)

	// 私有文件对匿名请求不可见
	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id + "/data"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodPut, path: "/files/" + id + "/publish", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.FileResponse](t, w).IsPublic)

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id + "/data"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello", w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + id + "/data?size=250"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, call{method: http.MethodPut, path: "/files/" + id + "/unpublish", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.FileResponse](t, w).IsPublic)
}

func TestFileRoutesErrors(t *testing.T) {
	r := newServer(t)
	token := signIn(t, r, "bob@dylan.com")

	w := do(t, r, call{method: http.MethodPost, path: "/files", body: `{"name":"a","type":"folder"}`})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, call{method: http.MethodPost, path: "/files", token: token, body: `{"type":"folder"}`})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing name"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodPost, path: "/files", token: token, body: `{"name":`})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, call{method: http.MethodPost, path: "/files", token: token, body: `{"name":"images","type":"folder"}`})
	require.Equal(t, http.StatusCreated, w.Code)

	folder := decode[types.FileResponse](t, w)

	w = do(t, r, call{method: http.MethodGet, path: "/files/" + folder.ID + "/data", token: token})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"A folder doesn't have content"}`, w.Body.String())

	w = do(t, r, call{method: http.MethodGet, path: "/files/unknown", token: token})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, call{method: http.MethodGet, path: "/files?parentId=" + folder.ID, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
