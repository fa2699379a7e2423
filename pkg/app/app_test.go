package app_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/filevault/pkg/app"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/types"
)

func testConfig(t *testing.T) *configs.AppConfig {
	t.Helper()

	cfg := configs.Default()
	cfg.DB.Database = filepath.Join(t.TempDir(), "files_manager")
	cfg.Content.Root = t.TempDir()
	cfg.Content.CacheBytes = 0
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Metrics.Enabled = false
	cfg.Log.Level = "warn"

	return &cfg
}

func serve(t *testing.T, a *app.App, method, path, body string, setup func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	if setup != nil {
		setup(req)
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	return w
}

func pngData(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 600, 300))
	for x := range 600 {
		img.Set(x, x%300, color.RGBA{R: 200, A: 255})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestBrokeredThumbnails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Worker.Transport = configs.TransportMQ
	cfg.MQ.Type = configs.MQTypeGoChannel
	cfg.MQ.GoChannel.Persistent = true

	a, err := app.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- a.Work(ctx) }()

	w := serve(t, a, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"toto1234!"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(t, a, http.MethodGet, "/connect", "", func(r *http.Request) { r.SetBasicAuth("bob@dylan.com", "toto1234!") })
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok types.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))

	withToken := func(r *http.Request) { r.Header.Set("X-Token", tok.Token) }

	body := `{"name":"image.png","type":"image","isPublic":true,"data":"` + pngData(t) + `"}`
	w = serve(t, a, http.MethodPost, "/files", body, withToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var file types.FileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &file))

	rec, err := a.Manager().Directory.FindFile(context.Background(), directory.FileFilter{ID: file.ID})
	require.NoError(t, err)

	for _, width := range cfg.Worker.ThumbnailWidths {
		key := content.VariantKey(rec.LocalPath, width)
		require.Eventually(t, func() bool {
			_, err := a.Manager().Content.Get(context.Background(), key)
			return err == nil
		}, 10*time.Second, 20*time.Millisecond, "width %d", width)
	}

	w = serve(t, a, http.MethodGet, "/files/"+file.ID+"/data?size=100", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	thumb, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Width)
	assert.Equal(t, 50, thumb.Height)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorkRequiresBroker(t *testing.T) {
	a, err := app.NewWithConfig(context.Background(), testConfig(t))
	require.NoError(t, err)

	t.Cleanup(func() { _ = a.Close() })

	assert.Error(t, a.Work(context.Background()))

	w := serve(t, a, http.MethodGet, "/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"redis":true,"db":true}`, w.Body.String())
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Worker.PoolSize = 0

	_, err := app.NewWithConfig(context.Background(), cfg)
	assert.ErrorContains(t, err, "invalid config")
}
