package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/directory/directorytest"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/storage/kv"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
)

// recorder 记录提交的任务.
type recorder struct {
	mu     sync.Mutex
	topics []string
	msgs   []*message.Message
}

func (r *recorder) Enqueue(_ context.Context, topic string, msg *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.topics = append(r.topics, topic)
	r.msgs = append(r.msgs, msg)

	return nil
}

func (r *recorder) thumbnails(t *testing.T) []queue.ThumbnailJobPayload {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []queue.ThumbnailJobPayload

	for i, topic := range r.topics {
		if topic != queue.TopicThumbnail {
			continue
		}

		env, err := queue.ParseThumbnailJob(r.msgs[i])
		require.NoError(t, err)

		out = append(out, env.Payload)
	}

	return out
}

type testEnv struct {
	svc   *service.Services
	dir   *directory.Directory
	store content.Store
	kv    kv.KVStore
	jobs  *recorder
}

type envOption func(*service.Deps)

func withStore(s content.Store) envOption {
	return func(d *service.Deps) { d.Content = s }
}

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	ctx := context.Background()
	cfg := configs.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost

	dir, _ := directorytest.New(t)

	store, err := content.NewLocal(t.TempDir())
	require.NoError(t, err)

	kvStore, err := kv.New(ctx, cfg.KV)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kvStore.Close() })

	jobs := &recorder{}
	deps := service.Deps{
		Directory: dir,
		Content:   store,
		Sessions:  session.New(cache.NewCache(kvStore), cfg.Auth),
		Jobs:      jobs,
		Cache:     kvStore,
	}

	for _, o := range opts {
		o(&deps)
	}

	return &testEnv{
		svc:   service.New(deps, cfg),
		dir:   dir,
		store: deps.Content,
		kv:    kvStore,
		jobs:  jobs,
	}
}

// signUp 注册并登录，返回用户 ID 与令牌.
func (e *testEnv) signUp(t *testing.T, email string) (string, string) {
	t.Helper()

	ctx := context.Background()

	user, err := e.svc.Auth.Register(ctx, types.RegisterRequest{Email: email, Password: "toto1234!"})
	require.NoError(t, err)

	tok, err := e.svc.Auth.SignIn(ctx, email, "toto1234!")
	require.NoError(t, err)

	return user.ID, tok.Token
}

func (e *testEnv) upload(t *testing.T, token string, req types.UploadFileRequest) *types.FileResponse {
	t.Helper()

	resp, err := e.svc.Files.Upload(context.Background(), token, req)
	require.NoError(t, err)

	return resp
}

func requireCode(t *testing.T, err error, code int, msg string) {
	t.Helper()

	var se *service.Error

	require.True(t, errors.As(err, &se), "expected service error, got %v", err)
	require.Equal(t, code, se.Code)
	require.Equal(t, msg, se.Message)
}
