package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/storage/content"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
)

func TestUploadTextFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID, token := e.signUp(t, "bob@dylan.com")

	resp := e.upload(t, token, types.UploadFileRequest{Name: "myText.txt", Type: "file", Data: "SGVsbG8="})

	assert.True(t, model.ValidID(resp.ID))
	assert.Equal(t, userID, resp.UserID)
	assert.False(t, resp.IsPublic)
	assert.True(t, resp.ParentID.IsRoot())

	rec, err := e.dir.FindFile(ctx, directory.FileFilter{ID: resp.ID})
	require.NoError(t, err)
	require.NotEmpty(t, rec.LocalPath)

	raw, err := e.store.Get(ctx, rec.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(raw))

	data, err := e.svc.Files.GetContent(ctx, token, resp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello"), data.Data)
	assert.Contains(t, data.ContentType, "text/plain")

	assert.Empty(t, e.jobs.thumbnails(t))
}

func TestUploadValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, token := e.signUp(t, "bob@dylan.com")

	plain := e.upload(t, token, types.UploadFileRequest{Name: "a.txt", Type: "file", Data: "SGVsbG8="})

	tests := []struct {
		name string
		req  types.UploadFileRequest
		want string
	}{
		{"missing name", types.UploadFileRequest{Type: "file", Data: "SGVsbG8="}, "Missing name"},
		{"missing type", types.UploadFileRequest{Name: "x"}, "Missing type"},
		{"unknown type", types.UploadFileRequest{Name: "x", Type: "video", Data: "SGVsbG8="}, "Missing type"},
		{"missing data", types.UploadFileRequest{Name: "x", Type: "image"}, "Missing data"},
		{"invalid data", types.UploadFileRequest{Name: "x", Type: "file", Data: "***"}, "Invalid data"},
		{"invalid parent id", types.UploadFileRequest{Name: "x", Type: "folder", ParentID: "abc"}, "Parent not found"},
		{"unknown parent", types.UploadFileRequest{Name: "x", Type: "folder", ParentID: types.ParentRef(model.NewID())}, "Parent not found"},
		{"parent is a file", types.UploadFileRequest{Name: "x", Type: "file", Data: "SGVsbG8=", ParentID: types.ParentRef(plain.ID)}, "Parent is not a folder"},
		{"name checked first", types.UploadFileRequest{Type: "video", ParentID: "abc"}, "Missing name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Files.Upload(ctx, token, tt.req)
			requireCode(t, err, http.StatusBadRequest, tt.want)
		})
	}

	n, err := e.dir.CountFiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUploadRequiresSession(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Files.Upload(context.Background(), "", types.UploadFileRequest{Name: "x", Type: "folder"})
	requireCode(t, err, http.StatusUnauthorized, "Unauthorized")

	_, err = e.svc.Files.Upload(context.Background(), "expired", types.UploadFileRequest{Name: "x", Type: "folder"})
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestFolderHierarchy(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, token := e.signUp(t, "bob@dylan.com")

	folder := e.upload(t, token, types.UploadFileRequest{Name: "images", Type: "folder", Data: "ignored"})

	rec, err := e.dir.FindFile(ctx, directory.FileFilter{ID: folder.ID})
	require.NoError(t, err)
	assert.Empty(t, rec.LocalPath)

	_, err = e.svc.Files.GetContent(ctx, token, folder.ID, "")
	requireCode(t, err, http.StatusBadRequest, "A folder doesn't have content")

	// 公开文件夹对匿名用户同样不可读取内容
	_, err = e.svc.Files.Publish(ctx, token, folder.ID)
	require.NoError(t, err)

	_, err = e.svc.Files.GetContent(ctx, "", folder.ID, "")
	require.ErrorIs(t, err, service.ErrNotAFile)

	child := e.upload(t, token, types.UploadFileRequest{
		Name: "a.txt", Type: "file", Data: "SGVsbG8=", ParentID: types.ParentRef(folder.ID),
	})
	assert.Equal(t, types.ParentRef(folder.ID), child.ParentID)

	list, err := e.svc.Files.List(ctx, token, types.ListFilesQuery{ParentID: folder.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, child.ID, list[0].ID)

	root, err := e.svc.Files.List(ctx, token, types.ListFilesQuery{})
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, folder.ID, root[0].ID)

	// 父节点不是文件夹或不存在时返回空列表
	for _, parent := range []string{child.ID, model.NewID(), "garbage"} {
		got, err := e.svc.Files.List(ctx, token, types.ListFilesQuery{ParentID: parent})
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestListPagination(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, token := e.signUp(t, "bob@dylan.com")
	_, other := e.signUp(t, "alice@dylan.com")

	for i := range 25 {
		e.upload(t, token, types.UploadFileRequest{Name: fmt.Sprintf("f%02d", i), Type: "folder"})
	}

	tests := []struct {
		page string
		want int
	}{
		{"", 20},
		{"0", 20},
		{"1", 5},
		{"5", 0},
		{"abc", 20},
		{"-3", 20},
		{"461168601842738791", 0},
		{"9223372036854775807", 0},
	}

	for _, tt := range tests {
		got, err := e.svc.Files.List(ctx, token, types.ListFilesQuery{Page: tt.page})
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "page %q", tt.page)
	}

	first, err := e.svc.Files.List(ctx, token, types.ListFilesQuery{})
	require.NoError(t, err)
	assert.Equal(t, "f00", first[0].Name)
	assert.Equal(t, "f19", first[19].Name)

	// 列表不按所有者过滤
	seen, err := e.svc.Files.List(ctx, other, types.ListFilesQuery{})
	require.NoError(t, err)
	assert.Len(t, seen, 20)

	_, err = e.svc.Files.List(ctx, "", types.ListFilesQuery{})
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestShowIsOwnerScoped(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, token := e.signUp(t, "bob@dylan.com")
	_, other := e.signUp(t, "alice@dylan.com")

	f := e.upload(t, token, types.UploadFileRequest{Name: "a.txt", Type: "file", Data: "SGVsbG8=", IsPublic: true})

	got, err := e.svc.Files.Show(ctx, token, f.ID)
	require.NoError(t, err)
	assert.Equal(t, *f, *got)

	_, err = e.svc.Files.Show(ctx, other, f.ID)
	requireCode(t, err, http.StatusNotFound, "Not found")

	_, err = e.svc.Files.Show(ctx, token, "not-an-id")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Files.Show(ctx, "", f.ID)
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestPublishUnpublish(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, owner := e.signUp(t, "bob@dylan.com")
	_, other := e.signUp(t, "alice@dylan.com")

	f := e.upload(t, owner, types.UploadFileRequest{Name: "a.txt", Type: "file", Data: "SGVsbG8="})

	_, err := e.svc.Files.GetContent(ctx, other, f.ID, "")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Files.GetContent(ctx, "", f.ID, "")
	require.ErrorIs(t, err, service.ErrNotFound)

	pub, err := e.svc.Files.Publish(ctx, owner, f.ID)
	require.NoError(t, err)
	assert.True(t, pub.IsPublic)

	data, err := e.svc.Files.GetContent(ctx, other, f.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data.Data))

	data, err = e.svc.Files.GetContent(ctx, "", f.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data.Data))

	_, err = e.svc.Files.Unpublish(ctx, other, f.ID)
	requireCode(t, err, http.StatusUnauthorized, "Unauthorized")

	rec, err := e.dir.FindFile(ctx, directory.FileFilter{ID: f.ID})
	require.NoError(t, err)
	assert.True(t, rec.IsPublic)

	// 重复发布是幂等的
	pub, err = e.svc.Files.Publish(ctx, owner, f.ID)
	require.NoError(t, err)
	assert.True(t, pub.IsPublic)

	unpub, err := e.svc.Files.Unpublish(ctx, owner, f.ID)
	require.NoError(t, err)
	assert.False(t, unpub.IsPublic)

	_, err = e.svc.Files.GetContent(ctx, other, f.ID, "")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Files.Publish(ctx, "", f.ID)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = e.svc.Files.Publish(ctx, owner, "bad")
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.svc.Files.Publish(ctx, owner, model.NewID())
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestUploadImageEnqueuesThumbnailJobs(t *testing.T) {
	e := newEnv(t)
	userID, token := e.signUp(t, "bob@dylan.com")

	img := e.upload(t, token, types.UploadFileRequest{Name: "a.png", Type: "image", Data: "iVBORw0KGgo="})

	jobs := e.jobs.thumbnails(t)
	require.Len(t, jobs, 2)
	assert.Equal(t, queue.ThumbnailJobPayload{}, jobs[0])
	assert.Equal(t, queue.ThumbnailJobPayload{FileID: img.ID, UserID: userID}, jobs[1])
}

type failingStore struct{ content.Store }

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("no space left on device")
}

func TestUploadStorageFailure(t *testing.T) {
	local, err := content.NewLocal(t.TempDir())
	require.NoError(t, err)

	e := newEnv(t, withStore(failingStore{local}))
	userID, token := e.signUp(t, "bob@dylan.com")

	_, err = e.svc.Files.Upload(context.Background(), token, types.UploadFileRequest{Name: "a.png", Type: "image", Data: "iVBORw0KGgo="})
	requireCode(t, err, http.StatusBadRequest, "no space left on device")

	jobs := e.jobs.thumbnails(t)
	require.Len(t, jobs, 2)
	assert.Equal(t, queue.ThumbnailJobPayload{UserID: userID}, jobs[1])

	n, err := e.dir.CountFiles(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	// 文件夹不写入内容存储
	_, err = e.svc.Files.Upload(context.Background(), token, types.UploadFileRequest{Name: "dir", Type: "folder"})
	require.NoError(t, err)
}

func TestGetContentVariants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, token := e.signUp(t, "bob@dylan.com")

	img := e.upload(t, token, types.UploadFileRequest{Name: "a.png", Type: "image", Data: "iVBORw0KGgo="})

	_, err := e.svc.Files.GetContent(ctx, token, img.ID, "100")
	require.ErrorIs(t, err, service.ErrNotFound)

	rec, err := e.dir.FindFile(ctx, directory.FileFilter{ID: img.ID})
	require.NoError(t, err)
	require.NoError(t, e.store.Put(ctx, content.VariantKey(rec.LocalPath, 100), []byte("thumb")))

	data, err := e.svc.Files.GetContent(ctx, token, img.ID, "100")
	require.NoError(t, err)
	assert.Equal(t, "thumb", string(data.Data))
	assert.Equal(t, "image/png", data.ContentType)

	for _, size := range []string{"300", "abc", "-1"} {
		_, err = e.svc.Files.GetContent(ctx, token, img.ID, size)
		require.ErrorIs(t, err, service.ErrNotFound, size)
	}

	data, err = e.svc.Files.GetContent(ctx, token, img.ID, "0")
	require.NoError(t, err)
	assert.Len(t, data.Data, 8)

	_, err = e.svc.Files.GetContent(ctx, token, "bad", "")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAccessRules(t *testing.T) {
	f := &model.File{UserID: "owner"}

	assert.True(t, service.CanRead(f, "owner"))
	assert.False(t, service.CanRead(f, "other"))
	assert.False(t, service.CanRead(f, ""))
	assert.True(t, service.CanMutate(f, "owner"))
	assert.False(t, service.CanMutate(f, ""))

	f.IsPublic = true

	assert.True(t, service.CanRead(f, ""))
	assert.False(t, service.CanMutate(f, "other"))
}
