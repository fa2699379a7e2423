package directory_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/internal/directory"
	"github.com/yeisme/filevault/pkg/internal/directory/directorytest"
	"github.com/yeisme/filevault/pkg/internal/model"
)

func TestUsers(t *testing.T) {
	dir, _ := directorytest.New(t)
	ctx := context.Background()

	u := &model.User{Email: "bob@dylan.com", Password: "hash"}
	require.NoError(t, dir.InsertUser(ctx, u))
	assert.True(t, model.ValidID(u.ID))

	err := dir.InsertUser(ctx, &model.User{Email: "bob@dylan.com", Password: "x"})
	require.ErrorIs(t, err, directory.ErrDuplicate)

	got, err := dir.FindUserByEmail(ctx, "bob@dylan.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = dir.FindUserByID(ctx, model.NewID())
	require.ErrorIs(t, err, directory.ErrNotFound)

	n, err := dir.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFindFileScopedByOwner(t *testing.T) {
	dir, _ := directorytest.New(t)
	ctx := context.Background()

	f := &model.File{UserID: "owner", Name: "a.txt", Type: model.KindFile, LocalPath: "/tmp/x"}
	require.NoError(t, dir.InsertFile(ctx, f))
	assert.Equal(t, model.RootParentID, f.ParentID)

	got, err := dir.FindFile(ctx, directory.FileFilter{ID: f.ID})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", got.LocalPath)

	_, err = dir.FindFile(ctx, directory.FileFilter{ID: f.ID, UserID: "someone-else"})
	require.ErrorIs(t, err, directory.ErrNotFound)
}

func TestSetVisibility(t *testing.T) {
	dir, _ := directorytest.New(t)
	ctx := context.Background()

	f := &model.File{UserID: "owner", Name: "a.txt", Type: model.KindFile, LocalPath: "p"}
	require.NoError(t, dir.InsertFile(ctx, f))

	updated, err := dir.SetVisibility(ctx, directory.FileFilter{ID: f.ID, UserID: "owner"}, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	// 值未变化时依然返回记录
	updated, err = dir.SetVisibility(ctx, directory.FileFilter{ID: f.ID, UserID: "owner"}, true)
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)

	_, err = dir.SetVisibility(ctx, directory.FileFilter{ID: f.ID, UserID: "intruder"}, false)
	require.ErrorIs(t, err, directory.ErrNotFound)

	got, err := dir.FindFile(ctx, directory.FileFilter{ID: f.ID})
	require.NoError(t, err)
	assert.True(t, got.IsPublic, "filtered update must not touch the record")
}

func TestListByParentPaginates(t *testing.T) {
	dir, _ := directorytest.New(t)
	ctx := context.Background()

	folder := &model.File{UserID: "u1", Name: "images", Type: model.KindFolder}
	require.NoError(t, dir.InsertFile(ctx, folder))

	var ids []string

	for i := range 25 {
		owner := "u1"
		if i%2 == 1 {
			owner = "u2"
		}

		f := &model.File{UserID: owner, Name: fmt.Sprintf("f%02d", i), Type: model.KindFile, ParentID: folder.ID, LocalPath: "p"}
		require.NoError(t, dir.InsertFile(ctx, f))
		ids = append(ids, f.ID)
	}

	page0, err := dir.ListByParent(ctx, folder.ID, 0, 20)
	require.NoError(t, err)
	require.Len(t, page0, 20)
	assert.Equal(t, ids[0], page0[0].ID)

	page1, err := dir.ListByParent(ctx, folder.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page1, 5)
	assert.Equal(t, ids[24], page1[4].ID)

	page5, err := dir.ListByParent(ctx, folder.ID, 5, 20)
	require.NoError(t, err)
	assert.Empty(t, page5)

	huge, err := dir.ListByParent(ctx, folder.ID, math.MaxInt, 20)
	require.NoError(t, err)
	assert.Empty(t, huge)

	root, err := dir.ListByParent(ctx, model.RootParentID, 0, 20)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, folder.ID, root[0].ID)

	n, err := dir.CountFiles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 26, n)
}
