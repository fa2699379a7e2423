// Package directorytest 为测试提供基于临时 SQLite 文件的目录实例.
package directorytest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/directory"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
)

// New 创建已迁移的目录，测试结束时关闭连接.
func New(t testing.TB) (*directory.Directory, *dbc.Client) {
	t.Helper()

	cfg := configs.Default().DB
	cfg.Type = configs.SQLite
	cfg.Database = filepath.Join(t.TempDir(), "files_manager")

	client, err := dbc.New(context.Background(), cfg, dbc.Options{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	dir := directory.New(client)
	if err := dir.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return dir, client
}
