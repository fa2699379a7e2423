//go:build !no_sqlite && cgo

package db

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// createSQLiteDialector 创建 CGo 版本的 SQLite dialector.
// API 与 worker 共用同一数据库文件，未指定时补上 busy_timeout 与 WAL.
func createSQLiteDialector(dsn string) gorm.Dialector {
	if !strings.Contains(dsn, "_busy_timeout") {
		dsn = withSQLiteParam(dsn, "_busy_timeout=5000&_journal_mode=WAL")
	}

	return sqlite.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
