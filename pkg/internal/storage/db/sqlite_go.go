//go:build !no_sqlite && !cgo

package db

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

// createSQLiteDialector 创建纯 Go 版本的 SQLite dialector.
// 未指定时补上 busy_timeout.
func createSQLiteDialector(dsn string) gorm.Dialector {
	if !strings.Contains(dsn, "busy_timeout") {
		dsn = withSQLiteParam(dsn, "_pragma=busy_timeout(5000)")
	}

	return sqlite.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.SQLite, createSQLiteDialector)
}
