//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

func createMySQLDialector(dsn string) gorm.Dialector {
	return mysql.Open(dsn)
}

func init() {
	RegisterDialectorFactory(configs.MySQL, createMySQLDialector)
	RegisterDialectorFactory(configs.MariaDB, createMySQLDialector)
}
