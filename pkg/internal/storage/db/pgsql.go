//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/configs"
)

func createPostgresDialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

func init() {
	for _, t := range []configs.DBType{configs.PostgreSQL, configs.Postgres, configs.Pg} {
		RegisterDialectorFactory(t, createPostgresDialector)
	}
}
