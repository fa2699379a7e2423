// Package directory 实现文件目录：users 与 files 两个集合上的查询与原子更新.
package directory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
)

// ErrNotFound 记录不存在.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate 唯一约束冲突（如重复邮箱）.
var ErrDuplicate = errors.New("duplicate record")

// Directory 文件目录.
type Directory struct {
	db *gorm.DB
}

// New 基于数据库客户端创建目录.
func New(client *dbc.Client) *Directory {
	return &Directory{db: client.DB}
}

// Migrate 创建或升级表结构.
func (d *Directory) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(&model.User{}, &model.File{}); err != nil {
		return fmt.Errorf("migrate directory: %w", err)
	}

	return nil
}

// Ping 检查数据库是否可用.
func (d *Directory) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return err
}
