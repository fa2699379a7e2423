package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// FindUserByID 按标识查找用户.
func (d *Directory) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := d.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, notFoundOr(err)
	}

	return &u, nil
}

// FindUserByEmail 按邮箱查找用户.
func (d *Directory) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := d.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, notFoundOr(err)
	}

	return &u, nil
}

// InsertUser 写入新用户，邮箱重复返回 ErrDuplicate.
func (d *Directory) InsertUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = model.NewID()
	}

	err := d.db.WithContext(ctx).Create(u).Error
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return ErrDuplicate
	}

	return fmt.Errorf("insert user: %w", err)
}

// CountUsers 返回用户总数.
func (d *Directory) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return n, nil
}

// ListUsers 按注册顺序列出用户，供命令行排查使用.
func (d *Directory) ListUsers(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	if err := d.db.WithContext(ctx).Order("id ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// isUniqueViolation 未开启 TranslateError 的驱动按错误文本识别.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
