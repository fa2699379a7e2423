package directory

import (
	"context"
	"fmt"
	"math"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// FileFilter 单条文件记录的查询条件，UserID 为空表示不限定所有者.
type FileFilter struct {
	ID     string
	UserID string
}

// FindFile 按条件查找一条文件记录.
func (d *Directory) FindFile(ctx context.Context, filter FileFilter) (*model.File, error) {
	var f model.File

	q := d.db.WithContext(ctx).Where("id = ?", filter.ID)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	if err := q.Take(&f).Error; err != nil {
		return nil, notFoundOr(err)
	}

	return &f, nil
}

// InsertFile 写入新的文件记录.
func (d *Directory) InsertFile(ctx context.Context, f *model.File) error {
	if f.ID == "" {
		f.ID = model.NewID()
	}

	if f.ParentID == "" {
		f.ParentID = model.RootParentID
	}

	if err := d.db.WithContext(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	return nil
}

// SetVisibility 以单条带条件的 UPDATE 修改可见性，返回更新后的记录.
// 条件不匹配时返回 ErrNotFound，且不发生任何写入.
func (d *Directory) SetVisibility(ctx context.Context, filter FileFilter, public bool) (*model.File, error) {
	q := d.db.WithContext(ctx).Model(&model.File{}).Where("id = ?", filter.ID)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}

	if err := q.Update("is_public", public).Error; err != nil {
		return nil, fmt.Errorf("update visibility: %w", err)
	}

	// 部分数据库在值未变化时 RowsAffected 为 0，因此以回读判断是否命中.
	return d.FindFile(ctx, filter)
}

// ListByParent 按父节点分页列出文件，不限定所有者，按创建顺序排列.
func (d *Directory) ListByParent(ctx context.Context, parentID string, page, pageSize int) ([]model.File, error) {
	if parentID == "" {
		parentID = model.RootParentID
	}

	if page < 0 {
		page = 0
	}

	files := make([]model.File, 0, pageSize)

	// 偏移量溢出时必然越过最后一条记录
	if pageSize > 0 && page > math.MaxInt/pageSize {
		return files, nil
	}

	err := d.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// CountFiles 返回文件记录总数.
func (d *Directory) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	if err := d.db.WithContext(ctx).Model(&model.File{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}

	return n, nil
}
