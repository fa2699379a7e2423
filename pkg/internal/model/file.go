package model

import (
	"time"
)

// FileKind 文件记录类型.
type FileKind string

const (
	KindFile   FileKind = "file"
	KindFolder FileKind = "folder"
	KindImage  FileKind = "image"
)

// RootParentID 根目录哨兵值.
const RootParentID = "0"

// Valid 判断类型是否受支持.
func (k FileKind) Valid() bool {
	switch k {
	case KindFile, KindFolder, KindImage:
		return true
	default:
		return false
	}
}

// File 文件目录中的一条记录.
// 文件夹记录不携带 LocalPath，其余类型必须携带.
type File struct {
	ID       string   `gorm:"primaryKey;size:26"                json:"id"`
	UserID   string   `gorm:"size:26;not null;index"            json:"userId"`
	Name     string   `gorm:"size:512;not null"                 json:"name"`
	Type     FileKind `gorm:"size:16;not null"                  json:"type"`
	IsPublic bool     `gorm:"not null;default:false"            json:"isPublic"`
	ParentID string   `gorm:"size:26;not null;default:0;index"  json:"parentId"`
	// 内容存储中的位置，不对外暴露
	LocalPath string    `gorm:"size:1024" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// IsFolder 是否为文件夹.
func (f *File) IsFolder() bool {
	return f.Type == KindFolder
}

// IsRoot 是否位于根目录.
func (f *File) IsRoot() bool {
	return f.ParentID == "" || f.ParentID == RootParentID
}
