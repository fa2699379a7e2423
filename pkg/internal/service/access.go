package service

import "github.com/yeisme/filevault/pkg/internal/model"

// CanRead 公开文件任何人可读，私有文件仅所有者可读.
func CanRead(f *model.File, userID string) bool {
	return f.IsPublic || (userID != "" && f.UserID == userID)
}

// CanMutate 仅所有者可修改.
func CanMutate(f *model.File, userID string) bool {
	return userID != "" && f.UserID == userID
}
