package types

import (
	"bytes"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// ParentRef 父节点引用.
// 根目录序列化为数字 0，其余为 ID 字符串；反序列化同时接受数字与字符串.
type ParentRef string

// IsRoot 是否为根目录.
func (p ParentRef) IsRoot() bool {
	return p == "" || p == model.RootParentID
}

// String 返回规范化后的引用，根目录为 "0".
func (p ParentRef) String() string {
	if p.IsRoot() {
		return model.RootParentID
	}

	return string(p)
}

// MarshalJSON 实现 json.Marshaler.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}

	return sonic.Marshal(string(p))
}

// UnmarshalJSON 实现 json.Unmarshaler.
func (p *ParentRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*p = ""
		return nil
	case b[0] == '"':
		var s string
		if err := sonic.Unmarshal(b, &s); err != nil {
			return err
		}

		*p = ParentRef(s)

		return nil
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}

		*p = ParentRef(strconv.FormatFloat(n, 'f', -1, 64))

		return nil
	}
}

// UploadFileRequest 上传请求体，data 为 base64 编码的内容.
type UploadFileRequest struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	ParentID ParentRef `json:"parentId"`
	IsPublic bool      `json:"isPublic"`
	Data     string    `json:"data,omitempty"`
}

// FileResponse 文件记录的对外视图，不包含存储路径.
type FileResponse struct {
	ID       string         `json:"id"`
	UserID   string         `json:"userId"`
	Name     string         `json:"name"`
	Type     model.FileKind `json:"type"`
	IsPublic bool           `json:"isPublic"`
	ParentID ParentRef      `json:"parentId"`
}

// NewFileResponse 由文件记录构造对外视图.
func NewFileResponse(f *model.File) FileResponse {
	return FileResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: ParentRef(f.ParentID),
	}
}

// NewFileList 批量转换文件记录.
func NewFileList(files []model.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for i := range files {
		out = append(out, NewFileResponse(&files[i]))
	}

	return out
}

// ListFilesQuery 列表查询参数，page 无法解析时按 0 处理.
type ListFilesQuery struct {
	ParentID string `form:"parentId"`
	Page     string `form:"page"`
}

// FileDataQuery 内容读取参数.
type FileDataQuery struct {
	Size string `form:"size"`
}

// FileData 文件内容与类型.
type FileData struct {
	Name        string
	ContentType string
	Data        []byte
}
