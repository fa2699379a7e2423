package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local 本地文件系统存储，路径为 <root>/<uuid>.
type Local struct {
	root string
}

// NewLocal 创建本地存储，根目录在首次写入时创建.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, errors.New("content root is empty")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve content root: %w", err)
	}

	return &Local{root: abs}, nil
}

// Root 返回根目录.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) NewKey() string {
	return filepath.Join(l.root, uuid.NewString())
}

// Put 先写临时文件再重命名.
func (l *Local) Put(_ context.Context, key string, data []byte) error {
	dir := filepath.Dir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return err
	}

	if err := os.Rename(tmpName, key); err != nil {
		_ = os.Remove(tmpName)

		return err
	}

	return nil
}

func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	if err != nil {
		return nil, err
	}

	return data, nil
}

// Ping 根目录不存在时视为可用，首次写入会创建.
func (l *Local) Ping(_ context.Context) error {
	info, err := os.Stat(l.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("content root %s is not a directory", l.root)
	}

	return nil
}

func (l *Local) Backend() string {
	return "local"
}
