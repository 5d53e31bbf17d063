package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Local хранит файлы в директории на диске,
// отдаются они через /uploads/ самим сервером
type Local struct {
	dir string
}

// NewLocal creates a local file store rooted at dir
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Save writes the file to the upload directory
func (l *Local) Save(_ context.Context, name, _ string, data []byte) error {
	// Имя генерируется сервером (uuid), но на всякий случай отсекаем
	// любые компоненты пути из него
	path := filepath.Join(l.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// URL returns the server-relative URL for a stored file
func (l *Local) URL(name string) string {
	return "/uploads/" + name
}

// Dir returns the root directory of the store
func (l *Local) Dir() string {
	return l.dir
}
