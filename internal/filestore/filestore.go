// Package filestore отвечает за хранение загруженных изображений.
// Поддерживаются локальная директория и S3-совместимое object storage.
package filestore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ThumbnailPrefix — префикс имени файла миниатюры
const ThumbnailPrefix = "thumb-"

// Store определяет интерфейс хранилища загруженных файлов
type Store interface {
	// Save persists the file contents under the given stored name
	Save(ctx context.Context, name, contentType string, data []byte) error

	// URL returns the public URL for a stored name
	URL(name string) string
}

// GenerateName возвращает уникальное имя для загруженного файла,
// сохраняя расширение оригинала. Имя стабильно идентифицирует
// физический файл и участвует в подавлении дубликатов.
func GenerateName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return uuid.New().String() + ext
}

// ThumbnailName возвращает имя миниатюры для данного stored name
func ThumbnailName(storedName string) string {
	return ThumbnailPrefix + storedName
}
