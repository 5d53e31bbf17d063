// Package imaging генерирует миниатюры загруженных изображений.
package imaging

import (
	"fmt"

	"github.com/h2non/bimg"
)

const (
	thumbWidth   = 200
	thumbHeight  = 200
	thumbQuality = 80
)

// Thumbnailer генерирует JPEG-миниатюру 200x200 через libvips
type Thumbnailer struct{}

// NewThumbnailer creates a thumbnail generator
func NewThumbnailer() *Thumbnailer {
	return &Thumbnailer{}
}

// Thumbnail возвращает миниатюру изображения
func (t *Thumbnailer) Thumbnail(image []byte) ([]byte, error) {
	thumb, err := bimg.NewImage(image).Process(bimg.Options{
		Width:   thumbWidth,
		Height:  thumbHeight,
		Crop:    true,
		Quality: thumbQuality,
		Type:    bimg.JPEG,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate thumbnail: %w", err)
	}

	return thumb, nil
}
