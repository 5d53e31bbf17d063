package storage

import (
	"context"

	"github.com/iudanet/imagesight/internal/models"
)

// ImageStorage defines interface for the public image gallery
type ImageStorage interface {
	// SaveImage inserts a gallery record and returns its ID
	SaveImage(ctx context.Context, img *models.Image) (int64, error)

	// ListImages returns all gallery records, newest first
	ListImages(ctx context.Context) ([]*models.Image, error)

	// SearchImages returns records whose detected objects or extracted
	// text contain the query substring
	SearchImages(ctx context.Context, query string) ([]*models.Image, error)
}

// PreferencesStorage defines interface for per-user preference blobs
type PreferencesStorage interface {
	// SavePreferences creates or replaces the user's preferences JSON blob
	SavePreferences(ctx context.Context, userID int64, preferences string) error

	// GetPreferences returns the user's preferences JSON blob
	// Returns ErrPreferencesNotFound if the user never saved preferences
	GetPreferences(ctx context.Context, userID int64) (string, error)
}
