package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
)

// SaveImage inserts a gallery record and returns its ID
func (s *Storage) SaveImage(ctx context.Context, img *models.Image) (int64, error) {
	query := `
		INSERT INTO images (filename, upload_date, objects_detected, text_extracted, faces_detected, image_path, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var userID sql.NullInt64
	if img.UserID != nil {
		userID = sql.NullInt64{Int64: *img.UserID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, query,
		img.Filename,
		img.UploadDate,
		img.ObjectsDetected,
		img.TextExtracted,
		img.FacesDetected,
		img.ImagePath,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted image id: %w", err)
	}

	return id, nil
}

// ListImages returns all gallery records, newest first
func (s *Storage) ListImages(ctx context.Context) ([]*models.Image, error) {
	query := `
		SELECT id, filename, upload_date, objects_detected, text_extracted, faces_detected, image_path, user_id
		FROM images
		ORDER BY upload_date DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	return scanImageRows(rows)
}

// SearchImages returns records whose detected objects or extracted text
// contain the query substring
func (s *Storage) SearchImages(ctx context.Context, query string) ([]*models.Image, error) {
	sqlQuery := `
		SELECT id, filename, upload_date, objects_detected, text_extracted, faces_detected, image_path, user_id
		FROM images
		WHERE objects_detected LIKE ? OR text_extracted LIKE ?
		ORDER BY upload_date DESC
	`

	term := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, sqlQuery, term, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	defer rows.Close()

	return scanImageRows(rows)
}

// SavePreferences creates or replaces the user's preferences JSON blob
func (s *Storage) SavePreferences(ctx context.Context, userID int64, preferences string) error {
	query := `INSERT OR REPLACE INTO user_preferences (user_id, preferences) VALUES (?, ?)`

	if _, err := s.db.ExecContext(ctx, query, userID, preferences); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	return nil
}

// GetPreferences returns the user's preferences JSON blob
func (s *Storage) GetPreferences(ctx context.Context, userID int64) (string, error) {
	query := `SELECT preferences FROM user_preferences WHERE user_id = ?`

	var preferences string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&preferences)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrPreferencesNotFound
		}
		return "", fmt.Errorf("failed to get preferences: %w", err)
	}

	return preferences, nil
}

// scanImageRows вычитывает все строки результата в записи галереи
func scanImageRows(rows *sql.Rows) ([]*models.Image, error) {
	images := []*models.Image{}

	for rows.Next() {
		img := &models.Image{}
		var userID sql.NullInt64

		if err := rows.Scan(
			&img.ID,
			&img.Filename,
			&img.UploadDate,
			&img.ObjectsDetected,
			&img.TextExtracted,
			&img.FacesDetected,
			&img.ImagePath,
			&userID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}

		if userID.Valid {
			img.UserID = &userID.Int64
		}

		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate image rows: %w", err)
	}

	return images, nil
}
