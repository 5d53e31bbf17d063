package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
)

// SaveAnalysis inserts a new analysis record and returns its ID
func (s *Storage) SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) (int64, error) {
	query := `
		INSERT INTO user_analyses (user_id, analysis_data, image_info, stored_name, saved_at)
		VALUES (?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		rec.UserID,
		rec.AnalysisData,
		rec.ImageInfo,
		rec.StoredName,
		rec.SavedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted analysis id: %w", err)
	}

	return id, nil
}

// FindRecentByStoredName returns the most recent record owned by userID with
// the given stored file name saved after the since boundary
func (s *Storage) FindRecentByStoredName(ctx context.Context, userID int64, storedName string, since time.Time) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, user_id, analysis_data, image_info, stored_name, saved_at
		FROM user_analyses
		WHERE user_id = ? AND stored_name = ? AND saved_at > ?
		ORDER BY saved_at DESC
		LIMIT 1
	`

	rec := &models.AnalysisRecord{}

	err := s.db.QueryRowContext(ctx, query, userID, storedName, since).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.AnalysisData,
		&rec.ImageInfo,
		&rec.StoredName,
		&rec.SavedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find recent analysis: %w", err)
	}

	return rec, nil
}

// buildHistoryFilter собирает WHERE-условия и аргументы для фильтров истории.
// Поиск — подстрочное совпадение по сериализованным payload'ам,
// фильтр по типу — по значению analysisType внутри analysis_data.
func buildHistoryFilter(userID int64, opts storage.ListOptions) (string, []any) {
	where := `user_id = ?`
	args := []any{userID}

	if opts.Search != "" {
		where += ` AND (analysis_data LIKE ? OR image_info LIKE ?)`
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	if opts.AnalysisType != "" {
		where += ` AND analysis_data LIKE ?`
		args = append(args, `%"analysisType":"`+opts.AnalysisType+`"%`)
	}

	return where, args
}

// ListAnalyses returns one page of the user's history, newest first,
// plus the total number of matching records
func (s *Storage) ListAnalyses(ctx context.Context, userID int64, opts storage.ListOptions) ([]*models.AnalysisRecord, int, error) {
	where, args := buildHistoryFilter(userID, opts)

	countQuery := `SELECT COUNT(*) FROM user_analyses WHERE ` + where

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	offset := (opts.Page - 1) * opts.Limit
	query := `
		SELECT id, user_id, analysis_data, image_info, stored_name, saved_at
		FROM user_analyses
		WHERE ` + where + `
		ORDER BY saved_at DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, opts.Limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	records, err := scanAnalysisRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetAnalysesByIDs returns the user's records with the given IDs, newest first
func (s *Storage) GetAnalysesByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.AnalysisRecord, error) {
	if len(ids) == 0 {
		return []*models.AnalysisRecord{}, nil
	}

	placeholders, args := idPlaceholders(userID, ids)
	query := `
		SELECT id, user_id, analysis_data, image_info, stored_name, saved_at
		FROM user_analyses
		WHERE user_id = ? AND id IN (` + placeholders + `)
		ORDER BY saved_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses by ids: %w", err)
	}
	defer rows.Close()

	return scanAnalysisRows(rows)
}

// DeleteAnalyses deletes the user's records with the given IDs.
// Записи других пользователей не затрагиваются: user_id входит в условие.
func (s *Storage) DeleteAnalyses(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders, args := idPlaceholders(userID, ids)
	query := `DELETE FROM user_analyses WHERE user_id = ? AND id IN (` + placeholders + `)`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// CountAnalyses returns the total number of records owned by the user
func (s *Storage) CountAnalyses(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_analyses WHERE user_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

// CountAnalysesSince returns the number of records saved after the boundary
func (s *Storage) CountAnalysesSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_analyses WHERE user_id = ? AND saved_at > ?`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent analyses: %w", err)
	}
	return count, nil
}

// ListAnalysisData returns the serialized analysis payloads of all the user's records
func (s *Storage) ListAnalysisData(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT analysis_data FROM user_analyses WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis data: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan analysis data: %w", err)
		}
		payloads = append(payloads, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis data: %w", err)
	}

	return payloads, nil
}

// scanAnalysisRows вычитывает все строки результата в записи
func scanAnalysisRows(rows *sql.Rows) ([]*models.AnalysisRecord, error) {
	records := []*models.AnalysisRecord{}

	for rows.Next() {
		rec := &models.AnalysisRecord{}
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.AnalysisData,
			&rec.ImageInfo,
			&rec.StoredName,
			&rec.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis rows: %w", err)
	}

	return records, nil
}

// idPlaceholders строит список плейсхолдеров для IN (...) и аргументы запроса
func idPlaceholders(userID int64, ids []int64) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	return placeholders, args
}
