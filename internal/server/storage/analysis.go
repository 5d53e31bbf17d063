package storage

import (
	"context"
	"time"

	"github.com/iudanet/imagesight/internal/models"
)

// ListOptions describes pagination and filtering for history queries
type ListOptions struct {
	// Search filters by substring match over the serialized
	// analysis and image info payloads
	Search string
	// AnalysisType filters by the analysisType value of the stored analysis
	AnalysisType string
	Page         int
	Limit        int
}

// AnalysisStorage defines interface for per-user analysis history persistence.
// The archive itself permits duplicates: re-analysis of the same image at a
// later time is valid. The 5-minute duplicate window is enforced by the
// auto-save orchestrator, not here.
type AnalysisStorage interface {
	// SaveAnalysis inserts a new analysis record and returns its ID
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) (int64, error)

	// FindRecentByStoredName returns the most recent record owned by userID
	// with the given stored file name saved after the since boundary.
	// Returns ErrRecordNotFound if no such record exists.
	FindRecentByStoredName(ctx context.Context, userID int64, storedName string, since time.Time) (*models.AnalysisRecord, error)

	// ListAnalyses returns one page of the user's history, newest first,
	// plus the total number of matching records
	ListAnalyses(ctx context.Context, userID int64, opts ListOptions) ([]*models.AnalysisRecord, int, error)

	// GetAnalysesByIDs returns the user's records with the given IDs,
	// newest first. IDs not owned by the user are silently skipped.
	GetAnalysesByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.AnalysisRecord, error)

	// DeleteAnalyses deletes the user's records with the given IDs and
	// returns the number of rows actually deleted. IDs owned by other
	// users are never touched.
	DeleteAnalyses(ctx context.Context, userID int64, ids []int64) (int64, error)

	// CountAnalyses returns the total number of records owned by the user
	CountAnalyses(ctx context.Context, userID int64) (int, error)

	// CountAnalysesSince returns the number of records saved after the boundary
	CountAnalysesSince(ctx context.Context, userID int64, since time.Time) (int, error)

	// ListAnalysisData returns the serialized analysis payloads of all the
	// user's records, for type aggregation
	ListAnalysisData(ctx context.Context, userID int64) ([]string, error)
}
