package api

import "github.com/iudanet/imagesight/internal/models"

// BulkExportRequest представляет запрос на экспорт выбранных анализов
type BulkExportRequest struct {
	AnalysisIDs []int64 `json:"analysisIds"`
	Format      string  `json:"format"` // поддерживается только "json"
}

// ExportInfo — метаданные экспортного документа
type ExportInfo struct {
	ExportedAt    string `json:"exportedAt"`
	Version       string `json:"version"`
	Source        string `json:"source"`
	TotalAnalyses int    `json:"totalAnalyses,omitempty"`
	ExportFormat  string `json:"exportFormat,omitempty"`
}

// ExportedAnalysis — одна запись в массовом экспорте
type ExportedAnalysis struct {
	ID        int64             `json:"id"`
	SavedAt   string            `json:"savedAt"`
	Analysis  *models.Analysis  `json:"analysis"`
	ImageInfo *models.ImageInfo `json:"imageInfo"`
}

// BulkExportResponse — структурированный документ массового экспорта
type BulkExportResponse struct {
	ExportInfo ExportInfo         `json:"exportInfo"`
	Analyses   []ExportedAnalysis `json:"analyses"`
}

// SingleExportResponse — документ экспорта одной записи в JSON
type SingleExportResponse struct {
	ExportInfo ExportInfo        `json:"exportInfo"`
	ImageInfo  *models.ImageInfo `json:"imageInfo"`
	Analysis   *models.Analysis  `json:"analysis"`
}

// SearchResult — один результат публичного поиска по галерее
type SearchResult struct {
	ID         int64         `json:"id"`
	Filename   string        `json:"filename"`
	Objects    []string      `json:"objects"`
	Text       []string      `json:"text"`
	Faces      []models.Face `json:"faces"`
	UploadDate string        `json:"uploadDate"`
	ImagePath  string        `json:"imagePath"`
}

// SearchResponse представляет ответ публичного поиска
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// GalleryImage — один элемент публичной галереи
type GalleryImage struct {
	ID         int64    `json:"id"`
	Filename   string   `json:"filename"`
	Objects    []string `json:"objects"`
	Text       []string `json:"text"`
	UploadDate string   `json:"uploadDate"`
	Thumbnail  string   `json:"thumbnail"`
	FullImage  string   `json:"fullImage"`
}
