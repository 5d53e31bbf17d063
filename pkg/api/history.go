package api

import "github.com/iudanet/imagesight/internal/models"

// QuickInfo — краткая сводка анализа для списка истории
type QuickInfo struct {
	AnalysisType string `json:"analysisType"`
	ObjectCount  int    `json:"objectCount"`
	TextCount    int    `json:"textCount"`
	FaceCount    int    `json:"faceCount"`
}

// HistoryItem — один элемент истории пользователя
type HistoryItem struct {
	ID            int64             `json:"id"`
	Analysis      *models.Analysis  `json:"analysis"`
	ImageInfo     *models.ImageInfo `json:"imageInfo"`
	SavedAt       string            `json:"savedAt"`
	FormattedDate string            `json:"formattedDate"`
	QuickInfo     QuickInfo         `json:"quickInfo"`
}

// Pagination описывает страницу результатов
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HistoryResponse представляет ответ со страницей истории
type HistoryResponse struct {
	History    []HistoryItem `json:"history"`
	Pagination Pagination    `json:"pagination"`
}

// BulkDeleteRequest представляет запрос на массовое удаление
type BulkDeleteRequest struct {
	AnalysisIDs []int64 `json:"analysisIds"`
}

// BulkDeleteResponse представляет результат массового удаления.
// Удаляются только записи, принадлежащие вызывающему пользователю.
type BulkDeleteResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

// StatisticsResponse представляет статистику пользователя
type StatisticsResponse struct {
	TotalAnalyses  int            `json:"totalAnalyses"`
	RecentActivity int            `json:"recentActivity"` // за последние 7 дней
	AnalysesByType map[string]int `json:"analysesByType"`
	AveragePerWeek float64        `json:"averagePerWeek"`
}

// PreferencesRequest представляет запрос на сохранение настроек
type PreferencesRequest struct {
	Preferences map[string]any `json:"preferences"`
}

// PreferencesResponse представляет сохраненные настройки пользователя
type PreferencesResponse struct {
	Preferences map[string]any `json:"preferences"`
}
