package api

import "github.com/iudanet/imagesight/internal/models"

// AnalyzeResponse представляет ответ на загрузку и анализ изображения.
// AutoSaved означает "сохранение было запущено", а не "сохранение
// завершилось успешно": авто-сохранение выполняется в фоне и его
// результат клиенту синхронно не виден.
type AnalyzeResponse struct {
	Success   bool              `json:"success"`
	Analysis  *models.Analysis  `json:"analysis"`
	ImageInfo *models.ImageInfo `json:"imageInfo"`
	AutoSaved bool              `json:"autoSaved"`
}

// SaveAnalysisRequest представляет явный запрос на сохранение анализа
type SaveAnalysisRequest struct {
	AnalysisData *models.Analysis  `json:"analysisData"`
	ImageInfo    *models.ImageInfo `json:"imageInfo"`
}

// SaveAnalysisResponse представляет ответ на явное сохранение
type SaveAnalysisResponse struct {
	Success bool  `json:"success"`
	SavedID int64 `json:"savedId"`
}
