package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/imagesight/internal/export"
	"github.com/iudanet/imagesight/internal/models"
)

// ExportHandler отдает единичный анализ в формате pdf, json или csv.
// Данные приходят в query-параметрах, сериализованными в JSON:
// так фронтенд экспортирует еще не сохраненный результат.
type ExportHandler struct {
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *slog.Logger) *ExportHandler {
	return &ExportHandler{logger: logger}
}

// Export обрабатывает GET /api/export/{format}
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	analysis, info, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "json":
		doc := export.NewSingleExport(analysis, info)
		w.Header().Set("Content-Disposition", `attachment; filename="analysis-`+stamp+`.json"`)
		sendJSON(h.logger, w, doc, http.StatusOK)

	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="analysis-`+stamp+`.pdf"`)
		if err := export.WritePDF(w, analysis, info); err != nil {
			h.logger.Error("failed to render pdf export", slog.Any("error", err))
		}

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="analysis-`+stamp+`.csv"`)
		if err := export.WriteCSV(w, analysis, info); err != nil {
			h.logger.Error("failed to render csv export", slog.Any("error", err))
		}

	default:
		sendError(h.logger, w, "Unsupported export format", http.StatusBadRequest)
	}
}

func (h *ExportHandler) parseQuery(w http.ResponseWriter, r *http.Request) (*models.Analysis, *models.ImageInfo, bool) {
	analysisRaw := r.URL.Query().Get("analysisData")
	infoRaw := r.URL.Query().Get("imageInfo")
	if analysisRaw == "" || infoRaw == "" {
		sendError(h.logger, w, "Analysis data and image info required", http.StatusBadRequest)
		return nil, nil, false
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(analysisRaw), &analysis); err != nil {
		sendError(h.logger, w, "Analysis data and image info required", http.StatusBadRequest)
		return nil, nil, false
	}

	var info models.ImageInfo
	if err := json.Unmarshal([]byte(infoRaw), &info); err != nil {
		sendError(h.logger, w, "Analysis data and image info required", http.StatusBadRequest)
		return nil, nil, false
	}

	return &analysis, &info, true
}
