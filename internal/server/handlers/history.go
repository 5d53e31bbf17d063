package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/imagesight/internal/export"
	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
	"github.com/iudanet/imagesight/pkg/api"
)

const (
	defaultHistoryPage  = 1
	defaultHistoryLimit = 20

	// recentActivityWindow — окно "недавней активности" в статистике
	recentActivityWindow = 7 * 24 * time.Hour
)

// HistoryHandler обрабатывает запросы к истории анализов пользователя
type HistoryHandler struct {
	logger          *slog.Logger
	analysisStorage storage.AnalysisStorage
	prefsStorage    storage.PreferencesStorage
}

// NewHistoryHandler создает новый handler истории
func NewHistoryHandler(logger *slog.Logger, analysisStorage storage.AnalysisStorage, prefsStorage storage.PreferencesStorage) *HistoryHandler {
	return &HistoryHandler{
		logger:          logger,
		analysisStorage: analysisStorage,
		prefsStorage:    prefsStorage,
	}
}

// History обрабатывает GET /api/user/history
// Возвращает страницу истории пользователя, новые записи первыми
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	opts := storage.ListOptions{
		Search:       r.URL.Query().Get("search"),
		AnalysisType: r.URL.Query().Get("type"),
		Page:         queryInt(r, "page", defaultHistoryPage),
		Limit:        queryInt(r, "limit", defaultHistoryLimit),
	}
	if opts.Page < 1 {
		opts.Page = defaultHistoryPage
	}
	if opts.Limit < 1 {
		opts.Limit = defaultHistoryLimit
	}

	records, total, err := h.analysisStorage.ListAnalyses(ctx, userID, opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list analyses", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	items := make([]api.HistoryItem, 0, len(records))
	for _, rec := range records {
		analysis, info, err := decodeRecord(*rec)
		if err != nil {
			// Битую запись пропускаем, остальная история остается доступной
			h.logger.WarnContext(ctx, "skipping corrupted history record",
				slog.Int64("record_id", rec.ID), slog.Any("error", err))
			continue
		}

		items = append(items, api.HistoryItem{
			ID:            rec.ID,
			Analysis:      analysis,
			ImageInfo:     info,
			SavedAt:       rec.SavedAt.Format(time.RFC3339),
			FormattedDate: rec.SavedAt.Format("Jan 2, 2006, 03:04 PM"),
			QuickInfo: api.QuickInfo{
				AnalysisType: analysis.AnalysisType,
				ObjectCount:  len(analysis.Objects),
				TextCount:    len(analysis.Text),
				FaceCount:    len(analysis.Faces),
			},
		})
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit

	resp := api.HistoryResponse{
		History: items,
		Pagination: api.Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// SaveAnalysis обрабатывает POST /api/user/save-analysis
// Явное сохранение: окно подавления дубликатов здесь не применяется
func (h *HistoryHandler) SaveAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	var req api.SaveAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.AnalysisData == nil || req.ImageInfo == nil {
		sendError(h.logger, w, "Analysis data and image info required", http.StatusBadRequest)
		return
	}

	analysisJSON, err := json.Marshal(req.AnalysisData)
	if err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	infoJSON, err := json.Marshal(req.ImageInfo)
	if err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec := &models.AnalysisRecord{
		UserID:       userID,
		AnalysisData: string(analysisJSON),
		ImageInfo:    string(infoJSON),
		StoredName:   req.ImageInfo.StoredName,
		SavedAt:      time.Now(),
	}

	id, err := h.analysisStorage.SaveAnalysis(ctx, rec)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to save analysis", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "analysis saved",
		slog.Int64("user_id", userID), slog.Int64("saved_id", id))

	sendJSON(h.logger, w, api.SaveAnalysisResponse{Success: true, SavedID: id}, http.StatusOK)
}

// BulkDelete обрабатывает DELETE /api/user/history/bulk
// Удаляет только записи, принадлежащие вызывающему пользователю
func (h *HistoryHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	var req api.BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.AnalysisIDs) == 0 {
		sendError(h.logger, w, "No analysis IDs provided", http.StatusBadRequest)
		return
	}

	deleted, err := h.analysisStorage.DeleteAnalyses(ctx, userID, req.AnalysisIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete analyses", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "bulk delete completed",
		slog.Int64("user_id", userID),
		slog.Int("requested", len(req.AnalysisIDs)),
		slog.Int64("deleted", deleted))

	resp := api.BulkDeleteResponse{
		Success:      true,
		DeletedCount: deleted,
		Message:      fmt.Sprintf("%d analyses deleted", deleted),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// BulkExport обрабатывает POST /api/user/history/export
// Поддерживается только формат json
func (h *HistoryHandler) BulkExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	var req api.BulkExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.AnalysisIDs) == 0 {
		sendError(h.logger, w, "No analysis IDs provided", http.StatusBadRequest)
		return
	}
	if req.Format != "json" {
		sendError(h.logger, w, "Only JSON format is supported", http.StatusBadRequest)
		return
	}

	records, err := h.analysisStorage.GetAnalysesByIDs(ctx, userID, req.AnalysisIDs)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load analyses for export", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	doc, err := export.NewBulkExport(derefRecords(records), decodeRecord)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build bulk export", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("analyses-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	sendJSON(h.logger, w, doc, http.StatusOK)
}

// Statistics обрабатывает GET /api/user/statistics
func (h *HistoryHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	total, err := h.analysisStorage.CountAnalyses(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count analyses", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := h.analysisStorage.CountAnalysesSince(ctx, userID, time.Now().Add(-recentActivityWindow))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count recent analyses", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	payloads, err := h.analysisStorage.ListAnalysisData(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list analysis payloads", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	byType := make(map[string]int)
	for _, payload := range payloads {
		var partial struct {
			AnalysisType string `json:"analysisType"`
		}
		if err := json.Unmarshal([]byte(payload), &partial); err != nil {
			// Битые записи в статистику не попадают
			continue
		}
		if partial.AnalysisType == "" {
			partial.AnalysisType = "general"
		}
		byType[partial.AnalysisType]++
	}

	resp := api.StatisticsResponse{
		TotalAnalyses:  total,
		RecentActivity: recent,
		AnalysesByType: byType,
		AveragePerWeek: math.Round(float64(recent)/7*10) / 10,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// SavePreferences обрабатывает POST /api/user/preferences
func (h *HistoryHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	var req api.PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Preferences == nil {
		sendError(h.logger, w, "Preferences required", http.StatusBadRequest)
		return
	}

	blob, err := json.Marshal(req.Preferences)
	if err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.prefsStorage.SavePreferences(ctx, userID, string(blob)); err != nil {
		h.logger.ErrorContext(ctx, "failed to save preferences", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.PreferencesResponse{Preferences: req.Preferences}, http.StatusOK)
}

// GetPreferences обрабатывает GET /api/user/preferences
// Пользователь без сохраненных настроек получает пустой объект
func (h *HistoryHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "Access token required", http.StatusUnauthorized)
		return
	}

	blob, err := h.prefsStorage.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrPreferencesNotFound) {
			sendJSON(h.logger, w, api.PreferencesResponse{Preferences: map[string]any{}}, http.StatusOK)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load preferences", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	prefs := make(map[string]any)
	if err := json.Unmarshal([]byte(blob), &prefs); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode stored preferences", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.PreferencesResponse{Preferences: prefs}, http.StatusOK)
}

// decodeRecord распаковывает сериализованные поля записи истории
func decodeRecord(rec models.AnalysisRecord) (*models.Analysis, *models.ImageInfo, error) {
	var analysis models.Analysis
	if err := json.Unmarshal([]byte(rec.AnalysisData), &analysis); err != nil {
		return nil, nil, fmt.Errorf("failed to decode analysis data: %w", err)
	}

	var info models.ImageInfo
	if err := json.Unmarshal([]byte(rec.ImageInfo), &info); err != nil {
		return nil, nil, fmt.Errorf("failed to decode image info: %w", err)
	}

	return &analysis, &info, nil
}

func derefRecords(records []*models.AnalysisRecord) []models.AnalysisRecord {
	out := make([]models.AnalysisRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, *rec)
	}
	return out
}

// queryInt читает целочисленный query-параметр с дефолтом
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
