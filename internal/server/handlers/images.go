package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/imagesight/internal/filestore"
	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
	"github.com/iudanet/imagesight/pkg/api"
)

// ImagesHandler обрабатывает публичную галерею и поиск по ней
type ImagesHandler struct {
	logger       *slog.Logger
	imageStorage storage.ImageStorage
	files        filestore.Store
}

// NewImagesHandler создает новый handler галереи
func NewImagesHandler(logger *slog.Logger, imageStorage storage.ImageStorage, files filestore.Store) *ImagesHandler {
	return &ImagesHandler{
		logger:       logger,
		imageStorage: imageStorage,
		files:        files,
	}
}

// List обрабатывает GET /api/images
// Возвращает все изображения галереи, новые первыми
func (h *ImagesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	images, err := h.imageStorage.ListImages(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list gallery images", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]api.GalleryImage, 0, len(images))
	for _, img := range images {
		out = append(out, api.GalleryImage{
			ID:         img.ID,
			Filename:   img.Filename,
			Objects:    decodeStringList(img.ObjectsDetected),
			Text:       decodeStringList(img.TextExtracted),
			UploadDate: img.UploadDate.Format(time.RFC3339),
			Thumbnail:  h.files.URL(filestore.ThumbnailName(img.Filename)),
			FullImage:  h.files.URL(img.Filename),
		})
	}

	sendJSON(h.logger, w, out, http.StatusOK)
}

// Search обрабатывает GET /api/search?q=
// Подстрочный поиск по объектам и извлеченному тексту галереи
func (h *ImagesHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		sendError(h.logger, w, "Search query required", http.StatusBadRequest)
		return
	}

	images, err := h.imageStorage.SearchImages(ctx, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to search gallery", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	results := make([]api.SearchResult, 0, len(images))
	for _, img := range images {
		results = append(results, api.SearchResult{
			ID:         img.ID,
			Filename:   img.Filename,
			Objects:    decodeStringList(img.ObjectsDetected),
			Text:       decodeStringList(img.TextExtracted),
			Faces:      decodeFaces(img.FacesDetected),
			UploadDate: img.UploadDate.Format(time.RFC3339),
			ImagePath:  img.ImagePath,
		})
	}

	resp := api.SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// decodeStringList распаковывает JSON-список; битые данные дают пустой список
func decodeStringList(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}

func decodeFaces(raw string) []models.Face {
	out := []models.Face{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
