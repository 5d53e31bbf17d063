package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/imagesight/internal/filestore"
	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
	"github.com/iudanet/imagesight/pkg/api"
)

// Analyzer определяет интерфейс vision-сервиса
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*models.Analysis, error)
}

// Thumbnailer определяет интерфейс генератора миниатюр
type Thumbnailer interface {
	Thumbnail(image []byte) ([]byte, error)
}

// AutoSaver определяет интерфейс фонового авто-сохранения
type AutoSaver interface {
	Dispatch(userID int64, analysis *models.Analysis, info *models.ImageInfo)
}

// AnalyzeHandler обрабатывает загрузку и анализ изображений
type AnalyzeHandler struct {
	logger        *slog.Logger
	analyzer      Analyzer
	thumbnailer   Thumbnailer
	files         filestore.Store
	imageStorage  storage.ImageStorage
	autoSaver     AutoSaver
	maxUploadSize int64
}

// NewAnalyzeHandler создает новый handler анализа изображений
func NewAnalyzeHandler(
	logger *slog.Logger,
	analyzer Analyzer,
	thumbnailer Thumbnailer,
	files filestore.Store,
	imageStorage storage.ImageStorage,
	autoSaver AutoSaver,
	maxUploadSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		logger:        logger,
		analyzer:      analyzer,
		thumbnailer:   thumbnailer,
		files:         files,
		imageStorage:  imageStorage,
		autoSaver:     autoSaver,
		maxUploadSize: maxUploadSize,
	}
}

// Analyze обрабатывает POST /api/analyze
// Принимает multipart-поле "image", анализирует изображение и при наличии
// аутентифицированного пользователя запускает фоновое авто-сохранение.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("image")
	if err != nil {
		h.logger.WarnContext(ctx, "image upload rejected", slog.Any("error", err))
		sendError(h.logger, w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read uploaded file", slog.Any("error", err))
		sendError(h.logger, w, "No image file provided", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		sendError(h.logger, w, "Only image files allowed", http.StatusBadRequest)
		return
	}

	storedName := filestore.GenerateName(header.Filename)
	if err := h.files.Save(ctx, storedName, contentType, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to store uploaded file", slog.Any("error", err))
		sendError(h.logger, w, "Processing failed", http.StatusInternalServerError)
		return
	}

	// Миниатюра вторична: при сбое генерации отдаем полный файл
	thumbURL := h.files.URL(storedName)
	if thumb, err := h.thumbnailer.Thumbnail(data); err != nil {
		h.logger.WarnContext(ctx, "failed to generate thumbnail",
			slog.String("stored_name", storedName), slog.Any("error", err))
	} else {
		thumbName := filestore.ThumbnailName(storedName)
		if err := h.files.Save(ctx, thumbName, "image/jpeg", thumb); err != nil {
			h.logger.WarnContext(ctx, "failed to store thumbnail", slog.Any("error", err))
		} else {
			thumbURL = h.files.URL(thumbName)
		}
	}

	start := time.Now()
	analysis, err := h.analyzer.Analyze(ctx, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "vision analysis failed", slog.Any("error", err))
		sendError(h.logger, w, "Processing failed", http.StatusInternalServerError)
		return
	}
	analysis.ProcessingTime = time.Since(start).Round(100 * time.Millisecond).String()

	info := &models.ImageInfo{
		OriginalName: header.Filename,
		StoredName:   storedName,
		Size:         header.Size,
		Thumbnail:    thumbURL,
		FullImage:    h.files.URL(storedName),
	}

	userID, authenticated := GetUserID(ctx)

	// Запись в общую галерею делается всегда, в том числе для анонимов.
	// Ошибка не фатальна для ответа.
	h.saveGalleryImage(ctx, storedName, analysis, userID, authenticated)

	autoSaved := false
	if authenticated {
		h.autoSaver.Dispatch(userID, analysis, info)
		autoSaved = true
	}

	resp := api.AnalyzeResponse{
		Success:   true,
		Analysis:  analysis,
		ImageInfo: info,
		AutoSaved: autoSaved,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// saveGalleryImage вставляет запись публичной галереи.
// Списки объектов, текста и лиц хранятся сериализованными в JSON.
func (h *AnalyzeHandler) saveGalleryImage(ctx context.Context, storedName string, analysis *models.Analysis, userID int64, authenticated bool) {
	objects, _ := json.Marshal(analysis.Objects)
	text, _ := json.Marshal(analysis.Text)
	faces, _ := json.Marshal(analysis.Faces)

	img := &models.Image{
		Filename:        storedName,
		UploadDate:      time.Now(),
		ObjectsDetected: string(objects),
		TextExtracted:   string(text),
		FacesDetected:   string(faces),
		ImagePath:       h.files.URL(storedName),
	}
	if authenticated {
		img.UserID = &userID
	}

	if _, err := h.imageStorage.SaveImage(ctx, img); err != nil {
		h.logger.ErrorContext(ctx, "failed to save gallery image",
			slog.String("stored_name", storedName), slog.Any("error", err))
	}
}
