// Package autosave решает, сохранять ли свежий результат анализа
// в историю пользователя. Подавляет дубликаты от повторных запросов
// и быстрых повторных загрузок одного и того же файла.
package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/internal/server/storage"
)

// DuplicateWindow — скользящее окно подавления дубликатов: в его пределах
// для пары (пользователь, имя файла в хранилище) сохраняется не более
// одной записи.
const DuplicateWindow = 5 * time.Minute

// dispatchTimeout ограничивает время фоновой попытки сохранения
const dispatchTimeout = 15 * time.Second

// Storage определяет интерфейс архива, нужный оркестратору
type Storage interface {
	FindRecentByStoredName(ctx context.Context, userID int64, storedName string, since time.Time) (*models.AnalysisRecord, error)
	SaveAnalysis(ctx context.Context, rec *models.AnalysisRecord) (int64, error)
}

// Outcome — результат одной попытки авто-сохранения
type Outcome struct {
	Saved   bool   `json:"saved"`
	SavedID int64  `json:"savedId,omitempty"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// Service реализует авто-сохранение с подавлением дубликатов.
// Вызывающий обязан передавать уже аутентифицированный userID:
// анонимные загрузки сюда не попадают.
type Service struct {
	logger  *slog.Logger
	storage Storage
	window  time.Duration
	now     func() time.Time
}

// New creates a new auto-save service
func New(logger *slog.Logger, storage Storage) *Service {
	return &Service{
		logger:  logger,
		storage: storage,
		window:  DuplicateWindow,
		now:     time.Now,
	}
}

// AttemptAutoSave решает, сохранять ли анализ, и сохраняет при отсутствии
// недавнего дубликата.
//
// Проверка и вставка не обёрнуты в транзакцию: два конкурентных запроса
// в одном окне могут оба пройти проверку до того, как любой из них
// запишет. Гарантия best-effort, не строгая.
func (s *Service) AttemptAutoSave(ctx context.Context, userID int64, analysis *models.Analysis, info *models.ImageInfo) (Outcome, error) {
	if userID == 0 {
		return Outcome{}, errors.New("user id is required")
	}
	if info == nil || info.StoredName == "" {
		return Outcome{}, errors.New("stored file name is required")
	}

	now := s.now()
	since := now.Add(-s.window)

	existing, err := s.storage.FindRecentByStoredName(ctx, userID, info.StoredName, since)
	if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
		return Outcome{}, fmt.Errorf("failed to check for duplicate: %w", err)
	}

	if existing != nil {
		s.logger.InfoContext(ctx, "duplicate analysis detected, skipping auto-save",
			slog.Int64("user_id", userID),
			slog.String("stored_name", info.StoredName),
			slog.Int64("existing_id", existing.ID))
		return Outcome{Skipped: true, Reason: "duplicate"}, nil
	}

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	infoJSON, err := json.Marshal(info)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to marshal image info: %w", err)
	}

	rec := &models.AnalysisRecord{
		UserID:       userID,
		AnalysisData: string(analysisJSON),
		ImageInfo:    string(infoJSON),
		StoredName:   info.StoredName,
		SavedAt:      now,
	}

	id, err := s.storage.SaveAnalysis(ctx, rec)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to save analysis: %w", err)
	}

	return Outcome{Saved: true, SavedID: id}, nil
}

// Dispatch запускает попытку авто-сохранения в фоне, отвязанно от
// жизненного цикла HTTP-запроса. Результат и ошибки только логируются
// и никогда не влияют на уже отправленный клиенту ответ.
func (s *Service) Dispatch(userID int64, analysis *models.Analysis, info *models.ImageInfo) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		outcome, err := s.AttemptAutoSave(ctx, userID, analysis, info)
		if err != nil {
			s.logger.ErrorContext(ctx, "auto-save failed",
				slog.Int64("user_id", userID),
				slog.Any("error", err))
			return
		}

		s.logger.InfoContext(ctx, "auto-save completed",
			slog.Int64("user_id", userID),
			slog.Bool("saved", outcome.Saved),
			slog.Bool("skipped", outcome.Skipped),
			slog.Int64("saved_id", outcome.SavedID))
	}()
}
