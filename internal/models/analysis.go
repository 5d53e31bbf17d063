package models

import (
	"encoding/json"
	"time"
)

// Face представляет одно распознанное лицо
type Face struct {
	Age    string `json:"age"`
	Gender string `json:"gender"`
}

// Category представляет категорию изображения с оценкой
type Category struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// Tag представляет тег изображения с уверенностью распознавания
type Tag struct {
	Name       string `json:"name"`
	Confidence string `json:"confidence"`
}

// Analysis — нормализованный результат анализа изображения.
// Внешний vision-сервис возвращает гетерогенный ответ, адаптер
// приводит его к этой единой форме.
type Analysis struct {
	Objects        []string        `json:"objects"`
	Text           []string        `json:"text"`
	Faces          []Face          `json:"faces"`
	AnalysisType   string          `json:"analysisType"`
	Confidence     string          `json:"confidence"`
	ProcessingTime string          `json:"processingTime"`
	Timestamp      time.Time       `json:"timestamp"`
	Categories     []Category      `json:"categories"`
	Tags           []Tag           `json:"tags"`
	Colors         json.RawMessage `json:"colors,omitempty"`
	ImageType      json.RawMessage `json:"imageType,omitempty"`
	Brands         []string        `json:"brands"`
}

// ImageInfo — метаданные загруженного файла, сохраняются вместе с анализом
type ImageInfo struct {
	OriginalName string `json:"originalName"` // имя файла у клиента
	StoredName   string `json:"storedName"`   // уникальное имя в хранилище
	Size         int64  `json:"size"`         // размер в байтах
	Thumbnail    string `json:"thumbnail"`    // URL миниатюры
	FullImage    string `json:"fullImage"`    // URL полного изображения
}

// AnalysisRecord — одна сохраненная запись истории пользователя.
// AnalysisData и ImageInfo хранятся сериализованными в JSON.
type AnalysisRecord struct {
	ID           int64
	UserID       int64
	AnalysisData string
	ImageInfo    string
	StoredName   string
	SavedAt      time.Time
}

// Image — запись общей галереи. UserID может быть NULL
// для анонимных загрузок.
type Image struct {
	ID              int64
	Filename        string
	UploadDate      time.Time
	ObjectsDetected string
	TextExtracted   string
	FacesDetected   string
	ImagePath       string
	UserID          *int64
}
