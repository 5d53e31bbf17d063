// Package vision оборачивает вызов внешнего сервиса анализа изображений
// (Azure Computer Vision) и приводит его гетерогенный ответ к внутренней
// форме models.Analysis.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/imagesight/internal/models"
)

// visualFeatures — запрашиваемые у сервиса аспекты анализа
const visualFeatures = "Categories,Tags,Description,Faces,Color,ImageType,Objects,Brands"

// Client вызывает REST API сервиса анализа изображений
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string
	key        string
}

// New creates a new vision API client.
// Каждый вызов ограничен timeout: зависший внешний сервис не должен
// держать запрос бесконечно.
func New(endpoint, key string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		key:        key,
	}
}

// azureFace — лицо в ответе сервиса
type azureFace struct {
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// azureResponse — сырой ответ сервиса анализа
type azureResponse struct {
	Categories []struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	} `json:"categories"`
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Description struct {
		Captions []struct {
			Text       string  `json:"text"`
			Confidence float64 `json:"confidence"`
		} `json:"captions"`
	} `json:"description"`
	Faces   []azureFace `json:"faces"`
	Objects []struct {
		Object string `json:"object"`
	} `json:"objects"`
	Brands []struct {
		Name string `json:"name"`
	} `json:"brands"`
	Color     json.RawMessage `json:"color"`
	ImageType json.RawMessage `json:"imageType"`
}

// Analyze отправляет изображение на анализ и возвращает нормализованный
// результат. Ошибки сервиса не ретраятся.
func (c *Client) Analyze(ctx context.Context, image []byte) (*models.Analysis, error) {
	url := fmt.Sprintf("%s/vision/v3.2/analyze?visualFeatures=%s&language=en", c.endpoint, visualFeatures)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.ErrorContext(ctx, "vision service returned error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))
		return nil, fmt.Errorf("vision service returned status %d", resp.StatusCode)
	}

	var raw azureResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode vision response: %w", err)
	}

	analysis := normalize(&raw)
	analysis.ProcessingTime = time.Since(start).Round(time.Millisecond).String()

	c.logger.InfoContext(ctx, "vision analysis completed",
		slog.String("analysis_type", analysis.AnalysisType),
		slog.Int("objects", len(analysis.Objects)),
		slog.Int("faces", len(analysis.Faces)))

	return analysis, nil
}

// normalize приводит сырой ответ сервиса к внутренней форме
func normalize(raw *azureResponse) *models.Analysis {
	analysis := &models.Analysis{
		Objects:    []string{},
		Text:       []string{},
		Faces:      []models.Face{},
		Categories: []models.Category{},
		Tags:       []models.Tag{},
		Brands:     []string{},
		Confidence: "0.85",
		Timestamp:  time.Now(),
		Colors:     raw.Color,
		ImageType:  raw.ImageType,
	}

	for _, obj := range raw.Objects {
		analysis.Objects = append(analysis.Objects, obj.Object)
	}

	for _, cap := range raw.Description.Captions {
		analysis.Text = append(analysis.Text, cap.Text)
	}
	if len(raw.Description.Captions) > 0 {
		analysis.Confidence = fmt.Sprintf("%.2f", raw.Description.Captions[0].Confidence)
	}

	for _, face := range raw.Faces {
		analysis.Faces = append(analysis.Faces, models.Face{
			Age:    fmt.Sprintf("%d", face.Age),
			Gender: capitalize(face.Gender),
		})
	}

	for _, cat := range raw.Categories {
		analysis.Categories = append(analysis.Categories, models.Category{
			Name:  cat.Name,
			Score: fmt.Sprintf("%.2f", cat.Score),
		})
	}

	for _, tag := range raw.Tags {
		analysis.Tags = append(analysis.Tags, models.Tag{
			Name:       tag.Name,
			Confidence: fmt.Sprintf("%.2f", tag.Confidence),
		})
	}

	for _, brand := range raw.Brands {
		analysis.Brands = append(analysis.Brands, brand.Name)
	}

	analysis.AnalysisType = classifyType(raw)

	return analysis
}

// classifyType выводит тип изображения из категорий и тегов
func classifyType(raw *azureResponse) string {
	for _, cat := range raw.Categories {
		if strings.Contains(cat.Name, "people_") {
			return "portrait"
		}
	}

	tagTypes := []struct {
		kind string
		tags []string
	}{
		{"landscape", []string{"mountain", "sky", "nature", "outdoor"}},
		{"urban", []string{"building", "city", "urban"}},
		{"food", []string{"food", "meal"}},
		{"animal", []string{"animal", "pet", "cat", "dog"}},
		{"document", []string{"text", "document"}},
	}

	for _, tt := range tagTypes {
		for _, tag := range raw.Tags {
			for _, name := range tt.tags {
				if tag.Name == name {
					return tt.kind
				}
			}
		}
	}

	return "general"
}

// capitalize делает первую букву заглавной
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
