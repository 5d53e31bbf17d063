package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/pkg/api"
)

// exportRequest собирает GET-запрос на экспорт с данными в query-параметрах
func exportRequest(t *testing.T, format string, analysis *models.Analysis, info *models.ImageInfo) *http.Request {
	t.Helper()

	q := url.Values{}
	if analysis != nil {
		data, err := json.Marshal(analysis)
		require.NoError(t, err)
		q.Set("analysisData", string(data))
	}
	if info != nil {
		data, err := json.Marshal(info)
		require.NoError(t, err)
		q.Set("imageInfo", string(data))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/export/"+format+"?"+q.Encode(), nil)
	req.SetPathValue("format", format)
	return req
}

func exportFixtures() (*models.Analysis, *models.ImageInfo) {
	analysis := &models.Analysis{
		Objects:      []string{"cat"},
		Text:         []string{"hello"},
		AnalysisType: "animal",
		Confidence:   "0.9",
		Timestamp:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	info := &models.ImageInfo{OriginalName: "cat.jpg", StoredName: "abc.jpg", Size: 100}
	return analysis, info
}

func TestExportHandler_JSON(t *testing.T) {
	h := NewExportHandler(discardLogger())
	analysis, info := exportFixtures()

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(t, "json", analysis, info))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	var doc api.SingleExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))

	assert.Equal(t, "animal", doc.Analysis.AnalysisType)
	assert.Equal(t, "cat.jpg", doc.ImageInfo.OriginalName)
	assert.NotEmpty(t, doc.ExportInfo.ExportedAt)
}

func TestExportHandler_PDF(t *testing.T) {
	h := NewExportHandler(discardLogger())
	analysis, info := exportFixtures()

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(t, "pdf", analysis, info))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))
}

func TestExportHandler_CSV(t *testing.T) {
	h := NewExportHandler(discardLogger())
	analysis, info := exportFixtures()

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(t, "csv", analysis, info))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Section,Field,Value")
	assert.Contains(t, w.Body.String(), "cat.jpg")
}

func TestExportHandler_MissingData(t *testing.T) {
	h := NewExportHandler(discardLogger())
	analysis, info := exportFixtures()

	tests := []struct {
		name     string
		analysis *models.Analysis
		info     *models.ImageInfo
	}{
		{name: "missing analysis", info: info},
		{name: "missing image info", analysis: analysis},
		{name: "missing both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Export(w, exportRequest(t, "json", tt.analysis, tt.info))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Analysis data and image info required")
		})
	}
}

func TestExportHandler_UnsupportedFormat(t *testing.T) {
	h := NewExportHandler(discardLogger())
	analysis, info := exportFixtures()

	w := httptest.NewRecorder()
	h.Export(w, exportRequest(t, "xml", analysis, info))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported export format")
}
