// Package export формирует экспортные документы анализа:
// PDF-отчет, CSV и структурированный JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/iudanet/imagesight/internal/models"
	"github.com/iudanet/imagesight/pkg/api"
)

const (
	exportVersion = "1.0"
	exportSource  = "AI Image Analyzer"
)

// NewSingleExport собирает JSON-документ экспорта одной записи
func NewSingleExport(analysis *models.Analysis, info *models.ImageInfo) api.SingleExportResponse {
	return api.SingleExportResponse{
		ExportInfo: api.ExportInfo{
			ExportedAt: time.Now().Format(time.RFC3339),
			Version:    exportVersion,
			Source:     exportSource,
		},
		ImageInfo: info,
		Analysis:  analysis,
	}
}

// NewBulkExport собирает документ массового экспорта из записей истории
func NewBulkExport(records []models.AnalysisRecord, decode func(rec models.AnalysisRecord) (*models.Analysis, *models.ImageInfo, error)) (api.BulkExportResponse, error) {
	analyses := make([]api.ExportedAnalysis, 0, len(records))
	for _, rec := range records {
		analysis, info, err := decode(rec)
		if err != nil {
			return api.BulkExportResponse{}, fmt.Errorf("failed to decode record %d: %w", rec.ID, err)
		}
		analyses = append(analyses, api.ExportedAnalysis{
			ID:        rec.ID,
			SavedAt:   rec.SavedAt.Format(time.RFC3339),
			Analysis:  analysis,
			ImageInfo: info,
		})
	}

	return api.BulkExportResponse{
		ExportInfo: api.ExportInfo{
			ExportedAt:    time.Now().Format(time.RFC3339),
			Version:       exportVersion,
			Source:        exportSource,
			TotalAnalyses: len(analyses),
			ExportFormat:  "json",
		},
		Analyses: analyses,
	}, nil
}

// WritePDF рендерит PDF-отчет по одному анализу
func WritePDF(w io.Writer, analysis *models.Analysis, info *models.ImageInfo) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Image Analysis Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Basic Information", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	writeKV(pdf, "File", info.OriginalName)
	writeKV(pdf, "Size", fmt.Sprintf("%d bytes", info.Size))
	writeKV(pdf, "Analysis Type", analysis.AnalysisType)
	writeKV(pdf, "Confidence", analysis.Confidence)
	writeKV(pdf, "Processing Time", analysis.ProcessingTime)
	writeKV(pdf, "Analyzed At", analysis.Timestamp.Format("Jan 2, 2006, 03:04 PM"))
	pdf.Ln(4)

	writeListSection(pdf, "Objects Detected", analysis.Objects)
	writeListSection(pdf, "Text Extracted", analysis.Text)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Faces", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if len(analysis.Faces) == 0 {
		pdf.CellFormat(0, 6, "None detected", "", 1, "L", false, 0, "")
	}
	for i, face := range analysis.Faces {
		line := fmt.Sprintf("Face %d: %s, age %s", i+1, face.Gender, face.Age)
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "I", 8)
	footer := fmt.Sprintf("Generated by %s on %s", exportSource, time.Now().Format("Jan 2, 2006"))
	pdf.CellFormat(0, 6, footer, "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func writeKV(pdf *gofpdf.Fpdf, key, value string) {
	pdf.CellFormat(0, 6, key+": "+value, "", 1, "L", false, 0, "")
}

func writeListSection(pdf *gofpdf.Fpdf, title string, items []string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if len(items) == 0 {
		pdf.CellFormat(0, 6, "None detected", "", 1, "L", false, 0, "")
	} else {
		pdf.MultiCell(0, 6, strings.Join(items, ", "), "", "L", false)
	}
	pdf.Ln(4)
}

// WriteCSV рендерит анализ в CSV по секциям
func WriteCSV(w io.Writer, analysis *models.Analysis, info *models.ImageInfo) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Section", "Field", "Value"},
		{"Basic", "File", info.OriginalName},
		{"Basic", "Size", fmt.Sprintf("%d", info.Size)},
		{"Basic", "Analysis Type", analysis.AnalysisType},
		{"Basic", "Confidence", analysis.Confidence},
		{"Basic", "Processing Time", analysis.ProcessingTime},
		{"Basic", "Analyzed At", analysis.Timestamp.Format(time.RFC3339)},
	}
	for _, obj := range analysis.Objects {
		rows = append(rows, []string{"Objects", "Object", obj})
	}
	for _, txt := range analysis.Text {
		rows = append(rows, []string{"Text", "Line", txt})
	}
	for i, face := range analysis.Faces {
		rows = append(rows, []string{"Faces", fmt.Sprintf("Face %d", i+1), fmt.Sprintf("%s, age %s", face.Gender, face.Age)})
	}
	for _, tag := range analysis.Tags {
		rows = append(rows, []string{"Tags", tag.Name, tag.Confidence})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
