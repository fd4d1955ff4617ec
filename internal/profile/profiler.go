// Package profile derives the routing features of a PDF.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

// ScannedOCRThreshold is the number of OCR characters below which a page
// without a text layer counts as scanned.
const ScannedOCRThreshold = 100

var (
	FinancialKeywords = []string{"balance", "income", "revenue", "expenses", "assets", "liabilities", "profit", "loss", "equity", "cash flow"}
	LegalKeywords     = []string{"agreement", "contract", "party", "jurisdiction", "terms", "whereas", "witnesseth", "confidentiality"}
)

// Profiler computes Features from a PDF on disk.
type Profiler struct {
	reader pdf.Reader
	raster pdf.Rasterizer
	ocr    pdf.Recognizer
	tables pdf.TableDetector
}

// New builds a Profiler from the PDF primitives it probes with.
func New(reader pdf.Reader, raster pdf.Rasterizer, ocr pdf.Recognizer, tables pdf.TableDetector) *Profiler {
	return &Profiler{reader: reader, raster: raster, ocr: ocr, tables: tables}
}

// Profile opens the document at path and derives its features and metadata.
// Documents that cannot be opened or have no pages fail with
// models.ErrDocumentUnreadable.
func (p *Profiler) Profile(ctx context.Context, logCtx *slog.Logger, path string) (models.Features, models.Metadata, error) {
	doc, err := p.reader.Open(path)
	if err != nil {
		return models.Features{}, models.Metadata{}, fmt.Errorf("%w: %v", models.ErrDocumentUnreadable, err)
	}
	pageCount := doc.PageCount()
	if pageCount <= 0 {
		return models.Features{}, models.Metadata{}, fmt.Errorf("%w: document has no pages", models.ErrDocumentUnreadable)
	}

	firstPage, err := doc.PageText(ctx, 1)
	if err != nil {
		return models.Features{}, models.Metadata{}, fmt.Errorf("failed to read first page text: %w", err)
	}
	scanned, err := p.isScanned(ctx, firstPage, path)
	if err != nil {
		return models.Features{}, models.Metadata{}, err
	}
	financial, err := p.containsFinancialTables(ctx, path)
	if err != nil {
		return models.Features{}, models.Metadata{}, err
	}

	features := models.Features{
		PageCount:               pageCount,
		IsScanned:               scanned,
		ContainsFinancialTables: financial,
		IsLegalDocument:         containsAny(strings.ToLower(firstPage), LegalKeywords),
	}
	logCtx.Info("Document profiled.",
		"pageCount", features.PageCount,
		"isScanned", features.IsScanned,
		"financialTables", features.ContainsFinancialTables,
		"legal", features.IsLegalDocument,
	)
	return features, doc.Metadata(), nil
}

// isScanned probes the first page's text layer and only falls back to OCR
// when the layer is empty.
func (p *Profiler) isScanned(ctx context.Context, firstPage, path string) (bool, error) {
	if strings.TrimSpace(firstPage) != "" {
		return false, nil
	}
	png, err := p.raster.RenderPage(ctx, path, 1)
	if err != nil {
		return false, fmt.Errorf("failed to rasterize first page: %w", err)
	}
	text, err := p.ocr.Recognize(ctx, png)
	if err != nil {
		return false, fmt.Errorf("failed to OCR first page: %w", err)
	}
	return utf8.RuneCountInString(strings.TrimSpace(text)) < ScannedOCRThreshold, nil
}

func (p *Profiler) containsFinancialTables(ctx context.Context, path string) (bool, error) {
	tables, err := p.tables.DetectTables(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to detect tables: %w", err)
	}
	for _, table := range tables {
		if containsAny(joinTable(table), FinancialKeywords) {
			return true, nil
		}
	}
	return false, nil
}

func joinTable(t pdf.Table) string {
	rows := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		rows = append(rows, strings.ToLower(strings.Join(row, " ")))
	}
	return strings.Join(rows, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
