package pdf

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/documentrouter/internal/models"
)

// Document is an opened PDF. Page numbers are 1-based.
type Document interface {
	PageCount() int
	// PageText returns the embedded text of a page, or "" when the page has
	// no extractable text layer. An error means the text could not be read.
	PageText(ctx context.Context, pageNr int) (string, error)
	Metadata() models.Metadata
}

// Reader opens PDFs from local paths.
type Reader interface {
	Open(path string) (Document, error)
}

// TextExtractor returns the plain text of pages first..last, one entry per page.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string, first, last int) ([]string, error)
}

// PDFCPUReader reads page count and metadata with pdfcpu in relaxed
// validation mode. Page text comes from Text.
type PDFCPUReader struct {
	Text TextExtractor
}

func (r PDFCPUReader) Open(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfcpuDocument{path: path, ctx: ctx, text: r.Text, pages: map[int]string{}}, nil
}

type pdfcpuDocument struct {
	path  string
	ctx   *model.Context
	text  TextExtractor
	pages map[int]string
	all   bool
}

func (d *pdfcpuDocument) PageCount() int { return d.ctx.PageCount }

// PageText reads page 1 on its own; a miss on any later page loads every
// page in one pdftotext run.
func (d *pdfcpuDocument) PageText(ctx context.Context, pageNr int) (string, error) {
	if pageNr < 1 || pageNr > d.ctx.PageCount || d.text == nil {
		return "", nil
	}
	if txt, ok := d.pages[pageNr]; ok {
		return txt, nil
	}
	first, last := pageNr, pageNr
	if pageNr > 1 && !d.all {
		first, last = 1, d.ctx.PageCount
	}
	texts, err := d.text.ExtractText(ctx, d.path, first, last)
	if err != nil {
		return "", err
	}
	for i, txt := range texts {
		d.pages[first+i] = txt
	}
	if first == 1 && last == d.ctx.PageCount {
		d.all = true
	}
	return d.pages[pageNr], nil
}

func (d *pdfcpuDocument) Metadata() models.Metadata {
	return models.Metadata{
		Title:     orDefault(d.ctx.Title, "Unknown Title"),
		Author:    orDefault(d.ctx.Author, "Unknown Author"),
		Subject:   orDefault(d.ctx.Subject, "Unknown Subject"),
		PageCount: d.ctx.PageCount,
	}
}

// ExtractText runs `pdftotext -f first -l last -enc UTF-8 -eol unix <path> -`.
// pdftotext ends every page with a form feed.
func (t *Tools) ExtractText(ctx context.Context, path string, first, last int) ([]string, error) {
	out, errb, err := t.runner.Run(ctx, t.cfg.Pdftotext,
		"-f", strconv.Itoa(first), "-l", strconv.Itoa(last),
		"-enc", "UTF-8", "-eol", "unix",
		path, "-",
	)
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	pages := strings.Split(string(out), "\f")
	n := last - first + 1
	texts := make([]string, n)
	for i := 0; i < n && i < len(pages); i++ {
		texts[i] = strings.TrimSpace(pages[i])
	}
	return texts, nil
}

// FullText joins every page's text, each preceded by a "--- Page N ---" marker.
func FullText(ctx context.Context, doc Document) (string, error) {
	var b strings.Builder
	for i := 1; i <= doc.PageCount(); i++ {
		txt, err := doc.PageText(ctx, i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		fmt.Fprintf(&b, "\n--- Page %d ---\n", i)
		b.WriteString(txt)
	}
	return b.String(), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
