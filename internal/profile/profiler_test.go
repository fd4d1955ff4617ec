package profile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

type fakeDoc struct {
	pages   []string
	meta    models.Metadata
	textErr error
}

func (d fakeDoc) PageCount() int { return len(d.pages) }

func (d fakeDoc) PageText(_ context.Context, pageNr int) (string, error) {
	if d.textErr != nil {
		return "", d.textErr
	}
	if pageNr < 1 || pageNr > len(d.pages) {
		return "", nil
	}
	return d.pages[pageNr-1], nil
}

func (d fakeDoc) Metadata() models.Metadata { return d.meta }

type fakeReader struct {
	doc pdf.Document
	err error
}

func (r fakeReader) Open(string) (pdf.Document, error) { return r.doc, r.err }

type fakeRaster struct {
	calls int
	err   error
}

func (r *fakeRaster) RenderPage(context.Context, string, int) ([]byte, error) {
	r.calls++
	return []byte("png"), r.err
}

type fakeOCR struct {
	text string
	err  error
}

func (o fakeOCR) Recognize(context.Context, []byte) (string, error) { return o.text, o.err }

type fakeTables struct {
	tables []pdf.Table
	err    error
}

func (t fakeTables) DetectTables(context.Context, string) ([]pdf.Table, error) { return t.tables, t.err }

var testLogger = slog.New(slog.DiscardHandler)

func TestProfileTextLayerSkipsOCR(t *testing.T) {
	raster := &fakeRaster{}
	doc := fakeDoc{
		pages: []string{"Quarterly notes", "second page"},
		meta:  models.Metadata{Title: "Notes", PageCount: 2},
	}
	p := New(fakeReader{doc: doc}, raster, fakeOCR{}, fakeTables{})

	features, meta, err := p.Profile(context.Background(), testLogger, "notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.Features{PageCount: 2}, features)
	assert.Equal(t, "Notes", meta.Title)
	assert.Zero(t, raster.calls)
}

func TestProfileScannedByOCR(t *testing.T) {
	tests := []struct {
		name    string
		ocr     string
		scanned bool
	}{
		{"no text", "", true},
		{"just below threshold", strings.Repeat("a", ScannedOCRThreshold-1), true},
		{"at threshold", strings.Repeat("a", ScannedOCRThreshold), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raster := &fakeRaster{}
			p := New(fakeReader{doc: fakeDoc{pages: []string{"  "}}}, raster, fakeOCR{text: tt.ocr}, fakeTables{})

			features, _, err := p.Profile(context.Background(), testLogger, "scan.pdf")
			require.NoError(t, err)
			assert.Equal(t, tt.scanned, features.IsScanned)
			assert.Equal(t, 1, raster.calls)
		})
	}
}

func TestProfileFinancialTables(t *testing.T) {
	doc := fakeDoc{pages: []string{"Annual report"}}
	tables := []pdf.Table{
		{Page: 1, Rows: [][]string{{"Name", "Role"}, {"Ann", "CEO"}}},
		{Page: 2, Rows: [][]string{{"TOTAL REVENUE", "1,200"}, {}, {"Costs", "800"}}},
	}
	p := New(fakeReader{doc: doc}, &fakeRaster{}, fakeOCR{}, fakeTables{tables: tables})

	features, _, err := p.Profile(context.Background(), testLogger, "report.pdf")
	require.NoError(t, err)
	assert.True(t, features.ContainsFinancialTables)
}

func TestProfileKeywordsOutsideTablesAreNotFinancial(t *testing.T) {
	doc := fakeDoc{pages: []string{"Revenue grew strongly this year."}}
	tables := []pdf.Table{{Page: 1, Rows: [][]string{{"Name", "Role"}, {"Ann", "CEO"}}}}
	p := New(fakeReader{doc: doc}, &fakeRaster{}, fakeOCR{}, fakeTables{tables: tables})

	features, _, err := p.Profile(context.Background(), testLogger, "letter.pdf")
	require.NoError(t, err)
	assert.False(t, features.ContainsFinancialTables)
}

func TestProfileLegalOnFirstPageOnly(t *testing.T) {
	legal := fakeDoc{pages: []string{"This Agreement is made between the Parties", "appendix"}}
	p := New(fakeReader{doc: legal}, &fakeRaster{}, fakeOCR{}, fakeTables{})
	features, _, err := p.Profile(context.Background(), testLogger, "nda.pdf")
	require.NoError(t, err)
	assert.True(t, features.IsLegalDocument)

	later := fakeDoc{pages: []string{"Cover page", "This contract binds both parties"}}
	p = New(fakeReader{doc: later}, &fakeRaster{}, fakeOCR{}, fakeTables{})
	features, _, err = p.Profile(context.Background(), testLogger, "memo.pdf")
	require.NoError(t, err)
	assert.False(t, features.IsLegalDocument)
}

func TestProfileUnreadable(t *testing.T) {
	p := New(fakeReader{err: errors.New("bad xref")}, &fakeRaster{}, fakeOCR{}, fakeTables{})
	_, _, err := p.Profile(context.Background(), testLogger, "broken.pdf")
	assert.ErrorIs(t, err, models.ErrDocumentUnreadable)
	assert.ErrorContains(t, err, "bad xref")

	p = New(fakeReader{doc: fakeDoc{}}, &fakeRaster{}, fakeOCR{}, fakeTables{})
	_, _, err = p.Profile(context.Background(), testLogger, "empty.pdf")
	assert.ErrorIs(t, err, models.ErrDocumentUnreadable)
}

func TestProfileToolFailures(t *testing.T) {
	scan := fakeDoc{pages: []string{""}}

	p := New(fakeReader{doc: scan}, &fakeRaster{err: errors.New("pdftoppm missing")}, fakeOCR{}, fakeTables{})
	_, _, err := p.Profile(context.Background(), testLogger, "scan.pdf")
	assert.ErrorContains(t, err, "pdftoppm missing")

	p = New(fakeReader{doc: scan}, &fakeRaster{}, fakeOCR{err: errors.New("tesseract crashed")}, fakeTables{})
	_, _, err = p.Profile(context.Background(), testLogger, "scan.pdf")
	assert.ErrorContains(t, err, "tesseract crashed")

	p = New(fakeReader{doc: fakeDoc{pages: []string{"text"}, textErr: errors.New("pdftotext timed out")}}, &fakeRaster{}, fakeOCR{}, fakeTables{})
	_, _, err = p.Profile(context.Background(), testLogger, "doc.pdf")
	assert.ErrorContains(t, err, "pdftotext timed out")

	p = New(fakeReader{doc: fakeDoc{pages: []string{"text"}}}, &fakeRaster{}, fakeOCR{}, fakeTables{err: errors.New("pdftotext missing")})
	_, _, err = p.Profile(context.Background(), testLogger, "doc.pdf")
	assert.ErrorContains(t, err, "pdftotext missing")
}
