package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Rasterizer renders a single PDF page to PNG bytes.
type Rasterizer interface {
	RenderPage(ctx context.Context, path string, pageNr int) ([]byte, error)
}

// Recognizer runs OCR over a PNG image.
type Recognizer interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

// ToolsConfig names the external binaries used for rasterizing, OCR and
// text extraction.
type ToolsConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
}

func (c ToolsConfig) withDefaults() ToolsConfig {
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.TesseractLang == "" {
		c.TesseractLang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

// Tools implements Rasterizer, Recognizer, TableDetector and TextExtractor
// on top of poppler-utils and tesseract.
type Tools struct {
	cfg    ToolsConfig
	runner Runner
}

func NewTools(cfg ToolsConfig, runner Runner) *Tools {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Tools{cfg: cfg.withDefaults(), runner: runner}
}

// RenderPage runs `pdftoppm -f N -l N -r DPI -png -singlefile <in> <out>`.
func (t *Tools) RenderPage(ctx context.Context, path string, pageNr int) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "docrouter-raster-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	page := strconv.Itoa(pageNr)
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm,
		"-f", page, "-l", page,
		"-r", strconv.Itoa(t.cfg.DPI),
		"-png", "-singlefile",
		path, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}
	png, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image: %w", err)
	}
	return png, nil
}

// Recognize runs `tesseract <img> stdout -l <lang>`.
func (t *Tools) Recognize(ctx context.Context, png []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docrouter-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(png); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, tmp.Name(), "stdout", "-l", t.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
