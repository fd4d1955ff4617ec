// Package backends holds the functions bound to each routing decision: the
// Gemini vision and long-text strategies and the Ollama-hosted local models.
package backends

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

// Model names reported in results from the Gemini strategies.
const (
	ModelGeminiScanned = "gemini-scanned"
	ModelGeminiLarge   = "gemini-large"
)

// Generator is the part of *genai.GenerativeModel the Gemini backend uses.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini runs the Scanned and Large strategies against Vertex AI.
type Gemini struct {
	Scanned Generator
	Large   Generator
	Reader  pdf.Reader
	Raster  pdf.Rasterizer
	Logger  *slog.Logger
}

// NewGemini binds the models of a VertexClient.
func NewGemini(vc *gcp.VertexClient, reader pdf.Reader, raster pdf.Rasterizer, logger *slog.Logger) *Gemini {
	return &Gemini{
		Scanned: vc.ScannedModel,
		Large:   vc.LargeModel,
		Reader:  reader,
		Raster:  raster,
		Logger:  logger,
	}
}

// ExtractScanned renders the first page and asks the vision model to
// transcribe it.
func (g *Gemini) ExtractScanned(ctx context.Context, path string) (*models.ExtractionResult, error) {
	png, err := g.Raster.RenderPage(ctx, path, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to render first page: %w", err)
	}
	resp, err := g.Scanned.GenerateContent(ctx, genai.ImageData("png", png), genai.Text(gcp.ScannedUserPrompt))
	if err != nil {
		g.logger().Error("Vertex AI call failed.", "model", ModelGeminiScanned, "error", err)
		return classify(ModelGeminiScanned, err)
	}
	return &models.ExtractionResult{
		Success: true,
		Model:   ModelGeminiScanned,
		Data:    g.responseText(resp),
	}, nil
}

// ExtractLarge sends the full text of the document in one request.
func (g *Gemini) ExtractLarge(ctx context.Context, path string) (*models.ExtractionResult, error) {
	doc, err := g.Reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	text, err := pdf.FullText(ctx, doc)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(gcp.LargeUserPrompt, text)
	resp, err := g.Large.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		g.logger().Error("Vertex AI call failed.", "model", ModelGeminiLarge, "error", err)
		return classify(ModelGeminiLarge, err)
	}
	return &models.ExtractionResult{
		Success: true,
		Model:   ModelGeminiLarge,
		Data:    g.responseText(resp),
	}, nil
}

// responseText concatenates the text parts of the first candidate and strips
// a surrounding markdown fence.
func (g *Gemini) responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	var textParts int
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			textParts++
		}
	}
	if textParts > 1 {
		g.logger().Warn("Gemini response contained multiple text parts; they have been concatenated.", "parts", textParts)
	}

	content := strings.TrimSpace(sb.String())
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func (g *Gemini) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}

// Unconfigured stands in for a strategy whose backend has no credentials. It
// always reports a failed result naming model.
func Unconfigured(model, reason string) func(context.Context, string) (*models.ExtractionResult, error) {
	return func(context.Context, string) (*models.ExtractionResult, error) {
		return &models.ExtractionResult{Success: false, Model: model, Error: reason}, nil
	}
}
