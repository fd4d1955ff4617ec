package backends

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

// Model names reported in results from the local strategies.
const (
	ModelLlama     = "Llama 3.2"
	ModelTinyLlama = "TinyLlama"
)

const (
	DefaultLlamaModel     = "llama3.2"
	DefaultSmallModel     = "tinyllama"
	DefaultSmallMaxTokens = 300
)

// LocalGenerator is the part of *api.Client the Ollama backend uses.
type LocalGenerator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

// Ollama runs the Financial, Legal, Small and Default strategies and answers
// questions against locally hosted models.
type Ollama struct {
	Client         LocalGenerator
	Reader         pdf.Reader
	LlamaModel     string
	SmallModel     string
	SmallMaxTokens int
	Logger         *slog.Logger
}

func (o *Ollama) ExtractFinancial(ctx context.Context, path string) (*models.ExtractionResult, error) {
	return o.extract(ctx, path, FinancialPrompt)
}

func (o *Ollama) ExtractLegal(ctx context.Context, path string) (*models.ExtractionResult, error) {
	return o.extract(ctx, path, LegalPrompt)
}

func (o *Ollama) ExtractGeneral(ctx context.Context, path string) (*models.ExtractionResult, error) {
	return o.extract(ctx, path, GeneralPrompt)
}

// ExtractSmall summarizes short documents with the small model. The small
// model tends to echo its prompt, which is removed from the answer.
func (o *Ollama) ExtractSmall(ctx context.Context, path string) (*models.ExtractionResult, error) {
	text, err := o.documentText(ctx, path)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(SmallPrompt, text)
	maxTokens := o.SmallMaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultSmallMaxTokens
	}
	out, err := o.generate(ctx, orDefault(o.SmallModel, DefaultSmallModel), "", prompt, map[string]any{
		"num_predict": maxTokens,
	})
	if err != nil {
		return classify(ModelTinyLlama, err)
	}
	return &models.ExtractionResult{
		Success: true,
		Model:   ModelTinyLlama,
		Data:    strings.TrimSpace(strings.ReplaceAll(out, prompt, "")),
	}, nil
}

// Ask answers question from the extracted content of a processed document.
func (o *Ollama) Ask(ctx context.Context, content, question string) (string, string, error) {
	prompt := fmt.Sprintf(askPrompt, content, question)
	out, err := o.generate(ctx, orDefault(o.LlamaModel, DefaultLlamaModel), AskSystemPrompt, prompt, nil)
	if err != nil {
		return "", ModelLlama, fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(out), ModelLlama, nil
}

func (o *Ollama) extract(ctx context.Context, path, template string) (*models.ExtractionResult, error) {
	text, err := o.documentText(ctx, path)
	if err != nil {
		return nil, err
	}
	out, err := o.generate(ctx, orDefault(o.LlamaModel, DefaultLlamaModel), "", fmt.Sprintf(template, text), nil)
	if err != nil {
		return classify(ModelLlama, err)
	}
	return &models.ExtractionResult{
		Success: true,
		Model:   ModelLlama,
		Data:    strings.TrimSpace(out),
	}, nil
}

func (o *Ollama) documentText(ctx context.Context, path string) (string, error) {
	doc, err := o.Reader.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	return pdf.FullText(ctx, doc)
}

// generate runs a single non-streaming completion.
func (o *Ollama) generate(ctx context.Context, model, system, prompt string, options map[string]any) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:     model,
		System:    system,
		Prompt:    prompt,
		Stream:    &stream,
		Options:   options,
		KeepAlive: &api.Duration{Duration: 30 * time.Minute},
	}

	start := time.Now()
	var sb strings.Builder
	err := o.Client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err != nil {
		logger.Error("Ollama generate failed.", "model", model, "duration", time.Since(start), "error", err)
		return "", err
	}
	logger.Debug("Ollama generate finished.", "model", model, "duration", time.Since(start), "chars", sb.Len())
	return sb.String(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
