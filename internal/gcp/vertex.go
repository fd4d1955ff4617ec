package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

const markdownRules = `Format your response in Markdown with the following rules:
1. Use # for main headings and ## for subheadings
2. For tables:
   - Each table must start with a clear title
   - Use proper markdown table format with | and - characters
   - Ensure there's a header row and separator row
   - Example:
     | Header 1 | Header 2 |
     |----------|----------|
     | Data 1   | Data 2   |
3. Use bullet points for lists
4. Use bold (**) for emphasis`

// --- Scanned Document Prompts ---
const ScannedSystemPrompt = "You are a document digitiser. You receive an image of a scanned page and transcribe its structure and content faithfully."
const ScannedUserPrompt = "Extract all tables, the title, and any important information from this document.\n" + markdownRules

// --- Large Document Prompts ---
const LargeSystemPrompt = "You are a document analyst. You receive the full text of a long document and condense it without losing key facts."
const LargeUserPrompt = "Extract key insights, tables, and summaries from the following text.\n" + markdownRules + "\n\nText: %s"

// VertexClient holds the pre-configured Gemini models used by the cloud backend.
type VertexClient struct {
	ScannedModel *genai.GenerativeModel
	LargeModel   *genai.GenerativeModel
	ModelName    string
	baseClient   *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	scannedModel := baseClient.GenerativeModel(modelName)
	scannedModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ScannedSystemPrompt)},
	}
	scannedModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.1),
	}

	largeModel := baseClient.GenerativeModel(modelName)
	largeModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(LargeSystemPrompt)},
	}
	largeModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.2),
	}

	return &VertexClient{
		ScannedModel: scannedModel,
		LargeModel:   largeModel,
		ModelName:    modelName,
		baseClient:   baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
