package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Lllllllleong/documentrouter/internal/backends"
	"github.com/Lllllllleong/documentrouter/internal/gcp"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

// Config holds all configuration for the document router.
type Config struct {
	Port         string
	UploadDir    string
	UploadBucket string

	ProjectID      string
	VertexAIRegion string
	GeminiModel    string

	LlamaModel     string
	SmallModel     string
	SmallMaxTokens int

	FirestoreEnabled    bool
	FirestoreCollection string

	WorkflowID       string
	WorkflowLocation string

	Tools pdf.ToolsConfig

	StagePause         time.Duration
	StatusPollInterval time.Duration
	BackendTimeout     time.Duration
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                gcp.GetEnv("PORT", "8000"),
		UploadDir:           gcp.GetEnv("UPLOAD_DIR", "uploads"),
		UploadBucket:        gcp.GetEnv("UPLOAD_BUCKET", ""),
		ProjectID:           gcp.GetEnv("PROJECT_ID", ""),
		VertexAIRegion:      gcp.GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:         gcp.GetEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LlamaModel:          gcp.GetEnv("LLAMA_MODEL", backends.DefaultLlamaModel),
		SmallModel:          gcp.GetEnv("SMALL_MODEL", backends.DefaultSmallModel),
		FirestoreCollection: gcp.GetEnv("FIRESTORE_COLLECTION", "documents"),
		WorkflowID:          gcp.GetEnv("WORKFLOW_ID", ""),
		WorkflowLocation:    gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		Tools: pdf.ToolsConfig{
			Pdftotext:     gcp.GetEnv("PDFTOTEXT", "pdftotext"),
			Pdftoppm:      gcp.GetEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     gcp.GetEnv("TESSERACT", "tesseract"),
			TesseractLang: gcp.GetEnv("TESSERACT_LANG", "eng"),
		},
	}

	var err error
	if cfg.SmallMaxTokens, err = envInt("SMALL_MAX_TOKENS", backends.DefaultSmallMaxTokens); err != nil {
		return nil, err
	}
	if cfg.Tools.DPI, err = envInt("OCR_DPI", 300); err != nil {
		return nil, err
	}
	if cfg.FirestoreEnabled, err = envBool("FIRESTORE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.StagePause, err = envDuration("STAGE_PAUSE", 0); err != nil {
		return nil, err
	}
	if cfg.StatusPollInterval, err = envDuration("STATUS_POLL_INTERVAL", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.BackendTimeout, err = envDuration("BACKEND_TIMEOUT", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an error for the first unusable setting.
func (c *Config) Validate() error {
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.StatusPollInterval <= 0 {
		return fmt.Errorf("STATUS_POLL_INTERVAL must be positive, got %s", c.StatusPollInterval)
	}
	if c.Tools.DPI <= 0 {
		return fmt.Errorf("OCR_DPI must be positive, got %d", c.Tools.DPI)
	}
	if c.StagePause < 0 || c.BackendTimeout < 0 {
		return fmt.Errorf("STAGE_PAUSE and BACKEND_TIMEOUT must not be negative")
	}
	if c.FirestoreEnabled && c.ProjectID == "" {
		return fmt.Errorf("FIRESTORE_ENABLED requires PROJECT_ID")
	}
	if c.WorkflowID != "" && c.ProjectID == "" {
		return fmt.Errorf("WORKFLOW_ID requires PROJECT_ID")
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := gcp.GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}
