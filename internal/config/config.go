// Package config loads service configuration from an optional YAML file,
// an optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the service reads at startup.
type Config struct {
	Port string `yaml:"port"`

	Chat       ChatConfig       `yaml:"chat"`
	Upload     UploadConfig     `yaml:"upload"`
	Storage    StorageConfig    `yaml:"storage"`
	Processing ProcessingConfig `yaml:"processing"`
	Templates  TemplateConfig   `yaml:"templates"`
	Logging    LoggingConfig    `yaml:"logging"`

	ProjectID      string `yaml:"project_id"`
	VertexAIRegion string `yaml:"vertex_ai_region"`
}

// ChatConfig configures the primary backend and the secondary hosted provider.
type ChatConfig struct {
	BackendURL        string        `yaml:"backend_url"`
	BackendTimeout    time.Duration `yaml:"backend_timeout"`
	SecondaryProvider string        `yaml:"secondary_provider"` // openai, gemini, vertex, none
	HostedAPIKey      string        `yaml:"-"`
	HostedBaseURL     string        `yaml:"hosted_base_url"`
	HostedModel       string        `yaml:"hosted_model"`
	GeminiAPIKey      string        `yaml:"-"`
	GeminiModel       string        `yaml:"gemini_model"`
	VertexModel       string        `yaml:"vertex_model"`
}

// UploadConfig bounds the upload proxy.
type UploadConfig struct {
	MaxBytes    int64 `yaml:"max_bytes"`
	PDFMaxPages int   `yaml:"pdf_max_pages"`
	Concurrency int   `yaml:"concurrency"`
}

// StorageConfig selects optional persistence.
type StorageConfig struct {
	Recorder            string `yaml:"recorder"` // none, firestore, sqlite
	SQLitePath          string `yaml:"sqlite_path"`
	FirestoreCollection string `yaml:"firestore_collection"`
	ArchiveBucket       string `yaml:"archive_bucket"`
	TemplateCollection  string `yaml:"template_collection"`
}

// ProcessingConfig selects how uploaded documents are summarised.
type ProcessingConfig struct {
	Mode             string `yaml:"mode"` // local, workflow
	WorkflowID       string `yaml:"workflow_id"`
	WorkflowLocation string `yaml:"workflow_location"`
}

// TemplateConfig points at a template field mapping to use instead of the built-in one.
type TemplateConfig struct {
	MappingPath string `yaml:"mapping_path"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Port: "8080",
		Chat: ChatConfig{
			BackendURL:        "http://localhost:8000",
			BackendTimeout:    30 * time.Second,
			SecondaryProvider: "openai",
			HostedBaseURL:     "https://integrate.api.nvidia.com/v1",
			HostedModel:       "nvidia/llama-3.3-nemotron-super-49b-v1",
			GeminiModel:       "gemini-2.5-flash",
			VertexModel:       "gemini-1.5-pro",
		},
		Upload: UploadConfig{
			MaxBytes:    32 << 20,
			PDFMaxPages: 50,
			Concurrency: 8,
		},
		Storage: StorageConfig{
			Recorder:            "none",
			SQLitePath:          "legalassistant.db",
			FirestoreCollection: "documents",
			TemplateCollection:  "templates",
		},
		Processing: ProcessingConfig{
			Mode:             "local",
			WorkflowID:       "document-summary-orchestrator",
			WorkflowLocation: "us-central1",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		VertexAIRegion: "us-central1",
	}
}

// Load reads the YAML file at path (a missing file is not an error), loads a
// .env file from the working directory when one exists, and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func (c *Config) applyEnvOverrides() error {
	c.Port = GetEnv("PORT", c.Port)

	c.Chat.BackendURL = GetEnv("BACKEND_URL", c.Chat.BackendURL)
	c.Chat.SecondaryProvider = GetEnv("SECONDARY_PROVIDER", c.Chat.SecondaryProvider)
	c.Chat.HostedAPIKey = GetEnv("HOSTED_API_KEY", c.Chat.HostedAPIKey)
	c.Chat.HostedBaseURL = GetEnv("HOSTED_BASE_URL", c.Chat.HostedBaseURL)
	c.Chat.HostedModel = GetEnv("HOSTED_MODEL", c.Chat.HostedModel)
	c.Chat.GeminiAPIKey = GetEnv("GEMINI_API_KEY", c.Chat.GeminiAPIKey)
	c.Chat.GeminiModel = GetEnv("GEMINI_MODEL", c.Chat.GeminiModel)
	c.Chat.VertexModel = GetEnv("VERTEX_MODEL", c.Chat.VertexModel)
	if v := GetEnv("BACKEND_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_TIMEOUT %q: %w", v, err)
		}
		c.Chat.BackendTimeout = d
	}

	if v := GetEnv("UPLOAD_MAX_BYTES", ""); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid UPLOAD_MAX_BYTES %q", v)
		}
		c.Upload.MaxBytes = n
	}
	if v := GetEnv("PDF_MAX_PAGES", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid PDF_MAX_PAGES %q", v)
		}
		c.Upload.PDFMaxPages = n
	}

	c.Storage.Recorder = GetEnv("RECORDER", c.Storage.Recorder)
	c.Storage.SQLitePath = GetEnv("SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.FirestoreCollection = GetEnv("FIRESTORE_COLLECTION", c.Storage.FirestoreCollection)
	c.Storage.ArchiveBucket = GetEnv("ARCHIVE_BUCKET", c.Storage.ArchiveBucket)
	c.Storage.TemplateCollection = GetEnv("TEMPLATE_COLLECTION", c.Storage.TemplateCollection)

	c.Processing.Mode = GetEnv("PROCESSING_MODE", c.Processing.Mode)
	c.Processing.WorkflowID = GetEnv("WORKFLOW_ID", c.Processing.WorkflowID)
	c.Processing.WorkflowLocation = GetEnv("WORKFLOW_LOCATION", c.Processing.WorkflowLocation)

	c.Templates.MappingPath = GetEnv("TEMPLATE_MAPPING", c.Templates.MappingPath)

	c.Logging.Level = GetEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = GetEnv("LOG_FORMAT", c.Logging.Format)

	c.ProjectID = GetEnv("PROJECT_ID", c.ProjectID)
	c.VertexAIRegion = GetEnv("VERTEX_AI_REGION", c.VertexAIRegion)

	return c.validate()
}

func (c *Config) validate() error {
	switch c.Chat.SecondaryProvider {
	case "openai", "gemini", "vertex", "none":
	default:
		return fmt.Errorf("unknown SECONDARY_PROVIDER %q", c.Chat.SecondaryProvider)
	}
	switch c.Storage.Recorder {
	case "none", "firestore", "sqlite":
	default:
		return fmt.Errorf("unknown RECORDER %q", c.Storage.Recorder)
	}
	switch c.Processing.Mode {
	case "local", "workflow":
	default:
		return fmt.Errorf("unknown PROCESSING_MODE %q", c.Processing.Mode)
	}
	if c.Processing.Mode == "workflow" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set for workflow processing")
	}
	if c.Processing.Mode == "workflow" && c.Storage.ArchiveBucket == "" {
		return fmt.Errorf("ARCHIVE_BUCKET must be set for workflow processing")
	}
	if c.Storage.Recorder == "firestore" && c.ProjectID == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set for the firestore recorder")
	}
	return nil
}
