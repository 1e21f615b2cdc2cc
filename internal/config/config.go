package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Default model assignments. Extraction and summarization run on the cheaper
// model; full PRD generation uses the larger one.
const (
	defaultChatModel    = "gpt-4.1-mini"
	defaultExtractModel = "gpt-4.1-mini"
	defaultExportModel  = "gpt-4.1"
)

type Config struct {
	OpenAIAPIKey string

	ChatModel    string
	ExtractModel string
	ExportModel  string

	Port    string
	DataDir string

	LogLevel  string
	LogPretty bool
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		ChatModel:    os.Getenv("CHAT_MODEL"),
		ExtractModel: os.Getenv("EXTRACT_MODEL"),
		ExportModel:  os.Getenv("EXPORT_MODEL"),
		Port:         os.Getenv("PORT"),
		DataDir:      os.Getenv("DATA_DIR"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		LogPretty:    os.Getenv("LOG_PRETTY") == "1",
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}

	if cfg.ExtractModel == "" {
		cfg.ExtractModel = defaultExtractModel
	}

	if cfg.ExportModel == "" {
		cfg.ExportModel = defaultExportModel
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for _, req := range []struct {
		name, val string
	}{
		{"OPENAI_API_KEY", cfg.OpenAIAPIKey},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}
