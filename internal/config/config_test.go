package config

import "testing"

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with no OPENAI_API_KEY should fail")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("CHAT_MODEL", "")
	t.Setenv("EXTRACT_MODEL", "")
	t.Setenv("EXPORT_MODEL", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	checks := []struct {
		name, got, want string
	}{
		{"Port", cfg.Port, "8080"},
		{"DataDir", cfg.DataDir, "."},
		{"ChatModel", cfg.ChatModel, "gpt-4.1-mini"},
		{"ExtractModel", cfg.ExtractModel, "gpt-4.1-mini"},
		{"ExportModel", cfg.ExportModel, "gpt-4.1"},
		{"LogLevel", cfg.LogLevel, "info"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EXTRACT_MODEL", "gpt-4.1")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ExtractModel != "gpt-4.1" {
		t.Errorf("ExtractModel = %q, want gpt-4.1", cfg.ExtractModel)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
}
