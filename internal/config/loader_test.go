package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Chat.PollInterval() != 2*time.Second {
		t.Fatalf("default poll interval = %v, want 2s", cfg.Chat.PollInterval())
	}
	if cfg.API.Timeout() != 30*time.Second {
		t.Fatalf("default timeout = %v, want 30s", cfg.API.Timeout())
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"api":{"baseUrl":"https://crew.example.com","token":"sekrit"},"chat":{"pollIntervalMs":500}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CREWDECK_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://crew.example.com" {
		t.Fatalf("baseUrl = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "sekrit" {
		t.Fatalf("token = %q", cfg.API.Token)
	}
	if cfg.Chat.PollInterval() != 500*time.Millisecond {
		t.Fatalf("poll interval = %v, want 500ms", cfg.Chat.PollInterval())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"api":{"baseUrl":"https://file.example.com"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CREWDECK_CONFIG", path)
	t.Setenv("CREWDECK_API_BASE_URL", "https://env.example.com")
	t.Setenv("CREWDECK_CHAT_POLL_INTERVAL_MS", "1234")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Fatalf("env override lost: baseUrl = %q", cfg.API.BaseURL)
	}
	if cfg.Chat.PollIntervalMs != 1234 {
		t.Fatalf("poll interval ms = %d, want 1234", cfg.Chat.PollIntervalMs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CREWDECK_CONFIG", filepath.Join(t.TempDir(), "nope", "config.json"))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL == "" {
		t.Fatal("defaults not applied")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	t.Setenv("CREWDECK_CONFIG", path)

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://roundtrip.example.com"
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.API.BaseURL != "https://roundtrip.example.com" {
		t.Fatalf("round trip lost baseUrl: %q", loaded.API.BaseURL)
	}
}
