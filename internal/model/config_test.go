package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("loading missing config: %v", err)
	}

	if cfg.Server.TimeoutSec != 15 {
		t.Errorf("expected default timeout 15, got %d", cfg.Server.TimeoutSec)
	}
	if cfg.Display.WindowDays != 7 {
		t.Errorf("expected default window 7, got %d", cfg.Display.WindowDays)
	}
	if cfg.Storage.GuestDBPath == "" {
		t.Error("expected default guest db path")
	}
}

func TestLoadConfigReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  base_url: https://example.supabase.co
  anon_key: public-key
display:
  window_days: 30
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Server.BaseURL != "https://example.supabase.co" {
		t.Errorf("unexpected base url %q", cfg.Server.BaseURL)
	}
	if cfg.Display.WindowDays != 30 {
		t.Errorf("expected window 30, got %d", cfg.Display.WindowDays)
	}
	// Unset keys keep their defaults.
	if cfg.Server.TimeoutSec != 15 {
		t.Errorf("expected default timeout 15, got %d", cfg.Server.TimeoutSec)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		Server:  ServerConfig{BaseURL: "https://example.supabase.co", AnonKey: "k", TimeoutSec: 20},
		Display: DisplayConfig{Theme: "default", WindowDays: 14},
		Storage: StorageConfig{GuestDBPath: "/tmp/guest.db"},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("saving config: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reloading config: %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL ||
		loaded.Display.WindowDays != cfg.Display.WindowDays {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
