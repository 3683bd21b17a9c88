package config

import "testing"

func minimalValidConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Driver: "sqlite3", URL: "./data/wazmeow.db"},
		Log:      LogConfig{Level: "info", Output: "console", ConsoleFormat: "console", FileFormat: "json"},
		Runtime:  RuntimeConfig{StorageMode: "file"},
	}
}

func TestValidate_AcceptsKnownStorageModes(t *testing.T) {
	for _, mode := range []string{"file", "mongodb"} {
		cfg := minimalValidConfig()
		cfg.Runtime.StorageMode = mode
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected %q to be a valid storage mode, got error: %v", mode, err)
		}
	}
}

func TestValidate_RejectsUnknownStorageMode(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Runtime.StorageMode = "dynamodb"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an unknown storage mode to fail validation")
	}
}

func TestLoad_RuntimeDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("PLUGIN_AUTO_RELOAD", "")
	t.Setenv("WHATSAPP_CHANNEL_JID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	if cfg.Runtime.StorageMode != "file" {
		t.Errorf("expected default storage mode 'file', got %q", cfg.Runtime.StorageMode)
	}
	if !cfg.Runtime.PluginAutoReload {
		t.Error("expected plugin auto-reload to default to true")
	}
}
