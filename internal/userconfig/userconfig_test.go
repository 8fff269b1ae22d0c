package userconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath failed: %v", err)
	}
	if cfg.BinDir != "" {
		t.Errorf("BinDir = %q, want empty default", cfg.BinDir)
	}
	if cfg.Tag != "" {
		t.Errorf("Tag = %q, want empty default", cfg.Tag)
	}
}

func TestLoadParsesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `bin_dir = "/opt/orca/bin"
tag = "v1.2.3"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath failed: %v", err)
	}
	if cfg.BinDir != "/opt/orca/bin" {
		t.Errorf("BinDir = %q, want /opt/orca/bin", cfg.BinDir)
	}
	if cfg.Tag != "v1.2.3" {
		t.Errorf("Tag = %q, want v1.2.3", cfg.Tag)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("bin_dir = [broken"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := loadFromPath(path); err == nil {
		t.Error("expected parse error, got nil")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := &Config{BinDir: "/usr/local/bin", Tag: "v2.0.0"}
	if err := cfg.saveToPath(path); err != nil {
		t.Fatalf("saveToPath failed: %v", err)
	}

	loaded, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("loadFromPath failed: %v", err)
	}
	if loaded.BinDir != cfg.BinDir || loaded.Tag != cfg.Tag {
		t.Errorf("round trip mismatch: got %+v, want %+v", loaded, cfg)
	}
}
