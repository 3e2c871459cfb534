package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fieldservice/reportgen/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Listen != ":8080" {
		t.Fatalf("listen default: %q", cfg.Server.Listen)
	}
	if cfg.Level() != logrus.InfoLevel {
		t.Fatalf("level default: %v", cfg.Level())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
api:
  base_url: https://api.example.test
  token: secret
server:
  listen: ":9090"
report:
  letterhead_path: /srv/letterhead.png
log_level: debug
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.BaseURL != "https://api.example.test" {
		t.Fatalf("base url: %q", cfg.API.BaseURL)
	}
	if cfg.Server.Listen != ":9090" {
		t.Fatalf("listen: %q", cfg.Server.Listen)
	}
	if cfg.Report.LetterheadPath != "/srv/letterhead.png" {
		t.Fatalf("letterhead: %q", cfg.Report.LetterheadPath)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Fatalf("level: %v", cfg.Level())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("missing file must error")
	}
}

func TestLoadBadLevelFallsBack(t *testing.T) {
	cfg := &config.Config{LogLevel: "verbose"}
	if cfg.Level() != logrus.InfoLevel {
		t.Fatalf("bad level should fall back to info, got %v", cfg.Level())
	}
}
