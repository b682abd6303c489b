package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HERBAL_CATALOG", "HERBAL_DB", "HERBAL_POSTGRES_DSN", "HERBAL_USER", "HERBAL_CAPTURE_CMD"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Store.Driver != "sqlite" || cfg.UI.DefaultMode != "disease" || cfg.UI.CardDiseases != 4 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Catalog.Timeout != 30*time.Second {
		t.Errorf("catalog timeout = %v", cfg.Catalog.Timeout)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
catalog:
  source: s3://herbs/plants.yaml
  timeout: 5s
  s3:
    region: ap-south-1
    path_style: true
capture:
  command: whisper-listen --once
ui:
  default_mode: plant
  dark: true
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Catalog.Source != "s3://herbs/plants.yaml" || cfg.Catalog.Timeout != 5*time.Second {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Catalog.S3.Region != "ap-south-1" || !cfg.Catalog.S3.PathStyle {
		t.Errorf("s3 = %+v", cfg.Catalog.S3)
	}
	if cfg.Capture.Command != "whisper-listen --once" {
		t.Errorf("capture = %+v", cfg.Capture)
	}
	if cfg.UI.DefaultMode != "plant" || !cfg.UI.Dark || cfg.UI.CardDiseases != 4 {
		t.Errorf("ui = %+v", cfg.UI)
	}
	if cfg.API.Addr != "127.0.0.1:8080" {
		t.Errorf("untouched default lost: %q", cfg.API.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HERBAL_CATALOG", "https://example.org/plants.json")
	t.Setenv("HERBAL_POSTGRES_DSN", "postgres://localhost/herbal")
	t.Setenv("HERBAL_USER", "asha")
	t.Setenv("HERBAL_CAPTURE_CMD", "stt")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Catalog.Source != "https://example.org/plants.json" {
		t.Errorf("source = %q", cfg.Catalog.Source)
	}
	if cfg.Store.Driver != "postgres" || cfg.Store.DSN != "postgres://localhost/herbal" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.User != "asha" || cfg.Capture.Command != "stt" {
		t.Errorf("user/capture = %q %q", cfg.User, cfg.Capture.Command)
	}
}

func TestValidateRejects(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"driver":   "store:\n  driver: mongo\n",
		"postgres": "store:\n  driver: postgres\n",
		"mode":     "ui:\n  default_mode: herb\n",
		"yaml":     "ui: [",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(data), 0644)
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Catalog.Source = "plants.xlsx"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "plants.xlsx") {
		t.Errorf("saved:\n%s", data)
	}
	back, err := LoadFile(path)
	if err != nil || back.Catalog.Source != "plants.xlsx" {
		t.Errorf("reload = %+v, %v", back, err)
	}
}
