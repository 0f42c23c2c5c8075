package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := cmp.Diff(DefaultConfig(), cfg); d != "" {
		t.Errorf("config mismatch (-want +got):\n%s", d)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `site:
  public_dir: www
  compiler: tinygo
dev:
  port: 8080
viewer:
  max_scale: 4
  hover_color: "#00ff00"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultConfig()
	want.Site.PublicDir = "www"
	want.Site.Compiler = "tinygo"
	want.Dev.Port = 8080
	want.Viewer.MaxScale = 4
	want.Viewer.HoverColor = "#00ff00"
	if d := cmp.Diff(want, cfg); d != "" {
		t.Errorf("config mismatch (-want +got):\n%s", d)
	}
	if got := cfg.MapPath(); got != filepath.Join("www", "transit-map.svg") {
		t.Errorf("MapPath() = %q", got)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRANSITMAP_DEV__PORT", "9000")
	t.Setenv("TRANSITMAP_SITE__PUBLIC_DIR", "dist")
	t.Setenv("TRANSITMAP_VIEWER__MIN_SCALE", "0.25")

	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dev.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Dev.Port)
	}
	if cfg.Site.PublicDir != "dist" {
		t.Errorf("Expected public dir dist, got %q", cfg.Site.PublicDir)
	}
	if cfg.Viewer.MinScale != 0.25 {
		t.Errorf("Expected min scale 0.25, got %v", cfg.Viewer.MinScale)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("site: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}

	if err := os.WriteFile(path, []byte("viewer:\n  min_scale: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no public dir", func(c *Config) { c.Site.PublicDir = "" }, "public_dir"},
		{"bad compiler", func(c *Config) { c.Site.Compiler = "gccgo" }, "compiler"},
		{"bad port", func(c *Config) { c.Dev.Port = 70000 }, "out of range"},
		{"negative debounce", func(c *Config) { c.Dev.DebounceMS = -1 }, "debounce"},
		{"zero scale", func(c *Config) { c.Viewer.MinScale = 0 }, "positive"},
		{"min above one", func(c *Config) { c.Viewer.MinScale = 1.5 }, "must include 1"},
		{"max below one", func(c *Config) { c.Viewer.MinScale, c.Viewer.MaxScale = 0.25, 0.75 }, "must include 1"},
		{"zero step", func(c *Config) { c.Viewer.ZoomStep = 0 }, "zoom_step"},
		{"zero hover", func(c *Config) { c.Viewer.HoverScale = 0 }, "hover_scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSave_ThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Dev.Port = 4000
	cfg.Viewer.HoverColor = "#123456"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d := cmp.Diff(cfg, loaded); d != "" {
		t.Errorf("config mismatch (-want +got):\n%s", d)
	}
}

func TestHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Debounce(); got != 100*time.Millisecond {
		t.Errorf("Debounce() = %v", got)
	}
	opts := cfg.ViewerOptions()
	if opts.MinScale != 0.5 || opts.MaxScale != 3 || opts.HoverColor != "#ff6b35" {
		t.Errorf("unexpected viewer options: %+v", opts)
	}
	cfg.Viewer.TooltipOffset = 0
	if got := cfg.ViewerOptions().TooltipOffset; got == nil || *got != 0 {
		t.Errorf("Expected tooltip offset 0 to pass through, got %v", got)
	}
	if got := envKey("TRANSITMAP_SITE__WASM_OUTPUT"); got != "site.wasm_output" {
		t.Errorf("envKey() = %q", got)
	}
}
