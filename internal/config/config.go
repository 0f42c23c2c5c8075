// Package config loads transitmap.yaml, the project configuration shared by
// the dev server, the production build and the terminal explorer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/recera/transitmap/pkg/components/mapviewer"
)

// FileName is the configuration file looked up in the project directory
const FileName = "transitmap.yaml"

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: TRANSITMAP_DEV__PORT=9000 sets dev.port.
const EnvPrefix = "TRANSITMAP_"

// Config is the top-level transitmap configuration
type Config struct {
	Site   SiteConfig   `yaml:"site" koanf:"site"`
	Dev    DevConfig    `yaml:"dev" koanf:"dev"`
	Viewer ViewerConfig `yaml:"viewer" koanf:"viewer"`
}

// SiteConfig describes where the site sources and assets live
type SiteConfig struct {
	// Directory served as the site root and copied by `build`
	PublicDir string `yaml:"public_dir" koanf:"public_dir"`
	// SVG map, relative to PublicDir
	MapFile string `yaml:"map_file" koanf:"map_file"`
	// Package compiled to WebAssembly
	ClientMain string `yaml:"client_main" koanf:"client_main"`
	// Output name of the WebAssembly binary, relative to PublicDir
	WasmOutput string `yaml:"wasm_output" koanf:"wasm_output"`
	// Compiler is "go" or "tinygo"
	Compiler string `yaml:"compiler" koanf:"compiler"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	Host            string `yaml:"host" koanf:"host"`
	Port            int    `yaml:"port" koanf:"port"`
	DebounceMS      int    `yaml:"debounce_ms" koanf:"debounce_ms"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// ViewerConfig mirrors mapviewer.Options
type ViewerConfig struct {
	MinScale      float64 `yaml:"min_scale" koanf:"min_scale"`
	MaxScale      float64 `yaml:"max_scale" koanf:"max_scale"`
	ZoomStep      float64 `yaml:"zoom_step" koanf:"zoom_step"`
	HoverScale    float64 `yaml:"hover_scale" koanf:"hover_scale"`
	HoverColor    string  `yaml:"hover_color" koanf:"hover_color"`
	TooltipOffset float64 `yaml:"tooltip_offset" koanf:"tooltip_offset"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			PublicDir:  "public",
			MapFile:    "transit-map.svg",
			ClientMain: "./app/client",
			WasmOutput: "app.wasm",
			Compiler:   "go",
		},
		Dev: DevConfig{
			Host:       "localhost",
			Port:       5173,
			DebounceMS: 100,
		},
		Viewer: ViewerConfig{
			MinScale:      0.5,
			MaxScale:      3.0,
			ZoomStep:      0.2,
			HoverScale:    1.5,
			HoverColor:    "#ff6b35",
			TooltipOffset: 10,
		},
	}
}

// Load reads configuration from the given YAML file, if it exists, then
// overlays TRANSITMAP_* environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads FileName from a project directory
func LoadDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// envKey maps TRANSITMAP_SITE__PUBLIC_DIR to site.public_dir
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, "__", "."))
}

// Save writes the configuration to the given YAML file path
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values
func (c *Config) Validate() error {
	if c.Site.PublicDir == "" {
		return fmt.Errorf("site.public_dir is required")
	}
	if c.Site.ClientMain == "" {
		return fmt.Errorf("site.client_main is required")
	}
	if c.Site.WasmOutput == "" {
		return fmt.Errorf("site.wasm_output is required")
	}
	switch c.Site.Compiler {
	case "go", "tinygo":
	default:
		return fmt.Errorf("invalid site.compiler %q: must be go or tinygo", c.Site.Compiler)
	}

	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("dev.port %d out of range", c.Dev.Port)
	}
	if c.Dev.DebounceMS < 0 {
		return fmt.Errorf("dev.debounce_ms must be non-negative")
	}

	v := c.Viewer
	if v.MinScale <= 0 || v.MaxScale <= 0 {
		return fmt.Errorf("viewer scale bounds must be positive")
	}
	if v.MinScale > v.MaxScale {
		return fmt.Errorf("viewer.min_scale %.2f exceeds viewer.max_scale %.2f", v.MinScale, v.MaxScale)
	}
	// Reset always returns to scale 1
	if v.MinScale > 1 || v.MaxScale < 1 {
		return fmt.Errorf("viewer scale bounds [%.2f, %.2f] must include 1", v.MinScale, v.MaxScale)
	}
	if v.ZoomStep <= 0 {
		return fmt.Errorf("viewer.zoom_step must be positive")
	}
	if v.HoverScale <= 0 {
		return fmt.Errorf("viewer.hover_scale must be positive")
	}
	return nil
}

// Debounce returns the file watcher debounce interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Dev.DebounceMS) * time.Millisecond
}

// MapPath returns the SVG map location on disk
func (c *Config) MapPath() string {
	return filepath.Join(c.Site.PublicDir, c.Site.MapFile)
}

// ViewerOptions converts the viewer section into mapviewer options
func (c *Config) ViewerOptions() *mapviewer.Options {
	return &mapviewer.Options{
		MinScale:      c.Viewer.MinScale,
		MaxScale:      c.Viewer.MaxScale,
		ZoomStep:      c.Viewer.ZoomStep,
		HoverScale:    c.Viewer.HoverScale,
		HoverColor:    c.Viewer.HoverColor,
		TooltipOffset: mapviewer.Offset(c.Viewer.TooltipOffset),
	}
}
