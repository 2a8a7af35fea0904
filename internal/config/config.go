// Package config loads the editor configuration from
// ~/.config/mask/config.yaml with MASK_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultLayerURL is the hosted masking area layer.
	DefaultLayerURL = "https://services.arcgis.com/2JyTvMWQSnM2Vi8q/arcgis/rest/services/Geos_mask_layer/FeatureServer/0"

	configFile = "config.yaml"
)

// Store schemes accepted in Config.Store.
const (
	StoreArcGIS = "arcgis"
	StoreSQLite = "sqlite"
)

// MapConfig is the initial map view.
type MapConfig struct {
	WKID    int     `yaml:"wkid"`
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Zoom    int     `yaml:"zoom"`
	// GridSpacing is the basemap graticule spacing in map units.
	GridSpacing float64 `yaml:"grid_spacing"`
}

// Config is the editor configuration.
type Config struct {
	// Store is "arcgis" or "sqlite:<path>".
	Store     string        `yaml:"store"`
	LayerURL  string        `yaml:"layer_url"`
	Token     string        `yaml:"token"`
	MaskLayer string        `yaml:"mask_layer"`
	Timeout   time.Duration `yaml:"timeout"`
	Map       MapConfig     `yaml:"map"`

	LogLevel  string `yaml:"log_level"`  // debug, info (default), warn, error
	LogFormat string `yaml:"log_format"` // json (default) or text
	LogFile   string `yaml:"log_file"`

	// Keys maps "context:key" to a command id.
	Keys map[string]string `yaml:"keys"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store:     StoreArcGIS,
		LayerURL:  DefaultLayerURL,
		MaskLayer: "masks",
		Timeout:   30 * time.Second,
		Map: MapConfig{
			WKID:        25833,
			CenterX:     262907.973,
			CenterY:     6651051.723,
			Zoom:        12,
			GridSpacing: 1000,
		},
		LogLevel:  "info",
		LogFormat: "json",
		Keys:      map[string]string{},
	}
}

// Dir returns the configuration directory, MASK_CONFIG_DIR or
// ~/.config/mask.
func Dir() (string, error) {
	if d := os.Getenv("MASK_CONFIG_DIR"); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "mask"), nil
}

// Path returns the configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration file, if any, then applies environment
// overrides.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads path over the defaults. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Keys == nil {
		cfg.Keys = map[string]string{}
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MASK_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("MASK_LAYER_URL"); v != "" {
		cfg.LayerURL = v
	}
	if v := os.Getenv("MASK_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("MASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("MASK_ZOOM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Map.Zoom = n
		}
	}
	if v := os.Getenv("MASK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MASK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("MASK_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

// StoreBackend splits Store into its scheme and sqlite path.
func (c Config) StoreBackend() (scheme, path string) {
	scheme, path, _ = strings.Cut(c.Store, ":")
	return scheme, path
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	scheme, path := c.StoreBackend()
	switch scheme {
	case StoreArcGIS:
		if c.LayerURL == "" {
			return errors.New("layer_url is required for the arcgis store")
		}
	case StoreSQLite:
		if path == "" {
			return errors.New("sqlite store needs a path, e.g. sqlite:masks.db")
		}
	default:
		return fmt.Errorf("unknown store %q (want arcgis or sqlite:<path>)", c.Store)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaskLayer == "" {
		return errors.New("mask_layer is required")
	}
	return nil
}
