// Package config provides configuration loading for img-compare.
// Values come from a YAML file layered over DefaultConfig.
package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"img-compare/pkg/colorutil"
)

const (
	appDir     = "img-compare"
	configFile = "config.yaml"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Canvas controls the render target used by the CLI and the initial window.
	Canvas struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// Background is a hex color painted before regions are drawn.
		// Empty means the canvas is cleared to transparent.
		Background string `yaml:"background"`
	} `yaml:"canvas"`

	Zoom struct {
		// WheelSensitivity is the zoom change per wheel delta unit at pixel ratio 1.
		WheelSensitivity float64 `yaml:"wheelSensitivity"`
	} `yaml:"zoom"`

	Decode struct {
		// MaxConcurrent bounds the number of images decoded at once.
		MaxConcurrent int `yaml:"maxConcurrent"`
	} `yaml:"decode"`

	Import struct {
		APIBase  string `yaml:"apiBase"`
		ClientID string `yaml:"clientId"`

		// TimeoutSeconds applies to each HTTP request.
		TimeoutSeconds int `yaml:"timeoutSeconds"`

		// RestoreLastAlbum re-imports the last album at startup.
		RestoreLastAlbum bool `yaml:"restoreLastAlbum"`
	} `yaml:"import"`

	Watch struct {
		// Enabled reloads images opened from disk when they change.
		Enabled bool `yaml:"enabled"`
	} `yaml:"watch"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Canvas.Width = 1280
	cfg.Canvas.Height = 720
	cfg.Canvas.Background = "#f8fafc"

	cfg.Zoom.WheelSensitivity = 0.001

	cfg.Decode.MaxConcurrent = runtime.NumCPU()

	cfg.Import.APIBase = "https://api.imgur.com/3"
	cfg.Import.TimeoutSeconds = 30
	cfg.Import.RestoreLastAlbum = true

	cfg.Watch.Enabled = true

	return cfg
}

// DefaultPath returns ~/.config/img-compare/config.yaml (or the platform equivalent).
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, configFile)
}

// Load loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to a YAML file, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the application cannot work with.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Zoom.WheelSensitivity <= 0 {
		return fmt.Errorf("invalid wheel sensitivity %v", c.Zoom.WheelSensitivity)
	}
	if c.Decode.MaxConcurrent < 1 {
		c.Decode.MaxConcurrent = 1
	}
	if c.Import.TimeoutSeconds <= 0 {
		return fmt.Errorf("invalid import timeout %d", c.Import.TimeoutSeconds)
	}
	if c.Canvas.Background != "" {
		if _, err := colorutil.ParseHex(c.Canvas.Background); err != nil {
			return fmt.Errorf("invalid canvas background: %w", err)
		}
	}
	return nil
}

// ImportTimeout returns the per-request import timeout.
func (c *Config) ImportTimeout() time.Duration {
	return time.Duration(c.Import.TimeoutSeconds) * time.Second
}

// BackgroundColor returns the parsed canvas background, or transparent when
// none is configured.
func (c *Config) BackgroundColor() color.Color {
	if c.Canvas.Background == "" {
		return colorutil.Transparent
	}
	col, err := colorutil.ParseHex(c.Canvas.Background)
	if err != nil {
		return colorutil.Transparent
	}
	return col
}
