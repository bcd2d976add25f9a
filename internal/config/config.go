package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "karaoke.yaml"

// settings for a karaoke build, read from YAML
type Config struct {
	Style       StyleConfig       `yaml:"style"`
	Layout      LayoutConfig      `yaml:"layout"`
	Timing      TimingConfig      `yaml:"timing"`
	Autocorrect AutocorrectConfig `yaml:"autocorrect"`
	Translate   TranslateConfig   `yaml:"translate"`
	Log         LogConfig         `yaml:"log"`

	configFilePath string
}

// look of the karaoke text
type StyleConfig struct {
	FontName       string `yaml:"font_name"`
	FontSize       int    `yaml:"font_size"`
	PrimaryColor   string `yaml:"primary_color"`
	SecondaryColor string `yaml:"secondary_color"`
	Bold           bool   `yaml:"bold"`
	Alignment      int    `yaml:"alignment"`
	MarginV        int    `yaml:"margin_v"`
	ScaleX         int    `yaml:"scale_x"`
	ScaleY         int    `yaml:"scale_y"`
	Spacing        int    `yaml:"spacing"`
	Encoding       int    `yaml:"encoding"`
}

type LayoutConfig struct {
	PlayResX int `yaml:"play_res_x"`
	PlayResY int `yaml:"play_res_y"`
	// top, middle or bottom
	VerticalAlignment string `yaml:"vertical_alignment"`
	// overrides the alignment when positive
	FirstLineTopMargin int `yaml:"first_line_top_margin"`
}

type TimingConfig struct {
	ScreenGap time.Duration `yaml:"screen_gap"`
	CountIn   CountInConfig `yaml:"count_in"`
}

type CountInConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Threshold time.Duration `yaml:"threshold"`
	Duration  time.Duration `yaml:"duration"`
	Text      string        `yaml:"text"`
}

// vocal onset detection on the vocal stem
type AutocorrectConfig struct {
	Enabled bool `yaml:"enabled"`
	// level below which audio counts as silence
	NoiseDB    float64       `yaml:"noise_db"`
	MinSilence time.Duration `yaml:"min_silence"`
}

type TranslateConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	BatchSize   int    `yaml:"batch_size"`
	Concurrency int    `yaml:"concurrency"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Default() *Config {
	c := &Config{}

	c.Style.FontName = "Arial Narrow"
	c.Style.FontSize = 20
	c.Style.PrimaryColor = "#FF00FF"
	c.Style.SecondaryColor = "#00FFFF"
	c.Style.Bold = true
	c.Style.Alignment = 8
	c.Style.MarginV = 20
	c.Style.ScaleX = 100
	c.Style.ScaleY = 100

	c.Layout.PlayResX = 400
	c.Layout.PlayResY = 320
	c.Layout.VerticalAlignment = "middle"

	c.Timing.ScreenGap = 100 * time.Millisecond
	c.Timing.CountIn.Threshold = 5 * time.Second
	c.Timing.CountIn.Duration = 3 * time.Second
	c.Timing.CountIn.Text = "●●● "

	c.Autocorrect.NoiseDB = -60
	c.Autocorrect.MinSilence = time.Second

	c.Translate.Provider = "gemini"
	c.Translate.BatchSize = 50
	c.Translate.Concurrency = 3

	c.Log.MaxSizeMB = 10
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28

	return c
}

// Load reads the YAML file at path over the defaults. An empty path means
// DefaultPath, which may be absent; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// fields missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.configFilePath = path
	cfg.normalize()

	return cfg, nil
}

// path the config was loaded from, empty for built-in defaults
func (c *Config) Path() string {
	return c.configFilePath
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Layout.VerticalAlignment = strings.TrimSpace(
		strings.ToLower(c.Layout.VerticalAlignment),
	)
	if c.Layout.VerticalAlignment == "" {
		c.Layout.VerticalAlignment = "middle"
	}
	c.Translate.Provider = strings.TrimSpace(strings.ToLower(c.Translate.Provider))
	c.Style.PrimaryColor = strings.TrimSpace(c.Style.PrimaryColor)
	c.Style.SecondaryColor = strings.TrimSpace(c.Style.SecondaryColor)

	if c.Translate.BatchSize <= 0 {
		c.Translate.BatchSize = 50
	}
	if c.Translate.Concurrency <= 0 {
		c.Translate.Concurrency = 1
	}
}
