package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/karaoke/internal/subtitle"
)

func TestDefaultIsValid(t *testing.T) {
	warnings, err := Default().Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestDefaultMatchesEncoderDefaults(t *testing.T) {
	cfg := Default()

	style, err := cfg.KaraokeStyle()
	require.NoError(t, err)
	assert.Equal(t, subtitle.DefaultStyle(), style)

	layout, err := cfg.KaraokeLayout()
	require.NoError(t, err)
	assert.Equal(t, subtitle.DefaultLayout(), layout)

	assert.Nil(t, cfg.CountIn())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "karaoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
style:
  font_size: 28
  primary_color: "#00FF0080"
layout:
  vertical_alignment: Bottom
timing:
  screen_gap: 250ms
  count_in:
    enabled: true
    threshold: 8s
translate:
  provider: " OpenAI "
  batch_size: 0
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, 28, cfg.Style.FontSize)
	assert.Equal(t, "Arial Narrow", cfg.Style.FontName)
	assert.Equal(t, "bottom", cfg.Layout.VerticalAlignment)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.ScreenGap)
	assert.Equal(t, "openai", cfg.Translate.Provider)
	assert.Equal(t, 50, cfg.Translate.BatchSize)

	style, err := cfg.KaraokeStyle()
	require.NoError(t, err)
	assert.Equal(t, "&H7F00FF00", style.PrimaryColor.ASS())

	countIn := cfg.CountIn()
	require.NotNil(t, countIn)
	assert.Equal(t, 8*time.Second, countIn.Threshold)
	assert.Equal(t, 3*time.Second, countIn.Duration)
	assert.Equal(t, "●●● ", countIn.Text)
}

func TestLoadMissingFile(t *testing.T) {
	t.Run("default path falls back to defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
		assert.Empty(t, cfg.Path())
	})

	t.Run("explicit path must exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "karaoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte("style: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		wantWarning bool
	}{
		{"bad colour", func(c *Config) { c.Style.PrimaryColor = "magenta" }, true, false},
		{"zero font size", func(c *Config) { c.Style.FontSize = 0 }, true, false},
		{"unknown alignment", func(c *Config) { c.Layout.VerticalAlignment = "left" }, true, false},
		{"unknown provider", func(c *Config) { c.Translate.Provider = "llama" }, true, false},
		{"positive noise floor", func(c *Config) { c.Autocorrect.NoiseDB = 3 }, true, false},
		{"bottom aligned style", func(c *Config) { c.Style.Alignment = 2 }, false, true},
		{"long count-in", func(c *Config) {
			c.Timing.CountIn.Enabled = true
			c.Timing.CountIn.Duration = 10 * time.Second
		}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			warnings, err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantWarning {
				assert.NotEmpty(t, warnings)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Style.FontSize = 32
	cfg.Timing.CountIn.Enabled = true

	path := filepath.Join(t.TempDir(), "nested", "karaoke.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, loaded.Style.FontSize)
	assert.True(t, loaded.Timing.CountIn.Enabled)
	assert.Equal(t, cfg.Timing.ScreenGap, loaded.Timing.ScreenGap)
}
