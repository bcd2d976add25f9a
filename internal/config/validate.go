package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgpai22/karaoke/internal/subtitle"
	"github.com/mgpai22/karaoke/internal/timing"
)

var supportedProviders = map[string]bool{
	"gemini":    true,
	"openai":    true,
	"anthropic": true,
}

// Validate checks every section. Warnings are non-fatal; the error
// collects every invalid value.
func (c *Config) Validate() (warnings []string, err error) {
	if c == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var errs []error

	if _, perr := c.KaraokeStyle(); perr != nil {
		errs = append(errs, perr)
	}
	if c.Style.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("style.font_size must be positive, got %d", c.Style.FontSize))
	}
	if c.Style.Alignment < 1 || c.Style.Alignment > 9 {
		errs = append(errs, fmt.Errorf("style.alignment must be 1-9, got %d", c.Style.Alignment))
	} else if c.Style.Alignment < 7 {
		warnings = append(warnings,
			"style.alignment is not top aligned; per-line margins assume distance from the top")
	}

	if _, perr := subtitle.ParseVerticalAlignment(c.Layout.VerticalAlignment); perr != nil {
		errs = append(errs, fmt.Errorf("layout.vertical_alignment: %w", perr))
	}
	if c.Layout.PlayResX <= 0 || c.Layout.PlayResY <= 0 {
		errs = append(errs, fmt.Errorf(
			"layout.play_res_x and play_res_y must be positive, got %dx%d",
			c.Layout.PlayResX, c.Layout.PlayResY,
		))
	}
	if c.Layout.FirstLineTopMargin >= c.Layout.PlayResY && c.Layout.PlayResY > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"layout.first_line_top_margin %d is below the bottom of the frame", c.Layout.FirstLineTopMargin,
		))
	}

	if c.Timing.ScreenGap < 0 {
		errs = append(errs, fmt.Errorf("timing.screen_gap must not be negative, got %s", c.Timing.ScreenGap))
	}
	if ci := c.Timing.CountIn; ci.Enabled {
		if ci.Duration <= 0 {
			errs = append(errs, fmt.Errorf("timing.count_in.duration must be positive, got %s", ci.Duration))
		}
		if ci.Duration > ci.Threshold {
			warnings = append(warnings, fmt.Sprintf(
				"timing.count_in.duration %s exceeds threshold %s; count-ins may overlap the previous screen",
				ci.Duration, ci.Threshold,
			))
		}
		if ci.Text == "" {
			warnings = append(warnings, "timing.count_in.text is empty; count-ins will be invisible")
		}
	}

	if c.Autocorrect.NoiseDB >= 0 {
		errs = append(errs, fmt.Errorf("autocorrect.noise_db must be negative, got %g", c.Autocorrect.NoiseDB))
	}
	if c.Autocorrect.MinSilence <= 0 {
		errs = append(errs, fmt.Errorf("autocorrect.min_silence must be positive, got %s", c.Autocorrect.MinSilence))
	}

	if !supportedProviders[c.Translate.Provider] {
		errs = append(errs, fmt.Errorf("translate.provider %q is not one of gemini, openai, anthropic", c.Translate.Provider))
	}

	if c.Log.File != "" {
		parent := filepath.Dir(c.Log.File)
		if st, serr := os.Stat(parent); serr != nil {
			if os.IsNotExist(serr) {
				warnings = append(warnings, fmt.Sprintf("log directory %s does not exist and will be created", parent))
			} else {
				errs = append(errs, fmt.Errorf("cannot access log directory %s: %w", parent, serr))
			}
		} else if !st.IsDir() {
			errs = append(errs, fmt.Errorf("log path parent %s is not a directory", parent))
		}
	}

	return warnings, errors.Join(errs...)
}

// KaraokeStyle converts the style section for the encoder.
func (c *Config) KaraokeStyle() (subtitle.Style, error) {
	primary, err := subtitle.ParseHexColor(c.Style.PrimaryColor)
	if err != nil {
		return subtitle.Style{}, fmt.Errorf("style.primary_color: %w", err)
	}
	secondary, err := subtitle.ParseHexColor(c.Style.SecondaryColor)
	if err != nil {
		return subtitle.Style{}, fmt.Errorf("style.secondary_color: %w", err)
	}

	return subtitle.Style{
		Name:           subtitle.DefaultStyleName,
		FontName:       c.Style.FontName,
		FontSize:       c.Style.FontSize,
		PrimaryColor:   primary,
		SecondaryColor: secondary,
		Bold:           c.Style.Bold,
		Alignment:      c.Style.Alignment,
		ScaleX:         c.Style.ScaleX,
		ScaleY:         c.Style.ScaleY,
		Spacing:        c.Style.Spacing,
		MarginV:        c.Style.MarginV,
		Encoding:       c.Style.Encoding,
	}, nil
}

func (c *Config) KaraokeLayout() (subtitle.Layout, error) {
	align, err := subtitle.ParseVerticalAlignment(c.Layout.VerticalAlignment)
	if err != nil {
		return subtitle.Layout{}, err
	}
	return subtitle.Layout{
		PlayResX:           c.Layout.PlayResX,
		PlayResY:           c.Layout.PlayResY,
		VerticalAlignment:  align,
		FirstLineTopMargin: c.Layout.FirstLineTopMargin,
	}, nil
}

// nil when count-ins are disabled
func (c *Config) CountIn() *timing.CountIn {
	if !c.Timing.CountIn.Enabled {
		return nil
	}
	return &timing.CountIn{
		Threshold: c.Timing.CountIn.Threshold,
		Duration:  c.Timing.CountIn.Duration,
		Text:      c.Timing.CountIn.Text,
	}
}
