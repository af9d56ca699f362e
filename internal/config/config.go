// Package config holds runtime configuration: defaults, CLI flag binding, and
// validation. The batch directories and encoder parameters are fixed; only
// display, logging, and debugging behavior is exposed as flags.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Fixed batch layout, relative to the working directory.
const (
	DefaultInputDir  = "input"
	DefaultOutputDir = "output"
)

// x264Presets lists the presets accepted by libx264, fastest first.
var x264Presets = map[string]bool{
	"ultrafast": true,
	"superfast": true,
	"veryfast":  true,
	"faster":    true,
	"fast":      true,
	"medium":    true,
	"slow":      true,
	"slower":    true,
	"veryslow":  true,
	"placebo":   true,
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// adjusted by [BindFlags], and passed by pointer to the packages that need it.
type Config struct {
	// Paths (fixed; tests point these at temporary directories).
	InputDir  string
	OutputDir string

	// External tools.
	FFmpegBin  string // Default: "ffmpeg".
	FFprobeBin string // Default: "ffprobe".

	// Corruption pass.
	VideoEncoder string // Fixed: "libx264".
	Keyint       int    // Fixed: 500. Long GOPs let the damage smear.
	KeyintMin    int    // Fixed: 60.
	BFrames      int    // Fixed: 8.
	Partitions   string // Fixed: "none".
	NoiseAmount  int    // Fixed: 9000. Applied to non-key packets only.
	PixFmt       string // Fixed: "yuv420p".

	// Normalization pass.
	ReencodePreset string // Fixed: "veryslow".
	ReencodeCRF    int    // Fixed: 28.

	// Behavior flags.
	KeepCorrupted bool // Keep the intermediate when the re-encode fails.
	CheckOnly     bool // Run --check diagnostics and exit.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with the fixed batch layout and the
// corruption/normalization parameters of the glitch recipe.
func DefaultConfig() Config {
	return Config{
		InputDir:       DefaultInputDir,
		OutputDir:      DefaultOutputDir,
		FFmpegBin:      "ffmpeg",
		FFprobeBin:     "ffprobe",
		VideoEncoder:   "libx264",
		Keyint:         500,
		KeyintMin:      60,
		BFrames:        8,
		Partitions:     "none",
		NoiseAmount:    9000,
		PixFmt:         "yuv420p",
		ReencodePreset: "veryslow",
		ReencodeCRF:    28,
		ColorMode:      ColorAuto,
	}
}

// Validate checks enum fields and numeric ranges. Directory and binary
// names must be non-empty even in CheckOnly mode since --check probes the
// same binaries the batch would use.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.FFmpegBin == "" || c.FFprobeBin == "" {
		return errors.New("ffmpeg and ffprobe binaries must be set")
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return errors.New("input and output directories must be set")
	}

	if c.Keyint <= 0 || c.KeyintMin <= 0 {
		return errors.New("keyint and keyint_min must be positive")
	}
	if c.KeyintMin > c.Keyint {
		return fmt.Errorf("keyint_min (%d) must not exceed keyint (%d)", c.KeyintMin, c.Keyint)
	}
	if c.BFrames < 0 || c.BFrames > 16 {
		return fmt.Errorf("invalid b-frame count %d (0-16)", c.BFrames)
	}
	if c.NoiseAmount < 0 {
		return errors.New("noise amount must not be negative")
	}
	if c.ReencodeCRF < 0 || c.ReencodeCRF > 51 {
		return fmt.Errorf("invalid CRF %d (0-51)", c.ReencodeCRF)
	}
	if !x264Presets[strings.ToLower(c.ReencodePreset)] {
		return fmt.Errorf("unknown x264 preset %q", c.ReencodePreset)
	}
	return nil
}

// X264Params returns the -x264-params value for the corruption pass,
// e.g. "keyint=500:keyint_min=60:bf=8:partitions=none".
func (c *Config) X264Params() string {
	return fmt.Sprintf("keyint=%d:keyint_min=%d:bf=%d:partitions=%s",
		c.Keyint, c.KeyintMin, c.BFrames, c.Partitions)
}

// NoiseFilter returns the -bsf:v value that corrupts non-keyframe packets.
func (c *Config) NoiseFilter() string {
	return fmt.Sprintf("noise=amount=%d*not(key)", c.NoiseAmount)
}
