package config

// This file binds CLI flags onto a Config. The command itself (and --help /
// --version) is owned by cobra in cmd/glitchbatch; this package only knows
// about the pflag set it is handed.
// Negated flags (e.g. --no-color) are applied after parsing so Config
// defaults hold unless the user passes them.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// NegatedFlags holds boolean flags that are folded into Config after parsing.
type NegatedFlags struct {
	noColor bool
}

// BindFlags registers the display, logging, and behavior flags on fs.
// Call [NegatedFlags.Apply] once fs has been parsed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *NegatedFlags {
	n := &NegatedFlags{}

	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output (tee ffmpeg stderr, debug logs)")
	fs.Var(&colorModeValue{&cfg.ColorMode}, "color", "Colored logs: auto | always | never")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs (same as --color=never)")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append JSON logs to file")

	fs.BoolVar(&cfg.KeepCorrupted, "keep-corrupted", cfg.KeepCorrupted,
		"Keep <name>_corrupted.mp4 when the re-encode step fails")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", cfg.CheckOnly,
		"Check ffmpeg, ffprobe, libx264 and the noise filter, then exit")

	return n
}

// Apply copies negated flag values into cfg.
func (n *NegatedFlags) Apply(cfg *Config) {
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
}

// pflag.Value adapter so ColorMode can be used with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}
