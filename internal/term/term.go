// Package term provides terminal detection and the lipgloss styles shared by
// logging and display.
//
// Styles are package-level variables because multiple packages need them for
// output formatting. [Configure] sets them once during startup; when colors
// are disabled every style is attribute-free, so Render returns its input
// unchanged.
package term

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/glitchbatch/internal/config"
)

// Named styles. Plain until Configure enables colors.
var (
	Title   = lipgloss.NewStyle()
	Success = lipgloss.NewStyle()
	Warn    = lipgloss.NewStyle()
	Error   = lipgloss.NewStyle()
	Muted   = lipgloss.NewStyle()
)

var enabled bool

// Configure resolves the color mode against out and rebuilds the styles.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode, out io.Writer) {
	enabled = resolve(mode, out)

	r := lipgloss.NewRenderer(out)
	if !enabled {
		r.SetColorProfile(termenv.Ascii)
		Title, Success, Warn, Error, Muted = r.NewStyle(), r.NewStyle(), r.NewStyle(), r.NewStyle(), r.NewStyle()
		return
	}
	if mode == config.ColorAlways {
		r.SetColorProfile(termenv.ANSI256)
	}

	Title = r.NewStyle().Bold(true).Foreground(lipgloss.Color("201"))
	Success = r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	Warn = r.NewStyle().Foreground(lipgloss.Color("11"))
	Error = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	Muted = r.NewStyle().Foreground(lipgloss.Color("245"))
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		f, _ := out.(*os.File)
		return IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
