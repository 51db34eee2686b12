package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// Formatter formats and optionally colors text
type Formatter func(format string, a ...interface{}) string

// Colors holds the color functions for different output types
type Colors struct {
	Header   Formatter
	Dest     Formatter
	Minutes  Formatter
	Arriving Formatter
	NoData   Formatter
	Error    Formatter
	Muted    Formatter

	lines   map[string]Formatter
	enabled bool
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return color.New().Sprintf(format, a...)
		}
		return &Colors{
			Header:   noColor,
			Dest:     noColor,
			Minutes:  noColor,
			Arriving: noColor,
			NoData:   noColor,
			Error:    noColor,
			Muted:    noColor,
		}
	}

	return &Colors{
		Header:   color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Dest:     color.New(color.FgWhite).SprintfFunc(),
		Minutes:  color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Arriving: color.New(color.FgGreen, color.Bold).SprintfFunc(),
		NoData:   color.New(color.FgYellow).SprintfFunc(),
		Error:    color.New(color.FgRed, color.Bold).SprintfFunc(),
		Muted:    color.New(color.FgHiBlack).SprintfFunc(),
		lines: map[string]Formatter{
			"RD": color.New(color.FgRed, color.Bold).SprintfFunc(),
			"BL": color.New(color.FgBlue, color.Bold).SprintfFunc(),
			"OR": color.New(color.FgHiYellow, color.Bold).SprintfFunc(),
			"SV": color.New(color.FgWhite).SprintfFunc(),
			"GR": color.New(color.FgGreen, color.Bold).SprintfFunc(),
			"YL": color.New(color.FgYellow, color.Bold).SprintfFunc(),
		},
		enabled: true,
	}
}

// Line formats text in the color of a rail line; unknown lines use Dest
func (c *Colors) Line(code, format string, a ...interface{}) string {
	if f, ok := c.lines[code]; ok {
		return f(format, a...)
	}
	return c.Dest(format, a...)
}

// Enabled reports whether escape codes are emitted
func (c *Colors) Enabled() bool {
	return c.enabled
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}
