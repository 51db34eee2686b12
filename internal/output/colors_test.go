package output

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/metroboard/metro/internal/testutil"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input string
		want  ColorMode
	}{
		{"always", ColorAlways},
		{"never", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},        // default
		{"invalid", ColorAuto}, // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseColorMode(tt.input)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}

func TestNewColors_NeverMode(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertFalse(t, c.Enabled())
	testutil.AssertEqual(t, c.Header("Metro Center"), "Metro Center")
	testutil.AssertEqual(t, c.Dest("Glenmont"), "Glenmont")
	testutil.AssertEqual(t, c.Minutes("3 MIN"), "3 MIN")
	testutil.AssertEqual(t, c.Arriving("ARR"), "ARR")
	testutil.AssertEqual(t, c.NoData("NO DATA"), "NO DATA")
	testutil.AssertEqual(t, c.Error("ERROR"), "ERROR")
	testutil.AssertEqual(t, c.Muted("EASTBOUND"), "EASTBOUND")
	testutil.AssertEqual(t, c.Line("RD", "Shady Grove"), "Shady Grove")
}

func TestNewColors_AlwaysMode(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	c := NewColors(ColorAlways)
	testutil.AssertTrue(t, c.Enabled())

	result := c.Arriving("ARR")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, result, "ARR")

	result = c.Error("ERROR")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, stripANSI(result), "ERROR")
}

func TestColors_LinePalette(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	c := NewColors(ColorAlways)

	red := c.Line("RD", "Glenmont")
	blue := c.Line("BL", "Glenmont")
	testutil.AssertTrue(t, red != blue)
	testutil.AssertEqual(t, stripANSI(red), "Glenmont")

	// unknown lines fall back to the destination color
	testutil.AssertEqual(t, c.Line("ZZ", "Glenmont"), c.Dest("Glenmont"))
}

func TestColors_Sprintf(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Minutes("%d MIN", 12), "12 MIN")
	testutil.AssertEqual(t, c.Line("OR", "%-2s", "OR"), "OR")
}

func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
