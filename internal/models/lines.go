package models

import "fmt"

// RGB is a 24-bit display color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Common display colors
var (
	White  = RGB{255, 255, 255}
	Red    = RGB{255, 0, 0}
	Orange = RGB{255, 128, 0}
)

// LineInfo describes a rail line
type LineInfo struct {
	Code  string
	Name  string
	Color RGB
}

var lines = map[string]LineInfo{
	"RD": {Code: "RD", Name: "Red", Color: RGB{255, 0, 0}},
	"BL": {Code: "BL", Name: "Blue", Color: RGB{0, 0, 255}},
	"SV": {Code: "SV", Name: "Silver", Color: RGB{145, 145, 145}},
	"OR": {Code: "OR", Name: "Orange", Color: RGB{255, 165, 0}},
	"GR": {Code: "GR", Name: "Green", Color: RGB{0, 128, 0}},
	"YL": {Code: "YL", Name: "Yellow", Color: RGB{255, 255, 0}},
}

// LineColor returns the color for a line code, white if unknown
func LineColor(code string) RGB {
	if l, ok := lines[code]; ok {
		return l.Color
	}
	return White
}
