package display

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalfBlock = "▀"

// RenderANSI draws an image with one terminal cell per two pixel rows,
// using the foreground for the upper pixel and the background for the
// lower one.
func RenderANSI(img image.Image) string {
	bounds := img.Bounds()
	var sb strings.Builder
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			top := hexAt(img, x, y)
			bottom := "#000000"
			if y+1 < bounds.Max.Y {
				bottom = hexAt(img, x, y+1)
			}
			style := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom))
			sb.WriteString(style.Render(upperHalfBlock))
		}
		if y+2 < bounds.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexAt(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
