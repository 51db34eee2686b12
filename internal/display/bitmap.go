package display

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/metroboard/metro/internal/models"
)

var (
	smallFaceOnce sync.Once
	smallFace     font.Face
)

// SmallFace returns the face used for FontSmall: Go Mono at a size that
// fits one 8 pixel row. It falls back to the 7x13 bitmap face.
func SmallFace() font.Face {
	smallFaceOnce.Do(func() {
		smallFace = basicfont.Face7x13
		f, err := opentype.Parse(gomono.TTF)
		if err != nil {
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    7,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return
		}
		smallFace = face
	})
	return smallFace
}

// PresentFunc receives the finished frame on Present
type PresentFunc func(img *image.RGBA) error

// Bitmap is an in-memory RGB canvas
type Bitmap struct {
	img     *image.RGBA
	faces   map[FontSize]font.Face
	present PresentFunc
	frames  int
}

// BitmapOption configures a Bitmap
type BitmapOption func(*Bitmap)

// WithPresent sets the function called with the frame on Present
func WithPresent(fn PresentFunc) BitmapOption {
	return func(b *Bitmap) {
		b.present = fn
	}
}

// NewBitmap creates a black canvas of the given size
func NewBitmap(width, height int, opts ...BitmapOption) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	b := &Bitmap{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		faces: map[FontSize]font.Face{
			FontSmall:   SmallFace(),
			FontRegular: basicfont.Face7x13,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Clear()
	return b, nil
}

func (b *Bitmap) Width() int  { return b.img.Bounds().Dx() }
func (b *Bitmap) Height() int { return b.img.Bounds().Dy() }

// Clear fills the canvas with black
func (b *Bitmap) Clear() {
	draw.Draw(b.img, b.img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
}

func (b *Bitmap) face(size FontSize) font.Face {
	if f, ok := b.faces[size]; ok {
		return f
	}
	return b.faces[FontSmall]
}

// TextWidth returns the advance width of text in pixels
func (b *Bitmap) TextWidth(text string, size FontSize) int {
	return font.MeasureString(b.face(size), text).Ceil()
}

// DrawText draws text with its top-left corner at (x, y). Pixels outside
// the canvas are clipped.
func (b *Bitmap) DrawText(text string, x, y int, c models.RGB, size FontSize) {
	face := b.face(size)
	d := font.Drawer{
		Dst:  b.img,
		Src:  image.NewUniform(ToColor(c)),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// Present hands the frame to the configured sink
func (b *Bitmap) Present() error {
	b.frames++
	if b.present == nil {
		return nil
	}
	return b.present(b.img)
}

// Image returns the backing image
func (b *Bitmap) Image() *image.RGBA {
	return b.img
}

// Frames returns how many frames have been presented
func (b *Bitmap) Frames() int {
	return b.frames
}

// Snapshot returns a copy of the current frame
func (b *Bitmap) Snapshot() *image.RGBA {
	cp := image.NewRGBA(b.img.Bounds())
	copy(cp.Pix, b.img.Pix)
	return cp
}

// WritePNG encodes the current frame as PNG
func (b *Bitmap) WritePNG(w io.Writer) error {
	return png.Encode(w, b.img)
}

// ToColor converts an RGB to an opaque color.RGBA
func ToColor(c models.RGB) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
