package display

import (
	"fmt"
	"image"
	"image/draw"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// OLED pushes frames to an SSD1306 panel over I²C
type OLED struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
	buf *image1bit.VerticalLSB
}

// OpenOLED initializes the host drivers and opens the panel on the named
// I²C bus ("" picks the first one).
func OpenOLED(busName string, width, height int) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	opts := ssd1306.DefaultOpts
	opts.W = width
	opts.H = height
	dev, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("open ssd1306: %w", err)
	}
	return &OLED{
		bus: bus,
		dev: dev,
		buf: image1bit.NewVerticalLSB(dev.Bounds()),
	}, nil
}

// Present converts the frame to one bit per pixel and draws it. Any lit
// channel turns the pixel on.
func (o *OLED) Present(img *image.RGBA) error {
	ToMono(o.buf, img)
	if err := o.dev.Draw(o.dev.Bounds(), o.buf, image.Point{}); err != nil {
		return fmt.Errorf("draw oled: %w", err)
	}
	return nil
}

// Close blanks the panel and releases the bus
func (o *OLED) Close() error {
	haltErr := o.dev.Halt()
	if err := o.bus.Close(); err != nil {
		return err
	}
	return haltErr
}

// ToMono thresholds src into a one bit image
func ToMono(dst *image1bit.VerticalLSB, src image.Image) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(image1bit.Off), image.Point{}, draw.Src)
	b := src.Bounds().Intersect(dst.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			if max(r, g, bl) >= 0x8000 {
				dst.SetBit(x, y, image1bit.On)
			}
		}
	}
}
