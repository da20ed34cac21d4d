package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// InkPalette is the three-ink palette of tri-color e-paper panels and
// two-color print: white paper, black ink and red ink.
var InkPalette = color.Palette{
	color.White,
	color.Black,
	color.RGBA{R: 0xff, A: 0xff},
}

const (
	inkWhite = iota
	inkBlack
	inkRed
)

// classify picks the ink for one pixel.
//
//   - luma Y = 0.299R + 0.587G + 0.114B
//   - redness = R - max(G, B)
//   - Y < 64 is black, R > 128 with redness > 32 is red, the rest is paper
//
// Transparent pixels are paper.
func classify(c color.NRGBA) uint8 {
	if c.A < 128 {
		return inkWhite
	}
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	y := 0.299*r + 0.587*g + 0.114*b

	maxGB := max(g, b)
	if y < 64 {
		return inkBlack
	}
	if r > 128 && r-maxGB > 32 {
		return inkRed
	}
	return inkWhite
}

// Ink reduces src to InkPalette. Priority colors from the red family keep
// their accent; everything light enough becomes paper.
func Ink(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(b, InkPalette)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetColorIndex(x, y, classify(c))
		}
	}
	return dst
}

// InkPNG decodes a PNG, reduces it with Ink and encodes it again.
func InkPNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("capture: decode PNG: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Ink(img)); err != nil {
		return nil, fmt.Errorf("capture: encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
