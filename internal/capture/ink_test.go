package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	for name, tc := range map[string]struct {
		c    color.NRGBA
		want uint8
	}{
		"black":       {color.NRGBA{A: 255}, inkBlack},
		"dark gray":   {color.NRGBA{R: 40, G: 40, B: 40, A: 255}, inkBlack},
		"high red":    {color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 255}, inkRed},
		"amber":       {color.NRGBA{R: 0xf5, G: 0x9e, B: 0x0b, A: 255}, inkRed},
		"white":       {color.NRGBA{R: 255, G: 255, B: 255, A: 255}, inkWhite},
		"light blue":  {color.NRGBA{R: 0x93, G: 0xc5, B: 0xfd, A: 255}, inkWhite},
		"transparent": {color.NRGBA{A: 10}, inkWhite},
	} {
		assert.Equal(t, tc.want, classify(tc.c), name)
	}
}

func TestInkPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{R: 220, G: 30, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := InkPNG(buf.Bytes())
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	p, ok := img.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, []uint8{inkWhite, inkBlack, inkRed}, p.Pix)

	_, err = InkPNG([]byte("not a png"))
	assert.Error(t, err)
}
