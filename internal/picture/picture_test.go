package picture_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"logodepot/internal/picture"
)

// solidPNG returns PNG bytes for a fully opaque single-color image.
func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img), "encoding fixture PNG")
	return buf.Bytes()
}

func TestNormalizeOutputDimensions(t *testing.T) {
	t.Parallel()

	red := color.NRGBA{R: 255, A: 255}

	tests := []struct {
		name string
		w, h int
	}{
		{name: "small square", w: 100, h: 100},
		{name: "tiny upscaled", w: 10, h: 7},
		{name: "wide", w: 1440, h: 270},
		{name: "tall", w: 270, h: 1440},
		{name: "exact canvas", w: 720, h: 540},
		{name: "canvas aspect ratio scaled", w: 1440, h: 1080},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out, err := picture.Normalize(bytes.NewReader(solidPNG(t, tc.w, tc.h, red)))
			require.NoError(t, err, "Normalize error")
			require.Equal(t, picture.CanvasWidth, out.Bounds().Dx(), "width")
			require.Equal(t, picture.CanvasHeight, out.Bounds().Dy(), "height")

			// The center pixel always belongs to the source image.
			center := out.NRGBAAt(picture.CanvasWidth/2, picture.CanvasHeight/2)
			require.EqualValues(t, 255, center.A, "center pixel should be opaque")
		})
	}
}

func TestNormalizePadsWithTransparency(t *testing.T) {
	t.Parallel()

	// A 2:1 source becomes 720x360 centered, leaving 90 transparent rows
	// at the top and bottom.
	src := solidPNG(t, 500, 250, color.NRGBA{G: 200, A: 255})

	out, err := picture.Normalize(bytes.NewReader(src))
	require.NoError(t, err, "Normalize error")

	require.EqualValues(t, 0, out.NRGBAAt(360, 10).A, "top padding should be transparent")
	require.EqualValues(t, 0, out.NRGBAAt(360, 529).A, "bottom padding should be transparent")
	require.EqualValues(t, 255, out.NRGBAAt(360, 100).A, "content row should be opaque")
	require.EqualValues(t, 255, out.NRGBAAt(0, 270).A, "content spans the full width")
}

func TestNormalizeCentering(t *testing.T) {
	t.Parallel()

	// Tall 1:2 source becomes 270x540: pillarboxed with 225 transparent
	// columns on each side.
	src := solidPNG(t, 200, 400, color.NRGBA{B: 180, A: 255})

	out, err := picture.Normalize(bytes.NewReader(src))
	require.NoError(t, err, "Normalize error")

	require.EqualValues(t, 0, out.NRGBAAt(100, 270).A, "left padding should be transparent")
	require.EqualValues(t, 0, out.NRGBAAt(619, 270).A, "right padding should be transparent")
	require.EqualValues(t, 255, out.NRGBAAt(230, 270).A, "left content edge should be opaque")
	require.EqualValues(t, 255, out.NRGBAAt(489, 270).A, "right content edge should be opaque")
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := picture.Normalize(bytes.NewReader([]byte("this is not an image")))
	require.Error(t, err, "expected decode error for non-image input")
}

func TestEncodePNGRoundTrip(t *testing.T) {
	t.Parallel()

	out, err := picture.Normalize(bytes.NewReader(solidPNG(t, 64, 64, color.NRGBA{R: 1, G: 2, B: 3, A: 255})))
	require.NoError(t, err, "Normalize error")

	data, err := picture.EncodePNG(out)
	require.NoError(t, err, "EncodePNG error")

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err, "decoding produced PNG")
	require.Equal(t, picture.CanvasWidth, decoded.Bounds().Dx(), "decoded width")
	require.Equal(t, picture.CanvasHeight, decoded.Bounds().Dy(), "decoded height")
}

func TestReencode(t *testing.T) {
	t.Parallel()

	src := solidPNG(t, 32, 32, color.NRGBA{R: 9, A: 255})

	data, contentType, err := picture.Reencode(src, "png")
	require.NoError(t, err, "Reencode png error")
	require.Equal(t, "image/png", contentType, "png content type")
	require.NotEmpty(t, data, "png payload")

	data, contentType, err = picture.Reencode(src, "webp")
	require.NoError(t, err, "Reencode webp error")
	require.Equal(t, "image/webp", contentType, "webp content type")
	require.NotEmpty(t, data, "webp payload")

	_, _, err = picture.Reencode(src, "gif")
	require.Error(t, err, "unsupported format should error")

	_, _, err = picture.Reencode([]byte("junk"), "png")
	require.Error(t, err, "undecodable input should error")
}
