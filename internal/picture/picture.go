// Package picture normalizes uploaded channel logos to the canonical
// 720x540 transparent-padded form and converts between output encodings.
package picture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// WebP sources decode through image.Decode like any other format.
	_ "golang.org/x/image/webp"
)

// Canonical logo dimensions. Every normalized image is exactly this size.
const (
	CanvasWidth  = 720
	CanvasHeight = 540
)

// Normalize decodes an arbitrary source image and letterboxes it onto a
// fully transparent 720x540 canvas. The source keeps its aspect ratio and
// is centered; nothing is ever cropped.
func Normalize(r io.Reader) (*image.NRGBA, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	return pad(src), nil
}

// NormalizeFile is Normalize reading from the file at path.
func NormalizeFile(path string) (retImg *image.NRGBA, retErr error) {
	f, err := os.Open(path) //nolint:gosec // path is an app-generated temp file
	if err != nil {
		return nil, fmt.Errorf("open image file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && retErr == nil {
			retErr = closeErr
		}
	}()

	return Normalize(f)
}

func pad(src image.Image) *image.NRGBA {
	canvas := imaging.New(CanvasWidth, CanvasHeight, color.NRGBA{})

	srcW := src.Bounds().Dx()
	srcH := src.Bounds().Dy()
	if srcW <= 0 || srcH <= 0 {
		return canvas
	}

	// Fit the source inside the canvas, scaling up or down as needed. The
	// limiting dimension lands exactly on the canvas edge.
	var w, h int
	if srcW*CanvasHeight >= srcH*CanvasWidth {
		w = CanvasWidth
		h = int(math.Round(float64(srcH) * CanvasWidth / float64(srcW)))
	} else {
		h = CanvasHeight
		w = int(math.Round(float64(srcW) * CanvasHeight / float64(srcH)))
	}
	w = min(max(w, 1), CanvasWidth)
	h = min(max(h, 1), CanvasHeight)

	scaled := imaging.Resize(src, w, h, imaging.Lanczos)
	return imaging.PasteCenter(canvas, scaled)
}

// EncodePNG encodes img as lossless PNG, the canonical stored format.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWebP encodes img as lossless WebP.
func EncodeWebP(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: true, Exact: true}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Reencode decodes data and re-encodes it in the requested format,
// returning the encoded bytes and the matching content type. Supported
// formats are "png" and "webp".
func Reencode(data []byte, format string) ([]byte, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	switch format {
	case "png":
		out, err := EncodePNG(img)
		return out, "image/png", err
	case "webp":
		out, err := EncodeWebP(img)
		return out, "image/webp", err
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}
