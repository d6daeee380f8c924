// Package watermark overlays the brand mark on generated card images.
//
// The stage is best-effort: a run must never lose a successfully generated
// image because the mark could not be drawn. Only an undecodable input is
// reported as an error; every drawing failure degrades to re-encoding the
// original image.
package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	markText = "AlexAI Cards"

	// Mark geometry relative to the image: font size 2.5% of height,
	// margin 2% of width, white at 60% opacity.
	sizeRatio   = 0.025
	marginRatio = 0.02
	jpegQuality = 95
)

var markColor = color.NRGBA{R: 255, G: 255, B: 255, A: 153}

// fontPaths is the ordered list of serif fonts tried for the mark. When
// none load, the built-in bitmap face is used instead.
var fontPaths = []string{
	"arial.ttf",
	"times.ttf",
	"Georgia.ttf",
	"/System/Library/Fonts/Supplemental/Georgia.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf",
}

// Result reports what the stage produced. Applied distinguishes a marked
// image from the degraded fallback (original re-encoded, no mark).
type Result struct {
	Data    []byte
	Applied bool
}

// overlayMark is swappable in tests to exercise the degraded path.
var overlayMark = overlay

// Apply decodes data, draws the brand mark at the bottom-right corner and
// re-encodes the image as JPEG. On any drawing failure the original image
// is re-encoded unmodified and Applied is false.
func Apply(data []byte) (Result, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	marked, err := safeOverlay(src)
	if err != nil {
		out, encErr := encodeJPEG(src)
		if encErr != nil {
			return Result{}, fmt.Errorf("re-encode original: %w", encErr)
		}
		return Result{Data: out, Applied: false}, nil
	}

	out, err := encodeJPEG(marked)
	if err != nil {
		return Result{}, fmt.Errorf("encode image: %w", err)
	}
	return Result{Data: out, Applied: true}, nil
}

// safeOverlay shields the pipeline from panics in font measurement and
// rasterization; a panic degrades the same way a drawing error does.
func safeOverlay(src image.Image) (marked image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			marked, err = nil, fmt.Errorf("draw mark: %v", r)
		}
	}()
	return overlayMark(src)
}

func overlay(src image.Image) (image.Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty image bounds %v", b)
	}

	face := loadFace(float64(h) * sizeRatio)

	layer := image.NewNRGBA(b)
	d := &font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(markColor),
		Face: face,
	}

	textWidth := d.MeasureString(markText).Ceil()
	margin := int(float64(w) * marginRatio)

	x := b.Max.X - textWidth - margin
	if x < b.Min.X {
		x = b.Min.X
	}
	y := b.Max.Y - margin - face.Metrics().Descent.Ceil()

	d.Dot = fixed.P(x, y)
	d.DrawString(markText)

	// Flatten: original composited with the mark layer, opaque result.
	flat := image.NewNRGBA(b)
	draw.Draw(flat, b, src, b.Min, draw.Src)
	draw.Draw(flat, b, layer, b.Min, draw.Over)
	return flat, nil
}

func loadFace(size float64) font.Face {
	if size < 1 {
		return basicfont.Face7x13
	}
	for _, path := range fontPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		parsed, err := opentype.Parse(raw)
		if err != nil {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			continue
		}
		return face
	}
	return basicfont.Face7x13
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
