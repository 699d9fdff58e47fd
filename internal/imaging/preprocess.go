package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// MinOCRWidth is the width below which label images are upscaled before OCR.
// Tesseract loses small nutrition-panel print under roughly 1000px.
const MinOCRWidth = 1000

// MaxOCRSide caps the longest side of a prepared image. Larger photos add pixels
// without adding legible print, and inflate the payload sent to the engine.
const MaxOCRSide = 2500

// PrepareOptions controls PrepareForOCR.
type PrepareOptions struct {
	// MinWidth upscales narrower images to this width (aspect preserved). 0 disables.
	MinWidth int

	// MaxSide downscales images whose longest side exceeds it (aspect preserved).
	// 0 disables.
	MaxSide int

	// Contrast is the percentage passed to imaging.AdjustContrast (-100..100).
	Contrast float64

	// Sharpen applies a 3x3 sharpening kernel after the contrast stretch.
	Sharpen bool
}

// DefaultPrepareOptions returns the settings used by the scan pipeline.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		MinWidth: MinOCRWidth,
		MaxSide:  MaxOCRSide,
		Contrast: 20,
		Sharpen:  true,
	}
}

// PrepareForOCR converts a label photo into an image OCR engines read well.
//
// Steps:
//  1. Upscale images narrower than MinWidth (Lanczos)
//  2. Downscale images whose longest side exceeds MaxSide
//  3. Convert to grayscale
//  4. Invert light-on-dark labels so text ends up dark on light
//  5. Stretch contrast
//  6. Sharpen edges (optional)
//
// The result is always an *image.Gray so it encodes as a single-channel PNG.
// The input is never modified.
func PrepareForOCR(img image.Image, opts PrepareOptions) *image.Gray {
	if opts.MinWidth > 0 && img.Bounds().Dx() < opts.MinWidth {
		img = imaging.Resize(img, opts.MinWidth, 0, imaging.Lanczos)
	}
	if opts.MaxSide > 0 && max(img.Bounds().Dx(), img.Bounds().Dy()) > opts.MaxSide {
		img = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	if IsDarkBackground(gray) {
		gray = imaging.Invert(gray)
	}
	if opts.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, opts.Contrast)
	}

	if opts.Sharpen {
		return toGray(effect.Sharpen(gray))
	}
	return toGray(gray)
}

// toGray copies img into a single-channel image anchored at the origin.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// darkLightness is the mean CIE L* (0..1) below which a label counts as dark.
const darkLightness = 0.45

// IsDarkBackground reports whether the image is mostly dark, which for a label
// means light text printed on a dark panel.
//
// Lightness is measured as CIE L* on a sparse grid of at most 64x64 samples, which
// tracks perceived brightness better than averaging RGB channels.
func IsDarkBackground(img image.Image) bool {
	b := img.Bounds()
	if b.Empty() {
		return false
	}
	stepX := max(b.Dx()/64, 1)
	stepY := max(b.Dy()/64, 1)

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, _, _ := c.Lab()
			sum += l
			n++
		}
	}
	if n == 0 {
		return false
	}
	return sum/float64(n) < darkLightness
}

// EncodeJPEG encodes an image as JPEG bytes at the given quality (1..100).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes an image as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
