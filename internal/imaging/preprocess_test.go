package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestIsDarkBackground(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"white", createInMemoryImage(100, 100, color.White), false},
		{"black", createInMemoryImage(100, 100, color.Black), true},
		{"dark navy", createInMemoryImage(100, 100, color.RGBA{20, 20, 60, 255}), true},
		{"cream", createInMemoryImage(100, 100, color.RGBA{250, 240, 210, 255}), false},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), false},
		{"transparent", image.NewRGBA(image.Rect(0, 0, 10, 10)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDarkBackground(tt.img); got != tt.want {
				t.Errorf("IsDarkBackground = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepareForOCR_Upscales(t *testing.T) {
	img := createInMemoryImage(200, 100, color.White)

	out := PrepareForOCR(img, DefaultPrepareOptions())

	if out.Bounds().Dx() != MinOCRWidth {
		t.Errorf("width: got %d, want %d", out.Bounds().Dx(), MinOCRWidth)
	}
	if out.Bounds().Dy() != 500 {
		t.Errorf("height: got %d, want 500 (aspect preserved)", out.Bounds().Dy())
	}
	if img.Bounds().Dx() != 200 {
		t.Error("PrepareForOCR modified its input")
	}
}

func TestPrepareForOCR_KeepsLargeImages(t *testing.T) {
	img := createInMemoryImage(1200, 50, color.White)

	out := PrepareForOCR(img, PrepareOptions{MinWidth: MinOCRWidth})
	if out.Bounds().Dx() != 1200 || out.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 1200x50", out.Bounds().Dx(), out.Bounds().Dy())
	}
}

func TestPrepareForOCR_CapsLongestSide(t *testing.T) {
	img := createInMemoryImage(4000, 3000, color.White)

	out := PrepareForOCR(img, DefaultPrepareOptions())
	if out.Bounds().Dx() != MaxOCRSide || out.Bounds().Dy() != 1875 {
		t.Errorf("dimensions: got %dx%d, want %dx1875", out.Bounds().Dx(), out.Bounds().Dy(), MaxOCRSide)
	}
}

func TestPrepareForOCR_SingleChannelPNG(t *testing.T) {
	out := PrepareForOCR(createPatternImage(120, 80), DefaultPrepareOptions())
	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("bounds should start at the origin, got %v", out.Bounds())
	}

	data, err := EncodePNG(out)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if _, ok := decoded.(*image.Gray); !ok {
		t.Errorf("encoded image decodes as %T, want *image.Gray", decoded)
	}
}

func TestPrepareForOCR_InvertsDarkLabels(t *testing.T) {
	img := createInMemoryImage(50, 50, color.Black)

	out := PrepareForOCR(img, PrepareOptions{})

	r, g, b, _ := out.At(10, 10).RGBA()
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("dark background should be inverted to light, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestPrepareForOCR_Grayscale(t *testing.T) {
	img := createPatternImage(40, 40)

	out := PrepareForOCR(img, PrepareOptions{Contrast: 10, Sharpen: true})

	for _, p := range []image.Point{{5, 5}, {30, 5}, {5, 30}, {30, 30}} {
		r, g, b, _ := out.At(p.X, p.Y).RGBA()
		if r != g || g != b {
			t.Errorf("pixel %v not gray: (%d,%d,%d)", p, r>>8, g>>8, b>>8)
		}
	}
}

func TestEncodeJPEG(t *testing.T) {
	data, err := EncodeJPEG(createPatternImage(40, 30), 90)
	if err != nil {
		t.Fatalf("EncodeJPEG failed: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "jpeg" {
		t.Errorf("DecodeConfig: format %q, err %v", format, err)
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(createInMemoryImage(30, 20, color.White))
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
