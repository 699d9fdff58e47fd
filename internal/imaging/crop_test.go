package imaging

import (
	"image"
	"image/color"
	"testing"
)

// createPatternImage creates an image with red/green/blue/white quadrants.
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCrop(t *testing.T) {
	img := createPatternImage(100, 100)

	cropped, err := Crop(img, Region{X1: 50, Y1: 0, X2: 100, Y2: 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}

	if cropped.Bounds().Dx() != 50 || cropped.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", cropped.Bounds().Dx(), cropped.Bounds().Dy())
	}

	// Top-right quadrant is green.
	r, g, b, _ := cropped.At(cropped.Bounds().Min.X+10, cropped.Bounds().Min.Y+10).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("cropped pixel: got (%d,%d,%d), want green", r>>8, g>>8, b>>8)
	}
}

func TestCrop_NonZeroOrigin(t *testing.T) {
	img := createPatternImage(100, 100).SubImage(image.Rect(50, 50, 100, 100))

	cropped, err := Crop(img, Region{X1: 0, Y1: 0, X2: 10, Y2: 10})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	r, g, b, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("region should be relative to bounds origin, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCrop_Invalid(t *testing.T) {
	img := createInMemoryImage(100, 100, color.White)

	tests := []struct {
		name string
		r    Region
	}{
		{"outside right", Region{X1: 50, Y1: 0, X2: 150, Y2: 50}},
		{"negative", Region{X1: -1, Y1: 0, X2: 50, Y2: 50}},
		{"empty", Region{X1: 10, Y1: 10, X2: 10, Y2: 20}},
		{"inverted", Region{X1: 60, Y1: 60, X2: 40, Y2: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(img, tt.r); err == nil {
				t.Errorf("Crop(%+v) should fail", tt.r)
			}
		})
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("10, 20,300,400")
	if err != nil {
		t.Fatalf("ParseRegion failed: %v", err)
	}
	want := Region{X1: 10, Y1: 20, X2: 300, Y2: 400}
	if r != want {
		t.Errorf("ParseRegion = %+v, want %+v", r, want)
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d", "1,2,3,4,5"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Errorf("ParseRegion(%q) should fail", bad)
		}
	}
}
