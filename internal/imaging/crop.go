package imaging

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Region is a rectangle in image pixel coordinates.
// (X1, Y1) is inclusive, (X2, Y2) is exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// ParseRegion parses "x1,y1,x2,y2".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region must be x1,y1,x2,y2, got %q", s)
	}
	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("invalid region coordinate %q: %w", p, err)
		}
		vals[i] = v
	}
	return Region{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}, nil
}

// Crop extracts a rectangular region from an image.
//
// Use it to restrict recognition to the nutrition panel of a busy package photo.
// Coordinates are relative to the image's bounds origin.
func Crop(img image.Image, r Region) (image.Image, error) {
	bounds := img.Bounds()

	x1, y1 := bounds.Min.X+r.X1, bounds.Min.Y+r.Y1
	x2, y2 := bounds.Min.X+r.X2, bounds.Min.Y+r.Y2
	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, 0, 0, bounds.Dx(), bounds.Dy())
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	return imaging.Crop(img, image.Rect(x1, y1, x2, y2)), nil
}
