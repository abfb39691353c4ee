package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createPatternImage creates a four-quadrant test image: red top-left, green
// top-right, blue bottom-left, white bottom-right.
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			switch {
			case x < width/2 && y < height/2:
				c = color.NRGBA{255, 0, 0, 255}
			case y < height/2:
				c = color.NRGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.NRGBA{0, 0, 255, 255}
			default:
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func decodeExport(t *testing.T, res *ExportResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func TestExport_WholeImage(t *testing.T) {
	res, err := Export(createPatternImage(16, 16), nil, 1)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.Width != 16 || res.Height != 16 {
		t.Errorf("dimensions: got %dx%d, want 16x16", res.Width, res.Height)
	}
	if res.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", res.MimeType)
	}
	img := decodeExport(t, res)
	if _, g, _, _ := img.At(12, 2).RGBA(); g>>8 != 255 {
		t.Errorf("top-right pixel should be green, got %v", img.At(12, 2))
	}
}

func TestExport_RegionAndScale(t *testing.T) {
	region := image.Rect(0, 8, 8, 16)
	res, err := Export(createPatternImage(16, 16), &region, 4)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if res.Width != 32 || res.Height != 32 {
		t.Errorf("dimensions: got %dx%d, want 32x32", res.Width, res.Height)
	}
	img := decodeExport(t, res)
	r, g, b, _ := img.At(31, 31).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("scaled pixel should stay pure blue, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestExport_InvalidInput(t *testing.T) {
	img := createPatternImage(16, 16)

	tests := []struct {
		name   string
		region *image.Rectangle
		scale  int
	}{
		{"region past right edge", &image.Rectangle{Max: image.Point{X: 17, Y: 4}}, 1},
		{"negative origin", &image.Rectangle{Min: image.Point{X: -1}, Max: image.Point{X: 4, Y: 4}}, 1},
		{"empty region", &image.Rectangle{Min: image.Point{X: 4, Y: 4}, Max: image.Point{X: 4, Y: 8}}, 1},
		{"negative scale", nil, -1},
		{"scale too large", nil, MaxExportScale + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Export(img, tt.region, tt.scale); err == nil {
				t.Error("Export should fail")
			}
		})
	}
}

func TestNamedRegion(t *testing.T) {
	tests := []struct {
		name string
		want image.Rectangle
	}{
		{"full", image.Rect(0, 0, 64, 32)},
		{"", image.Rect(0, 0, 64, 32)},
		{"top-left", image.Rect(0, 0, 32, 16)},
		{"top-right", image.Rect(32, 0, 64, 16)},
		{"bottom-left", image.Rect(0, 16, 32, 32)},
		{"bottom-right", image.Rect(32, 16, 64, 32)},
		{"top-half", image.Rect(0, 0, 64, 16)},
		{"bottom-half", image.Rect(0, 16, 64, 32)},
		{"left-half", image.Rect(0, 0, 32, 32)},
		{"right-half", image.Rect(32, 0, 64, 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NamedRegion(tt.name, 64, 32)
			if err != nil {
				t.Fatalf("NamedRegion(%q) failed: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("NamedRegion(%q): got %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if _, err := NamedRegion("middle", 64, 32); err == nil {
		t.Error("unknown region should fail")
	}
}
