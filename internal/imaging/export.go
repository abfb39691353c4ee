package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// MaxExportScale bounds the integer upscale of an export.
const MaxExportScale = 16

// ExportResult contains the encoded texture image.
type ExportResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// Export encodes a region of img as a base64 PNG.
//
// A nil region exports the whole image. scale is an integer upscale factor
// (0 or 1 keeps the size); pixel-art textures are scaled with nearest-neighbor
// sampling so every texel stays a sharp block.
func Export(img image.Image, region *image.Rectangle, scale int) (*ExportResult, error) {
	bounds := img.Bounds()
	r := bounds
	if region != nil {
		r = region.Add(bounds.Min)
		if !r.In(bounds) {
			return nil, fmt.Errorf("export region (%d,%d)-(%d,%d) outside image bounds %dx%d",
				region.Min.X, region.Min.Y, region.Max.X, region.Max.Y, bounds.Dx(), bounds.Dy())
		}
		if r.Empty() {
			return nil, fmt.Errorf("invalid export region: x1 must be < x2, y1 must be < y2")
		}
	}
	if scale < 0 || scale > MaxExportScale {
		return nil, fmt.Errorf("export scale %d outside 1..%d", scale, MaxExportScale)
	}

	out := imaging.Crop(img, r)
	if scale > 1 {
		out = imaging.Resize(out, out.Bounds().Dx()*scale, out.Bounds().Dy()*scale, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode texture image: %w", err)
	}

	return &ExportResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// NamedRegion resolves a named region of a width x height texture.
func NamedRegion(name string, width, height int) (image.Rectangle, error) {
	midX, midY := width/2, height/2
	switch name {
	case "full", "":
		return image.Rect(0, 0, width, height), nil
	case "top-left":
		return image.Rect(0, 0, midX, midY), nil
	case "top-right":
		return image.Rect(midX, 0, width, midY), nil
	case "bottom-left":
		return image.Rect(0, midY, midX, height), nil
	case "bottom-right":
		return image.Rect(midX, midY, width, height), nil
	case "top-half":
		return image.Rect(0, 0, width, midY), nil
	case "bottom-half":
		return image.Rect(0, midY, width, height), nil
	case "left-half":
		return image.Rect(0, 0, midX, height), nil
	case "right-half":
		return image.Rect(midX, 0, width, height), nil
	}
	return image.Rectangle{}, fmt.Errorf("unknown region: %s", name)
}
