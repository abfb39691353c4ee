package paint

import (
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
)

// Mapping modes for patch painting.
const (
	ModeStretch = "stretch"
	ModeTile    = "tile"
)

// Mapping controls how a patch is laid into target rectangles.
type Mapping struct {
	// Mode is ModeStretch (default) or ModeTile.
	Mode string `json:"mode,omitempty"`

	// AnchorX and AnchorY set the tile phase relative to each target's
	// top-left corner.
	AnchorX int `json:"anchorX,omitempty"`
	AnchorY int `json:"anchorY,omitempty"`

	// Padding trims every target on all sides before mapping.
	Padding int `json:"padding,omitempty"`
}

func (m Mapping) validate() error {
	switch m.Mode {
	case "", ModeStretch, ModeTile:
	default:
		return fmt.Errorf("unknown mapping mode %q", m.Mode)
	}
	if m.Padding < 0 {
		return fmt.Errorf("mapping padding %d must not be negative", m.Padding)
	}
	return nil
}

// MapPatch writes patch into every target of dst according to m. Pixels
// outside the (padded) targets are never touched.
func MapPatch(dst, patch *project.PixelBuffer, targets []project.Rect, m Mapping) {
	if patch == nil || patch.Width == 0 || patch.Height == 0 {
		return
	}
	bounds := project.Rect{X2: dst.Width, Y2: dst.Height}
	for _, t := range targets {
		inner := project.Rect{X1: t.X1 + m.Padding, Y1: t.Y1 + m.Padding, X2: t.X2 - m.Padding, Y2: t.Y2 - m.Padding}
		if inner.Empty() {
			continue
		}
		clip := inner.Intersect(bounds)

		if m.Mode == ModeTile {
			ox, oy := t.X1+m.AnchorX, t.Y1+m.AnchorY
			for y := clip.Y1; y < clip.Y2; y++ {
				for x := clip.X1; x < clip.X2; x++ {
					dst.Set(x, y, patch.At(mod(x-ox, patch.Width), mod(y-oy, patch.Height)))
				}
			}
			continue
		}

		scaled := patch.Image()
		if patch.Width != inner.Width() || patch.Height != inner.Height() {
			scaled = imaging.Resize(scaled, inner.Width(), inner.Height(), imaging.NearestNeighbor)
		}
		for y := clip.Y1; y < clip.Y2; y++ {
			for x := clip.X1; x < clip.X2; x++ {
				dst.Set(x, y, scaled.NRGBAAt(x-inner.X1, y-inner.Y1))
			}
		}
	}
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
