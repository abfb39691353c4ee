// Package paint applies pixel operations to texture buffers.
//
// Two coordinate spaces are supported:
//
//   - SpaceFace runs ops on a canvas the size of the first target rectangle,
//     seeded with that rectangle's current pixels. The canvas is then mapped
//     into every target with the request's Mapping.
//   - SpaceTexture runs ops in absolute texture pixels. Each op must touch at
//     least one target, and writes are clipped to the union of the targets.
//
// Every op is validated before any pixel changes, and all work happens on a
// copy of the source buffer. The same ops on the same buffer always produce
// the same bytes.
package paint

import (
	"github.com/disintegration/imaging"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// Coordinate spaces.
const (
	SpaceFace    = "face"
	SpaceTexture = "texture"
)

// Request describes one paint pass over a texture.
type Request struct {
	Ops     []Op
	Space   string
	Targets []project.Rect
	Mapping Mapping
}

// Paint returns a new buffer with req applied to src. src is never modified.
//
// In texture space an empty target list means the whole texture. In face
// space at least one target is required.
func Paint(src *project.PixelBuffer, req Request) (*project.PixelBuffer, error) {
	ops, err := compile(req.Ops)
	if err != nil {
		return nil, err
	}
	if err := req.Mapping.validate(); err != nil {
		return nil, toolerr.InvalidPayload(err.Error())
	}

	switch req.Space {
	case SpaceFace:
		return paintFace(src, ops, req)
	case SpaceTexture, "":
		return paintTexture(src, ops, req.Targets)
	}
	return nil, toolerr.InvalidPayload("coordSpace must be \"face\" or \"texture\"")
}

func paintFace(src *project.PixelBuffer, ops []compiled, req Request) (*project.PixelBuffer, error) {
	if len(req.Targets) == 0 {
		return nil, toolerr.InvalidPayload("face space painting needs at least one target face")
	}
	first := req.Targets[0]
	face := project.FromImage(imaging.Crop(src.Image(), first.Image()))
	if face.Width != first.Width() || face.Height != first.Height() {
		// Target sticks out of the texture; start from a blank canvas.
		face = project.NewPixelBuffer(first.Width(), first.Height())
	}

	c := canvas{buf: face}
	for _, op := range ops {
		c.apply(op)
	}

	out := src.Clone()
	MapPatch(out, face, req.Targets, req.Mapping)
	return out, nil
}

func paintTexture(src *project.PixelBuffer, ops []compiled, targets []project.Rect) (*project.PixelBuffer, error) {
	var mask func(x, y int) bool
	if len(targets) > 0 {
		for i, op := range ops {
			if !op.touches(targets) {
				return nil, toolerr.OutsideTarget(len(targets)).With("opIndex", i)
			}
		}
		mask = func(x, y int) bool {
			for _, t := range targets {
				if t.Contains(x, y) {
					return true
				}
			}
			return false
		}
	}

	out := src.Clone()
	c := canvas{buf: out, mask: mask}
	for _, op := range ops {
		c.apply(op)
	}
	return out, nil
}
