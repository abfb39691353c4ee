// Package reproject moves face pixels from their previous rectangles into the
// rectangles of a new atlas plan.
//
// Sampling is nearest-neighbor, so output depends only on the inputs. Faces
// without a previous rectangle get no Pair and their destination area is left
// as it was; reprojection never invents content.
package reproject

import (
	"sort"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/texture-atlas-mcp/internal/atlas"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// Pair maps one face's previous rectangle to its planned rectangle.
type Pair struct {
	TextureID string           `json:"textureId"`
	CubeName  string           `json:"cubeName"`
	Face      project.FaceName `json:"face"`
	From      project.Rect     `json:"from"`
	To        project.Rect     `json:"to"`
}

// BuildPairs matches each planned assignment against the face's rectangle in
// before, by texture, cube and face. The result is in plan order.
func BuildPairs(before *usage.Usage, plan *atlas.Plan) []Pair {
	type key struct {
		texture, cube string
		face          project.FaceName
	}
	prev := make(map[key]project.Rect)
	for _, t := range before.Textures {
		for _, f := range t.Faces {
			prev[key{t.Key(), f.CubeKey(), f.Face}] = f.UV
		}
	}

	var pairs []Pair
	for _, a := range plan.Assignments {
		from, ok := prev[key{a.TextureID, a.CubeKey(), a.Face}]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{
			TextureID: a.TextureID,
			CubeName:  a.CubeName,
			Face:      a.Face,
			From:      from,
			To:        a.UV,
		})
	}
	return pairs
}

// ForTexture returns the pairs belonging to one texture key.
func ForTexture(pairs []Pair, textureKey string) []Pair {
	var out []Pair
	for _, p := range pairs {
		if p.TextureID == textureKey {
			out = append(out, p)
		}
	}
	return out
}

// Textures lists the distinct texture keys in pairs, sorted.
func Textures(pairs []Pair) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, p := range pairs {
		if !seen[p.TextureID] {
			seen[p.TextureID] = true
			keys = append(keys, p.TextureID)
		}
	}
	sort.Strings(keys)
	return keys
}

// Apply samples src into dst for every pair. dst is modified in place and
// should be a working copy. Rectangles are clipped to their buffers.
func Apply(src, dst *project.PixelBuffer, pairs []Pair) {
	srcImg := src.Image()
	srcBounds := project.Rect{X2: src.Width, Y2: src.Height}
	dstBounds := project.Rect{X2: dst.Width, Y2: dst.Height}

	for _, p := range pairs {
		from := p.From.Intersect(srcBounds)
		if from.Empty() || p.To.Empty() {
			continue
		}
		patch := imaging.Crop(srcImg, from.Image())
		if from.Width() != p.To.Width() || from.Height() != p.To.Height() {
			patch = imaging.Resize(patch, p.To.Width(), p.To.Height(), imaging.NearestNeighbor)
		}

		to := p.To.Intersect(dstBounds)
		for y := to.Y1; y < to.Y2; y++ {
			srcRow := (y - p.To.Y1) * patch.Stride
			dstRow := (y*dst.Width + to.X1) * 4
			n := to.Width() * 4
			off := (to.X1 - p.To.X1) * 4
			copy(dst.Data[dstRow:dstRow+n], patch.Pix[srcRow+off:srcRow+off+n])
		}
	}
}

// Texture builds a width x height buffer with every pair of one texture
// reprojected from src. Areas outside the planned rectangles are transparent.
func Texture(src *project.PixelBuffer, width, height int, pairs []Pair) *project.PixelBuffer {
	dst := project.NewPixelBuffer(width, height)
	Apply(src, dst, pairs)
	return dst
}
