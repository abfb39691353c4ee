package usage

import (
	"math"
	"sort"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// Warning codes reported by Warnings.
const (
	WarnUnresolvedRefs      = "unresolved_refs"
	WarnUvOverlap           = "uv_overlap"
	WarnUvScaleMismatch     = "uv_scale_mismatch"
	WarnNoTextures          = "no_textures"
	WarnResolutionMissing   = "resolution_missing"
	WarnTextureSizeMismatch = "texture_size_mismatch"
)

// PixelSpan converts a world-unit length to pixels at density. Faces always
// get at least one pixel per axis.
func PixelSpan(units, density float64) int {
	n := int(math.Ceil(units*density - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// InferDensity estimates pixels per world unit from the current layout: the
// most common rounded ratio between face rectangles and face sizes, ties going
// to the larger ratio. It returns 0 when no face has measurable size.
func InferDensity(u *Usage, state *project.State) float64 {
	counts := make(map[int]int)
	for _, t := range u.Textures {
		for _, f := range t.Faces {
			c := state.Cube(f.CubeKey())
			if c == nil {
				continue
			}
			w, h := c.FaceSize(f.Face)
			var ratio float64
			switch {
			case w > 0:
				ratio = float64(f.UV.Width()) / w
			case h > 0:
				ratio = float64(f.UV.Height()) / h
			default:
				continue
			}
			r := int(math.Round(ratio))
			if r < 1 {
				r = 1
			}
			counts[r]++
		}
	}
	best, bestCount := 0, 0
	for r, n := range counts {
		if n > bestCount || (n == bestCount && r > best) {
			best, bestCount = r, n
		}
	}
	return float64(best)
}

// CheckOverlap fails with UvOverlap on the first pair of faces that share
// pixels on the same texture. Pairs are visited in canonical order.
func CheckOverlap(u *Usage) error {
	for _, t := range u.Textures {
		faces := sortedFaces(t.Faces)
		for i := 0; i < len(faces); i++ {
			for j := i + 1; j < len(faces); j++ {
				if faces[i].UV.Overlaps(faces[j].UV) {
					return toolerr.UvOverlap(t.Key(), faces[i].Label(), faces[j].Label())
				}
			}
		}
	}
	return nil
}

// CheckScale fails with UvScaleMismatch on the first face whose rectangle is
// more than one pixel off the size the planner would give it at density.
func CheckScale(u *Usage, state *project.State, density float64) error {
	if density <= 0 {
		return nil
	}
	for _, t := range u.Textures {
		for _, f := range sortedFaces(t.Faces) {
			c := state.Cube(f.CubeKey())
			if c == nil {
				continue
			}
			w, h := c.FaceSize(f.Face)
			if off(f.UV.Width(), w, density) || off(f.UV.Height(), h, density) {
				actual := 0.0
				if w > 0 {
					actual = float64(f.UV.Width()) / w
				} else if h > 0 {
					actual = float64(f.UV.Height()) / h
				}
				return toolerr.UvScaleMismatch(t.Key(), f.Label(), density, math.Round(actual*100)/100)
			}
		}
	}
	return nil
}

func off(pixels int, units, density float64) bool {
	if units <= 0 {
		return false
	}
	d := pixels - PixelSpan(units, density)
	return d > 1 || d < -1
}

// Check runs the consistency checks in the order a paint attempt needs them:
// unresolved references, overlaps, then scale.
func Check(u *Usage, state *project.State, density float64) error {
	if n := len(u.Unresolved); n > 0 {
		return toolerr.UnresolvedReferences(n)
	}
	if err := CheckOverlap(u); err != nil {
		return err
	}
	return CheckScale(u, state, density)
}

// Warnings lists advisory codes for a usage, without failing.
func Warnings(u *Usage, state *project.State, res *project.Resolution) []string {
	warnings := []string{}
	if len(u.Unresolved) > 0 {
		warnings = append(warnings, WarnUnresolvedRefs)
	}
	if u.FaceCount() == 0 {
		warnings = append(warnings, WarnNoTextures)
	}
	if res == nil {
		warnings = append(warnings, WarnResolutionMissing)
	}
	if CheckOverlap(u) != nil {
		warnings = append(warnings, WarnUvOverlap)
	}
	if CheckScale(u, state, InferDensity(u, state)) != nil {
		warnings = append(warnings, WarnUvScaleMismatch)
	}
	if res != nil {
		for _, t := range u.Textures {
			if t.Width != res.Width || t.Height != res.Height {
				warnings = append(warnings, WarnTextureSizeMismatch)
				break
			}
		}
	}
	return warnings
}

func sortedFaces(faces []FaceRef) []FaceRef {
	out := make([]FaceRef, len(faces))
	copy(out, faces)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CubeKey() != out[j].CubeKey() {
			return out[i].CubeKey() < out[j].CubeKey()
		}
		return project.FaceRank(out[i].Face) < project.FaceRank(out[j].Face)
	})
	return out
}
