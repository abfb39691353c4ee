// Package usage derives which texture pixels each cube face references.
//
// Usage is never stored: it is recomputed from a project.State whenever it is
// needed. Faces whose texture reference or UV cannot be resolved are collected
// in Usage.Unresolved instead of being skipped, so callers always see them.
//
// # Usage IDs
//
// ID hashes a canonically ordered view of a Usage. Callers present the id back
// as uvUsageId to assert "this is the layout I observed". Entries are sorted by
// (texture key, cube key, face) before hashing, so two usages with the same
// content always share an id regardless of the order they were built in.
package usage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// Reasons recorded on unresolved references.
const (
	UnresolvedMissingTexture = "missing_texture"
	UnresolvedMissingUV      = "missing_uv"
	UnresolvedOutOfBounds    = "uv_out_of_bounds"
	UnresolvedEmptyUV        = "empty_uv"
)

// FaceRef is one (cube, face, uv) triple referencing a texture.
type FaceRef struct {
	CubeID   string           `json:"cubeId"`
	CubeName string           `json:"cubeName"`
	Face     project.FaceName `json:"face"`
	UV       project.Rect     `json:"uv"`
}

// CubeKey returns the cube id, falling back to its name.
func (f FaceRef) CubeKey() string {
	if f.CubeID != "" {
		return f.CubeID
	}
	return f.CubeName
}

// Label formats the face as "cube:face" for messages.
func (f FaceRef) Label() string {
	return fmt.Sprintf("%s:%s", f.CubeName, f.Face)
}

// TextureUsage lists the faces referencing one texture.
type TextureUsage struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Faces  []FaceRef `json:"faces"`
}

// Key returns the texture id, falling back to its name.
func (t TextureUsage) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name
}

// UnresolvedRef is a face reference that cannot be resolved.
type UnresolvedRef struct {
	CubeID     string           `json:"cubeId"`
	CubeName   string           `json:"cubeName"`
	Face       project.FaceName `json:"face"`
	TextureRef string           `json:"textureRef"`
	Reason     string           `json:"reason"`
}

// Usage is the full derived usage of a project.
type Usage struct {
	Textures   []TextureUsage  `json:"textures"`
	Unresolved []UnresolvedRef `json:"unresolved"`
}

// Compute walks all cubes and faces of state.
func Compute(state *project.State) *Usage {
	u := &Usage{
		Textures:   make([]TextureUsage, len(state.Textures)),
		Unresolved: []UnresolvedRef{},
	}
	index := make(map[*project.Texture]int, len(state.Textures))
	for i, t := range state.Textures {
		u.Textures[i] = TextureUsage{ID: t.ID, Name: t.Name, Width: t.Width, Height: t.Height, Faces: []FaceRef{}}
		index[t] = i
	}

	for _, c := range state.Cubes {
		for _, name := range project.FaceOrder {
			f := c.Faces[name]
			if f == nil || f.Texture == "" {
				continue
			}
			unresolved := func(reason string) {
				u.Unresolved = append(u.Unresolved, UnresolvedRef{
					CubeID: c.ID, CubeName: c.Name, Face: name, TextureRef: f.Texture, Reason: reason,
				})
			}
			t := state.Texture(f.Texture)
			switch {
			case t == nil:
				unresolved(UnresolvedMissingTexture)
			case f.UV == nil:
				unresolved(UnresolvedMissingUV)
			case f.UV.Empty():
				unresolved(UnresolvedEmptyUV)
			case !f.UV.Within(t.Width, t.Height):
				unresolved(UnresolvedOutOfBounds)
			default:
				i := index[t]
				u.Textures[i].Faces = append(u.Textures[i].Faces, FaceRef{
					CubeID: c.ID, CubeName: c.Name, Face: name, UV: *f.UV,
				})
			}
		}
	}
	return u
}

// Filter narrows u to one texture (by id or name). Unresolved references to
// that texture are kept. An unknown ref yields an empty texture list.
func (u *Usage) Filter(ref string) *Usage {
	out := &Usage{Textures: []TextureUsage{}, Unresolved: []UnresolvedRef{}}
	var match *TextureUsage
	for i := range u.Textures {
		if u.Textures[i].ID == ref {
			match = &u.Textures[i]
			break
		}
	}
	if match == nil {
		for i := range u.Textures {
			if u.Textures[i].Name == ref {
				match = &u.Textures[i]
				break
			}
		}
	}
	if match != nil {
		out.Textures = append(out.Textures, *match)
	}
	for _, r := range u.Unresolved {
		if r.TextureRef == ref || (match != nil && (r.TextureRef == match.ID || r.TextureRef == match.Name)) {
			out.Unresolved = append(out.Unresolved, r)
		}
	}
	return out
}

// FaceCount returns the number of resolved face references.
func (u *Usage) FaceCount() int {
	n := 0
	for _, t := range u.Textures {
		n += len(t.Faces)
	}
	return n
}

// Referenced returns the textures that at least one face references.
func (u *Usage) Referenced() []TextureUsage {
	var out []TextureUsage
	for _, t := range u.Textures {
		if len(t.Faces) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Texture returns the usage entry for a texture id or name.
func (u *Usage) Texture(ref string) (TextureUsage, bool) {
	for _, t := range u.Textures {
		if t.ID == ref || t.Name == ref {
			return t, true
		}
	}
	return TextureUsage{}, false
}

// ID hashes a canonically ordered view of u.
func ID(u *Usage) string {
	type entry struct {
		texture string
		cube    string
		face    int
		line    string
	}
	var entries []entry
	for _, t := range u.Textures {
		entries = append(entries, entry{
			texture: t.Key(), face: -1,
			line: fmt.Sprintf("tex|%s|%s|%dx%d", t.Key(), t.Name, t.Width, t.Height),
		})
		for _, f := range t.Faces {
			entries = append(entries, entry{
				texture: t.Key(), cube: f.CubeKey(), face: project.FaceRank(f.Face),
				line: fmt.Sprintf("face|%s|%s|%s|%s", t.Key(), f.CubeKey(), f.Face, f.UV),
			})
		}
	}
	for _, r := range u.Unresolved {
		cube := r.CubeID
		if cube == "" {
			cube = r.CubeName
		}
		entries = append(entries, entry{
			texture: r.TextureRef, cube: cube, face: project.FaceRank(r.Face),
			line: fmt.Sprintf("unresolved|%s|%s|%s|%s", r.TextureRef, cube, r.Face, r.Reason),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.texture != b.texture {
			return a.texture < b.texture
		}
		if a.cube != b.cube {
			return a.cube < b.cube
		}
		if a.face != b.face {
			return a.face < b.face
		}
		return a.line < b.line
	})

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.line)
		sb.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// Guard fails with UsageMismatch when expected differs from ID(u).
// An empty expected id skips the check.
func Guard(u *Usage, expected string) error {
	if expected == "" {
		return nil
	}
	if current := ID(u); current != expected {
		return toolerr.UsageMismatch(expected, current)
	}
	return nil
}
