// Package revision fingerprints project state and gates mutations on it.
//
// A revision is a pure function of the structurally significant fields of a
// project.State: the bone hierarchy and pivots, cube geometry and face
// mappings, texture identity, size and pixels, and the project resolution.
// Display-only fields (cube visibility and selection, project name) are
// excluded, so toggling them never invalidates a caller's revision.
//
// Callers present the revision they observed as ifRevision. A mismatch is
// rejected before any pixel work begins, which turns concurrent edits into
// explicit failures rather than silent overwrites.
package revision

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"strconv"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
)

// Length is the number of hex characters in a revision string.
const Length = 16

// Track computes the revision of a state.
func Track(state *project.State) string {
	h := sha256.New()
	w := writer{h: h}

	if state.Resolution != nil {
		w.str("res")
		w.int(state.Resolution.Width)
		w.int(state.Resolution.Height)
	}

	for _, n := range state.Nodes() {
		switch n.Kind {
		case project.NodeBone:
			w.str("bone")
			w.str(n.Bone.Name)
			w.str(n.Bone.Parent)
			w.vec(n.Bone.Pivot)
		case project.NodeCube:
			c := n.Cube
			w.str("cube")
			w.str(c.ID)
			w.str(c.Name)
			w.str(c.Bone)
			w.vec(c.From)
			w.vec(c.To)
			for _, name := range project.FaceOrder {
				f := c.Faces[name]
				if f == nil {
					continue
				}
				w.str(string(name))
				w.str(f.Texture)
				if f.UV != nil {
					w.int(f.UV.X1)
					w.int(f.UV.Y1)
					w.int(f.UV.X2)
					w.int(f.UV.Y2)
				} else {
					w.str("-")
				}
			}
		}
	}

	for _, t := range state.Textures {
		w.str("tex")
		w.str(t.ID)
		w.str(t.Name)
		w.int(t.Width)
		w.int(t.Height)
		if t.Pixels != nil {
			h.Write(t.Pixels.Data)
		}
	}

	return hex.EncodeToString(h.Sum(nil))[:Length]
}

// writer frames every field with its length so that adjacent fields cannot
// collide ("ab"+"c" vs "a"+"bc").
type writer struct {
	h hash.Hash
}

func (w writer) str(s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	w.h.Write(n[:])
	w.h.Write([]byte(s))
}

func (w writer) int(v int) {
	w.str(strconv.Itoa(v))
}

func (w writer) vec(v [3]float32) {
	var b [12]byte
	for i, f := range v {
		binary.BigEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	w.h.Write(b[:])
}
