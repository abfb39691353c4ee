package project

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FaceName identifies one of the six faces of a cube.
type FaceName string

// Cube faces.
const (
	FaceNorth FaceName = "north"
	FaceEast  FaceName = "east"
	FaceSouth FaceName = "south"
	FaceWest  FaceName = "west"
	FaceUp    FaceName = "up"
	FaceDown  FaceName = "down"
)

// FaceOrder is the canonical face ordering used wherever iteration order matters.
var FaceOrder = []FaceName{FaceNorth, FaceEast, FaceSouth, FaceWest, FaceUp, FaceDown}

// FaceRank returns the position of f in FaceOrder, or len(FaceOrder) if unknown.
func FaceRank(f FaceName) int {
	for i, name := range FaceOrder {
		if name == f {
			return i
		}
	}
	return len(FaceOrder)
}

// ParseFaceName validates a face name.
func ParseFaceName(s string) (FaceName, error) {
	f := FaceName(s)
	if FaceRank(f) == len(FaceOrder) {
		return "", fmt.Errorf("unknown face %q", s)
	}
	return f, nil
}

// Rect is a pixel rectangle. X1/Y1 are inclusive, X2/Y2 exclusive.
type Rect struct {
	X1 int `json:"x1" yaml:"x1"`
	Y1 int `json:"y1" yaml:"y1"`
	X2 int `json:"x2" yaml:"x2"`
	Y2 int `json:"y2" yaml:"y2"`
}

// Width returns X2 - X1.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns Y2 - Y1.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.X2 <= r.X1 || r.Y2 <= r.Y1 }

// Overlaps reports whether r and o share at least one pixel.
func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}

// Intersect returns the common area of r and o (possibly empty).
func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
		X2: min(r.X2, o.X2),
		Y2: min(r.Y2, o.Y2),
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// Within reports whether r lies inside [0,width]x[0,height].
func (r Rect) Within(width, height int) bool {
	return r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= width && r.Y2 <= height
}

// Contains reports whether pixel (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// String formats r as "x1,y1-x2,y2".
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", r.X1, r.Y1, r.X2, r.Y2)
}

// Scale multiplies all coordinates, rounding to the nearest pixel.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{
		X1: int(math.Round(float64(r.X1) * sx)),
		Y1: int(math.Round(float64(r.Y1) * sy)),
		X2: int(math.Round(float64(r.X2) * sx)),
		Y2: int(math.Round(float64(r.Y2) * sy)),
	}
}

// Resolution is the project-wide texture resolution.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Bone is a named pivot in the model hierarchy.
type Bone struct {
	Name   string     `json:"name" yaml:"name"`
	Parent string     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Pivot  mgl32.Vec3 `json:"pivot" yaml:"pivot"`
}

// Face maps one cube face to a texture rectangle.
type Face struct {
	Texture string `json:"texture,omitempty" yaml:"texture,omitempty"`
	UV      *Rect  `json:"uv,omitempty" yaml:"uv,omitempty"`
}

// Cube is an axis-aligned box owned by a bone.
type Cube struct {
	ID    string             `json:"id" yaml:"id"`
	Name  string             `json:"name" yaml:"name"`
	Bone  string             `json:"bone" yaml:"bone"`
	From  mgl32.Vec3         `json:"from" yaml:"from"`
	To    mgl32.Vec3         `json:"to" yaml:"to"`
	Faces map[FaceName]*Face `json:"faces,omitempty" yaml:"faces,omitempty"`

	// Display-only; excluded from revisions.
	Visible  bool `json:"visible" yaml:"visible"`
	Selected bool `json:"selected" yaml:"selected"`
}

// Key returns the cube id, falling back to its name.
func (c *Cube) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

// Size returns the absolute extent of the cube on each axis.
func (c *Cube) Size() mgl32.Vec3 {
	d := c.To.Sub(c.From)
	return mgl32.Vec3{abs32(d.X()), abs32(d.Y()), abs32(d.Z())}
}

// FaceSize returns the world-unit width and height of a face.
func (c *Cube) FaceSize(f FaceName) (float64, float64) {
	s := c.Size()
	switch f {
	case FaceNorth, FaceSouth:
		return float64(s.X()), float64(s.Y())
	case FaceEast, FaceWest:
		return float64(s.Z()), float64(s.Y())
	case FaceUp, FaceDown:
		return float64(s.X()), float64(s.Z())
	}
	return 0, 0
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// Texture is an image owned by the project.
type Texture struct {
	ID     string       `json:"id" yaml:"id"`
	Name   string       `json:"name" yaml:"name"`
	Width  int          `json:"width" yaml:"width"`
	Height int          `json:"height" yaml:"height"`
	Pixels *PixelBuffer `json:"-" yaml:"-"`
}

// Key returns the texture id, falling back to its name.
func (t *Texture) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.Name
}

// State is the complete project snapshot.
type State struct {
	Name       string      `json:"name" yaml:"name"`
	Resolution *Resolution `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Bones      []*Bone     `json:"bones" yaml:"bones"`
	Cubes      []*Cube     `json:"cubes" yaml:"cubes"`
	Textures   []*Texture  `json:"textures" yaml:"textures"`
}

// Bone returns the bone with the given name.
func (s *State) Bone(name string) *Bone {
	for _, b := range s.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Cube resolves a cube by id first, then by name.
func (s *State) Cube(ref string) *Cube {
	if ref == "" {
		return nil
	}
	for _, c := range s.Cubes {
		if c.ID == ref {
			return c
		}
	}
	for _, c := range s.Cubes {
		if c.Name == ref {
			return c
		}
	}
	return nil
}

// Texture resolves a texture by id first, then by name.
func (s *State) Texture(ref string) *Texture {
	if ref == "" {
		return nil
	}
	for _, t := range s.Textures {
		if t.ID == ref {
			return t
		}
	}
	for _, t := range s.Textures {
		if t.Name == ref {
			return t
		}
	}
	return nil
}

// Clone returns a deep copy of s, including pixel buffers.
func (s *State) Clone() *State {
	out := &State{Name: s.Name}
	if s.Resolution != nil {
		r := *s.Resolution
		out.Resolution = &r
	}
	out.Bones = make([]*Bone, len(s.Bones))
	for i, b := range s.Bones {
		cp := *b
		out.Bones[i] = &cp
	}
	out.Cubes = make([]*Cube, len(s.Cubes))
	for i, c := range s.Cubes {
		out.Cubes[i] = c.clone()
	}
	out.Textures = make([]*Texture, len(s.Textures))
	for i, t := range s.Textures {
		cp := *t
		cp.Pixels = t.Pixels.Clone()
		out.Textures[i] = &cp
	}
	return out
}

func (c *Cube) clone() *Cube {
	cp := *c
	if c.Faces != nil {
		cp.Faces = make(map[FaceName]*Face, len(c.Faces))
		for name, f := range c.Faces {
			if f == nil {
				continue
			}
			fc := *f
			if f.UV != nil {
				uv := *f.UV
				fc.UV = &uv
			}
			cp.Faces[name] = &fc
		}
	}
	return &cp
}
