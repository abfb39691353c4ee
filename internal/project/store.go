package project

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store errors.
var (
	// ErrNotFound indicates that a bone, cube or texture reference does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates that a name or id is already taken.
	ErrDuplicate = errors.New("already exists")

	// ErrOutOfBounds indicates that a UV rectangle falls outside its texture.
	ErrOutOfBounds = errors.New("uv rectangle outside texture bounds")

	// ErrInvalid indicates a structurally invalid value (empty rect, bad size).
	ErrInvalid = errors.New("invalid value")
)

// Store is the mutable project mirror. Every mutation bumps Version so that
// revision fingerprints can be cached per version.
type Store struct {
	mu      sync.RWMutex
	state   *State
	version uint64
}

// NewStore wraps an initial state. A nil state starts an empty project.
func NewStore(state *State) *Store {
	if state == nil {
		state = &State{}
	}
	return &Store{state: state, version: 1}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Version returns a counter that changes on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Restore replaces the whole state with a copy of state.
func (s *Store) Restore(state *State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.version++
}

// Resolution returns the project texture resolution, or nil if unset.
func (s *Store) Resolution() *Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Resolution == nil {
		return nil
	}
	r := *s.state.Resolution
	return &r
}

// Texture returns a copy of the referenced texture, pixels included.
func (s *Store) Texture(ref string) (*Texture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.state.Texture(ref)
	if t == nil {
		return nil, fmt.Errorf("texture %q: %w", ref, ErrNotFound)
	}
	cp := *t
	cp.Pixels = t.Pixels.Clone()
	return &cp, nil
}

// AddBone appends a bone. Its parent, if any, must already exist.
func (s *Store) AddBone(b Bone) error {
	if b.Name == "" {
		return fmt.Errorf("bone name: %w", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Bone(b.Name) != nil {
		return fmt.Errorf("bone %q: %w", b.Name, ErrDuplicate)
	}
	if b.Parent != "" && s.state.Bone(b.Parent) == nil {
		return fmt.Errorf("parent bone %q: %w", b.Parent, ErrNotFound)
	}
	s.state.Bones = append(s.state.Bones, &b)
	s.version++
	return nil
}

// AddTexture appends a texture and returns its id. A missing id is generated;
// a missing pixel buffer is allocated transparent at Width x Height.
func (s *Store) AddTexture(t Texture) (string, error) {
	if t.Pixels == nil {
		if t.Width <= 0 || t.Height <= 0 {
			return "", fmt.Errorf("texture %q size %dx%d: %w", t.Name, t.Width, t.Height, ErrInvalid)
		}
		t.Pixels = NewPixelBuffer(t.Width, t.Height)
	} else {
		t.Pixels = t.Pixels.Clone()
		t.Width, t.Height = t.Pixels.Width, t.Pixels.Height
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.Textures {
		if existing.ID == t.ID || existing.Name == t.Name {
			return "", fmt.Errorf("texture %q: %w", t.Name, ErrDuplicate)
		}
	}
	s.state.Textures = append(s.state.Textures, &t)
	s.version++
	return t.ID, nil
}

// RemoveTexture deletes a texture. Faces still pointing at it are left
// dangling so the usage index can report them.
func (s *Store) RemoveTexture(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.state.Texture(ref)
	if t == nil {
		return fmt.Errorf("texture %q: %w", ref, ErrNotFound)
	}
	kept := s.state.Textures[:0]
	for _, existing := range s.state.Textures {
		if existing != t {
			kept = append(kept, existing)
		}
	}
	s.state.Textures = kept
	s.version++
	return nil
}

// AddCube appends a cube and returns its id.
func (s *Store) AddCube(c Cube) (string, error) {
	if c.Name == "" {
		return "", fmt.Errorf("cube name: %w", ErrInvalid)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := c.clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Bone(cp.Bone) == nil {
		return "", fmt.Errorf("cube %q bone %q: %w", cp.Name, cp.Bone, ErrNotFound)
	}
	for _, existing := range s.state.Cubes {
		if existing.ID == cp.ID {
			return "", fmt.Errorf("cube %q: %w", cp.ID, ErrDuplicate)
		}
	}
	for _, name := range FaceOrder {
		if err := s.validateFace(cp, name, cp.Faces[name]); err != nil {
			return "", err
		}
	}
	s.state.Cubes = append(s.state.Cubes, cp)
	s.version++
	return cp.ID, nil
}

// SetFaceUV replaces the UV rectangles of the given faces of one cube. Faces
// that do not exist yet are created without a texture. The update is all or
// nothing.
func (s *Store) SetFaceUV(cubeRef string, faces map[FaceName]Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.state.Cube(cubeRef)
	if c == nil {
		return fmt.Errorf("cube %q: %w", cubeRef, ErrNotFound)
	}
	next := c.clone()
	if next.Faces == nil {
		next.Faces = make(map[FaceName]*Face)
	}
	for name, uv := range faces {
		if FaceRank(name) == len(FaceOrder) {
			return fmt.Errorf("face %q: %w", name, ErrInvalid)
		}
		f := next.Faces[name]
		if f == nil {
			f = &Face{}
			next.Faces[name] = f
		}
		r := uv
		f.UV = &r
		if err := s.validateFace(next, name, f); err != nil {
			return err
		}
	}
	*c = *next
	s.version++
	return nil
}

// AssignFace points one face at a texture rectangle.
func (s *Store) AssignFace(cubeRef string, name FaceName, textureRef string, uv Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.state.Cube(cubeRef)
	if c == nil {
		return fmt.Errorf("cube %q: %w", cubeRef, ErrNotFound)
	}
	f := &Face{Texture: textureRef, UV: &uv}
	if err := s.validateFace(c, name, f); err != nil {
		return err
	}
	if c.Faces == nil {
		c.Faces = make(map[FaceName]*Face)
	}
	c.Faces[name] = f
	s.version++
	return nil
}

// SetResolution sets the project texture resolution. With modifyUV, every face
// rectangle is scaled by the same factor as the resolution.
func (s *Store) SetResolution(width, height int, modifyUV bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resolution %dx%d: %w", width, height, ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.state.Resolution
	if modifyUV && old != nil && old.Width > 0 && old.Height > 0 {
		sx := float64(width) / float64(old.Width)
		sy := float64(height) / float64(old.Height)
		for _, c := range s.state.Cubes {
			for _, f := range c.Faces {
				if f != nil && f.UV != nil {
					scaled := f.UV.Scale(sx, sy)
					f.UV = &scaled
				}
			}
		}
	}
	s.state.Resolution = &Resolution{Width: width, Height: height}
	s.version++
	return nil
}

// ReplacePixels swaps in a new pixel buffer for a texture. The texture takes
// the size of buf; the swap is refused if any face rectangle would fall
// outside the new bounds.
func (s *Store) ReplacePixels(ref string, buf *PixelBuffer) error {
	if buf == nil || len(buf.Data) != buf.Width*buf.Height*4 {
		return fmt.Errorf("pixel buffer: %w", ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.state.Texture(ref)
	if t == nil {
		return fmt.Errorf("texture %q: %w", ref, ErrNotFound)
	}
	if buf.Width != t.Width || buf.Height != t.Height {
		for _, c := range s.state.Cubes {
			for _, name := range FaceOrder {
				f := c.Faces[name]
				if f == nil || f.UV == nil || s.state.Texture(f.Texture) != t {
					continue
				}
				if !f.UV.Within(buf.Width, buf.Height) {
					return fmt.Errorf("cube %q face %s uv %s in %dx%d: %w",
						c.Name, name, f.UV, buf.Width, buf.Height, ErrOutOfBounds)
				}
			}
		}
	}
	t.Pixels = buf.Clone()
	t.Width, t.Height = buf.Width, buf.Height
	s.version++
	return nil
}

func (s *Store) validateFace(c *Cube, name FaceName, f *Face) error {
	if f == nil || f.UV == nil {
		return nil
	}
	if f.UV.Empty() {
		return fmt.Errorf("cube %q face %s uv %s: %w", c.Name, name, f.UV, ErrInvalid)
	}
	t := s.state.Texture(f.Texture)
	if t == nil {
		return nil
	}
	if !f.UV.Within(t.Width, t.Height) {
		return fmt.Errorf("cube %q face %s uv %s in %dx%d: %w", c.Name, name, f.UV, t.Width, t.Height, ErrOutOfBounds)
	}
	return nil
}
