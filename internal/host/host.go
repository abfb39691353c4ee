// Package host defines the editing surface the texture engine drives, and an
// in-memory implementation backed by a project.Store.
//
// Pixel rendering is an optional capability. Callers type-assert an Editor to
// PixelRenderer and report NotImplemented when it is missing.
package host

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// TextureImage is a host-side texture image.
type TextureImage struct {
	Image  image.Image
	Width  int
	Height int
}

// Editor is the host editing surface.
type Editor interface {
	// Snapshot and Version expose the project for revisions and geometry.
	Snapshot() *project.State
	Version() uint64

	ReadTexture(ref string) (*TextureImage, error)
	UpdateTexture(ref string, img image.Image) error
	ProjectTextureResolution() *project.Resolution
	SetProjectTextureResolution(width, height int, modifyUV bool) error
	SetFaceUV(cubeRef string, faces map[project.FaceName]project.Rect) error
	TextureUsageRaw() (*usage.Usage, error)
}

// PixelRenderer converts between host images and raw pixel buffers.
type PixelRenderer interface {
	RenderPixels(buf *project.PixelBuffer) (image.Image, error)
	ReadPixels(img image.Image, width, height int) (*project.PixelBuffer, error)
}

// ErrSizeMismatch is returned when an image does not have the expected size.
var ErrSizeMismatch = errors.New("image size mismatch")

// Memory is an Editor and PixelRenderer over a project.Store.
type Memory struct {
	store *project.Store
}

// NewMemory wraps store.
func NewMemory(store *project.Store) *Memory {
	return &Memory{store: store}
}

// Store returns the backing store.
func (m *Memory) Store() *project.Store { return m.store }

// Snapshot implements Editor.
func (m *Memory) Snapshot() *project.State { return m.store.Snapshot() }

// Version implements Editor.
func (m *Memory) Version() uint64 { return m.store.Version() }

// ReadTexture implements Editor.
func (m *Memory) ReadTexture(ref string) (*TextureImage, error) {
	t, err := m.store.Texture(ref)
	if err != nil {
		return nil, err
	}
	buf := t.Pixels
	if buf == nil {
		buf = project.NewPixelBuffer(t.Width, t.Height)
	}
	return &TextureImage{Image: buf.Image(), Width: t.Width, Height: t.Height}, nil
}

// UpdateTexture implements Editor.
func (m *Memory) UpdateTexture(ref string, img image.Image) error {
	return m.store.ReplacePixels(ref, project.FromImage(img))
}

// ProjectTextureResolution implements Editor.
func (m *Memory) ProjectTextureResolution() *project.Resolution {
	return m.store.Resolution()
}

// SetProjectTextureResolution implements Editor.
func (m *Memory) SetProjectTextureResolution(width, height int, modifyUV bool) error {
	return m.store.SetResolution(width, height, modifyUV)
}

// SetFaceUV implements Editor.
func (m *Memory) SetFaceUV(cubeRef string, faces map[project.FaceName]project.Rect) error {
	return m.store.SetFaceUV(cubeRef, faces)
}

// TextureUsageRaw implements Editor.
func (m *Memory) TextureUsageRaw() (*usage.Usage, error) {
	return usage.Compute(m.store.Snapshot()), nil
}

// RenderPixels implements PixelRenderer.
func (m *Memory) RenderPixels(buf *project.PixelBuffer) (image.Image, error) {
	if buf == nil {
		return nil, fmt.Errorf("render: nil buffer")
	}
	return imaging.Clone(buf.Image()), nil
}

// ReadPixels implements PixelRenderer.
func (m *Memory) ReadPixels(img image.Image, width, height int) (*project.PixelBuffer, error) {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return nil, fmt.Errorf("read pixels: got %dx%d, want %dx%d: %w", b.Dx(), b.Dy(), width, height, ErrSizeMismatch)
	}
	return project.FromImage(img), nil
}

// editorOnly hides the PixelRenderer methods of an Editor.
type editorOnly struct {
	Editor
}

// WithoutRenderer returns e restricted to the Editor interface.
func WithoutRenderer(e Editor) Editor {
	return editorOnly{e}
}

// Renderer returns e's PixelRenderer, if it has one.
func Renderer(e Editor) (PixelRenderer, bool) {
	r, ok := e.(PixelRenderer)
	return r, ok
}
