package host

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	s := project.NewStore(nil)
	if err := s.SetResolution(16, 16, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTexture(project.Texture{ID: "tex", Name: "skin", Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBone(project.Bone{Name: "root"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCube(project.Cube{ID: "c1", Name: "body", Bone: "root", To: mgl32.Vec3{2, 2, 2},
		Faces: map[project.FaceName]*project.Face{
			project.FaceNorth: {Texture: "tex", UV: &project.Rect{X2: 4, Y2: 4}},
		}}); err != nil {
		t.Fatal(err)
	}
	return NewMemory(s)
}

func TestMemory_PixelRoundTrip(t *testing.T) {
	m := newMemory(t)
	r, ok := Renderer(m)
	if !ok {
		t.Fatal("memory host should render pixels")
	}

	buf := project.NewPixelBuffer(16, 16)
	buf.Set(3, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img, err := r.RenderPixels(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateTexture("skin", img); err != nil {
		t.Fatal(err)
	}

	tex, err := m.ReadTexture("tex")
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadPixels(tex.Image, tex.Width, tex.Height)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(buf) {
		t.Error("pixels changed across render and read")
	}

	if _, err := r.ReadPixels(tex.Image, 8, 8); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("size check: got %v", err)
	}
}

func TestMemory_RenderIsACopy(t *testing.T) {
	m := newMemory(t)
	buf := project.NewPixelBuffer(2, 2)
	img, err := m.RenderPixels(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf.Set(0, 0, color.NRGBA{A: 255})
	if img.(*image.NRGBA).NRGBAAt(0, 0).A != 0 {
		t.Error("rendered image shares memory with the buffer")
	}
}

func TestMemory_ResolutionAndUV(t *testing.T) {
	m := newMemory(t)
	if err := m.SetProjectTextureResolution(32, 32, true); err != nil {
		t.Fatal(err)
	}
	if r := m.ProjectTextureResolution(); r == nil || r.Width != 32 {
		t.Fatalf("resolution: %+v", r)
	}
	uv := m.Snapshot().Cube("c1").Faces[project.FaceNorth].UV
	if *uv != (project.Rect{X2: 8, Y2: 8}) {
		t.Errorf("modifyUV should scale rects: got %s", uv)
	}

	if err := m.SetFaceUV("body", map[project.FaceName]project.Rect{project.FaceNorth: {X1: 4, Y1: 4, X2: 8, Y2: 8}}); err != nil {
		t.Fatal(err)
	}
	u, err := m.TextureUsageRaw()
	if err != nil {
		t.Fatal(err)
	}
	if u.FaceCount() != 1 || u.Textures[0].Faces[0].UV.X1 != 4 {
		t.Errorf("usage: %+v", u.Textures)
	}
}

func TestWithoutRenderer(t *testing.T) {
	e := WithoutRenderer(newMemory(t))
	if _, ok := Renderer(e); ok {
		t.Error("renderer should be hidden")
	}
	if _, err := e.ReadTexture("tex"); err != nil {
		t.Errorf("editor methods should still work: %v", err)
	}
}
