package reproject

import (
	"image/color"
	"testing"

	"github.com/ironsheep/texture-atlas-mcp/internal/atlas"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// patterned returns a buffer where every pixel encodes its own position.
func patterned(w, h int) *project.PixelBuffer {
	b := project.NewPixelBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: uint8(x ^ y), A: 255})
		}
	}
	return b
}

func TestApply_IdentityRoundTrip(t *testing.T) {
	src := patterned(16, 16)
	pairs := []Pair{
		{From: project.Rect{X1: 0, Y1: 0, X2: 8, Y2: 8}, To: project.Rect{X1: 0, Y1: 0, X2: 8, Y2: 8}},
		{From: project.Rect{X1: 8, Y1: 4, X2: 16, Y2: 12}, To: project.Rect{X1: 8, Y1: 4, X2: 16, Y2: 12}},
	}
	dst := Texture(src, 16, 16, pairs)
	for _, p := range pairs {
		for y := p.To.Y1; y < p.To.Y2; y++ {
			for x := p.To.X1; x < p.To.X2; x++ {
				if dst.At(x, y) != src.At(x, y) {
					t.Fatalf("pixel %d,%d: got %v, want %v", x, y, dst.At(x, y), src.At(x, y))
				}
			}
		}
	}
	if dst.At(0, 15).A != 0 {
		t.Error("pixel outside every rectangle should stay transparent")
	}
}

func TestApply_Translate(t *testing.T) {
	src := patterned(16, 16)
	dst := Texture(src, 32, 32, []Pair{{
		From: project.Rect{X1: 0, Y1: 0, X2: 4, Y2: 4},
		To:   project.Rect{X1: 20, Y1: 24, X2: 24, Y2: 28},
	}})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got, want := dst.At(20+x, 24+y), src.At(x, y); got != want {
				t.Errorf("offset %d,%d: got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestApply_Upscale(t *testing.T) {
	src := patterned(4, 4)
	dst := Texture(src, 16, 16, []Pair{{
		From: project.Rect{X1: 0, Y1: 0, X2: 2, Y2: 2},
		To:   project.Rect{X1: 4, Y1: 4, X2: 8, Y2: 8},
	}})
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got, want := dst.At(4+x, 4+y), src.At(x/2, y/2); got != want {
				t.Errorf("offset %d,%d: got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestApply_ClipsDestination(t *testing.T) {
	src := patterned(8, 8)
	dst := project.NewPixelBuffer(8, 8)
	Apply(src, dst, []Pair{{
		From: project.Rect{X1: 0, Y1: 0, X2: 4, Y2: 4},
		To:   project.Rect{X1: 6, Y1: 6, X2: 10, Y2: 10},
	}})
	if dst.At(7, 7) != src.At(1, 1) {
		t.Errorf("clipped corner: got %v, want %v", dst.At(7, 7), src.At(1, 1))
	}
}

func TestApply_Deterministic(t *testing.T) {
	src := patterned(16, 16)
	pairs := []Pair{{
		From: project.Rect{X1: 1, Y1: 1, X2: 6, Y2: 4},
		To:   project.Rect{X1: 3, Y1: 7, X2: 14, Y2: 16},
	}}
	if !Texture(src, 16, 16, pairs).Equal(Texture(src, 16, 16, pairs)) {
		t.Error("two runs produced different buffers")
	}
}

func TestBuildPairs(t *testing.T) {
	before := &usage.Usage{Textures: []usage.TextureUsage{{
		ID: "tex", Name: "skin", Width: 16, Height: 16,
		Faces: []usage.FaceRef{
			{CubeID: "c1", CubeName: "body", Face: project.FaceNorth, UV: project.Rect{X2: 4, Y2: 4}},
		},
	}}}
	plan := &atlas.Plan{Width: 32, Height: 32, Assignments: []atlas.Assignment{
		{TextureID: "tex", CubeID: "c1", CubeName: "body", Face: project.FaceNorth, UV: project.Rect{X1: 16, X2: 24, Y2: 8}},
		{TextureID: "tex", CubeID: "c1", CubeName: "body", Face: project.FaceUp, UV: project.Rect{X2: 8, Y2: 8}},
	}}

	pairs := BuildPairs(before, plan)
	if len(pairs) != 1 {
		t.Fatalf("pairs: got %d, want 1 (new faces have no source)", len(pairs))
	}
	if pairs[0].From != (project.Rect{X2: 4, Y2: 4}) || pairs[0].To != (project.Rect{X1: 16, X2: 24, Y2: 8}) {
		t.Errorf("pair: %+v", pairs[0])
	}
	if got := Textures(pairs); len(got) != 1 || got[0] != "tex" {
		t.Errorf("Textures: %v", got)
	}
	if len(ForTexture(pairs, "other")) != 0 {
		t.Error("ForTexture should filter by texture key")
	}

	dst := Texture(patterned(16, 16), 32, 32, pairs)
	if dst.At(0, 0).A != 0 {
		t.Error("new face area should be left untouched")
	}
}
