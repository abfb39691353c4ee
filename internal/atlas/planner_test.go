package atlas

import (
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// sixFaceStore returns a 16x16 project with one 4x4x4 cube whose six faces all
// reference the texture "tex".
func sixFaceStore(t *testing.T) *project.Store {
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
	faces := make(map[project.FaceName]*project.Face)
	for i, f := range project.FaceOrder {
		faces[f] = &project.Face{Texture: "tex", UV: &project.Rect{X1: i, Y1: 0, X2: i + 1, Y2: 1}}
	}
	if _, err := s.AddCube(project.Cube{ID: "c1", Name: "body", Bone: "root", To: mgl32.Vec3{4, 4, 4}, Faces: faces}); err != nil {
		t.Fatal(err)
	}
	return s
}

func requestFor(s *project.Store, ceiling int, density float64) Request {
	state := s.Snapshot()
	return Request{
		Usage:      usage.Compute(state),
		State:      state,
		Resolution: state.Resolution,
		MaxWidth:   ceiling,
		MaxHeight:  ceiling,
		Density:    density,
	}
}

func TestPlan_OverflowAtCeiling(t *testing.T) {
	p := NewPlanner(nil)
	_, err := p.Plan(requestFor(sixFaceStore(t), 32, 4))
	if toolerr.ReasonOf(err) != toolerr.ReasonAtlasOverflow {
		t.Fatalf("got %v, want atlas_overflow", err)
	}
}

func TestPlan_GrowsWithinCeiling(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.Plan(requestFor(sixFaceStore(t), 128, 4))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Assignments) != 6 {
		t.Fatalf("assignments: got %d, want 6", len(plan.Assignments))
	}
	if plan.Width > 128 || plan.Height > 128 {
		t.Errorf("resolution %dx%d exceeds ceiling", plan.Width, plan.Height)
	}
	if plan.Width != 64 || plan.Height != 64 {
		t.Errorf("resolution: got %dx%d, want 64x64", plan.Width, plan.Height)
	}
	if err := plan.Validate(); err != nil {
		t.Error(err)
	}
	for _, a := range plan.Assignments {
		if a.UV.Width() != 16 || a.UV.Height() != 16 {
			t.Errorf("%s: got %s, want 16x16", a.Face, a.UV)
		}
	}

	grown := 0
	for _, s := range plan.Steps {
		if s.Kind == StepResolutionGrown {
			grown++
		}
	}
	if grown != 2 {
		t.Errorf("grown steps: got %d, want 2 (%v)", grown, plan.Steps)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	p := NewPlanner(nil)
	s := sixFaceStore(t)
	a, err := p.Plan(requestFor(s, 128, 4))
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Plan(requestFor(s, 128, 4))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("plans differ:\n%+v\n%+v", a, b)
	}
}

func TestPlan_IdempotentAfterApply(t *testing.T) {
	p := NewPlanner(nil)
	s := sixFaceStore(t)
	first, err := p.Plan(requestFor(s, 128, 4))
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetResolution(first.Width, first.Height, false); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplacePixels("tex", project.NewPixelBuffer(first.Width, first.Height)); err != nil {
		t.Fatal(err)
	}
	uvs := make(map[project.FaceName]project.Rect)
	for _, a := range first.Assignments {
		uvs[a.Face] = a.UV
	}
	if err := s.SetFaceUV("c1", uvs); err != nil {
		t.Fatal(err)
	}

	req := requestFor(s, 128, 4)
	second, err := p.Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	if second.Width != first.Width || second.Height != first.Height {
		t.Errorf("resolution changed: %dx%d -> %dx%d", first.Width, first.Height, second.Width, second.Height)
	}
	if !reflect.DeepEqual(first.Assignments, second.Assignments) {
		t.Errorf("assignments changed on replan")
	}
	if d := LayoutDiff(req.Usage, second); d != "" {
		t.Errorf("unchanged layout produced a diff:\n%s", d)
	}
}

func TestPlan_Padding(t *testing.T) {
	p := NewPlanner(nil)
	req := requestFor(sixFaceStore(t), 128, 4)
	req.Padding = 1
	plan, err := p.Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	first := plan.Assignments[0]
	if first.UV.X1 != 1 || first.UV.Y1 != 1 || first.UV.Width() != 16 {
		t.Errorf("first assignment: got %s, want 1,1-17,17", first.UV)
	}
	if err := plan.Validate(); err != nil {
		t.Error(err)
	}
	for i, a := range plan.Assignments {
		for _, b := range plan.Assignments[i+1:] {
			gap := project.Rect{X1: a.UV.X1 - 1, Y1: a.UV.Y1 - 1, X2: a.UV.X2 + 1, Y2: a.UV.Y2 + 1}
			if gap.Overlaps(b.UV) {
				t.Errorf("%s and %s closer than padding", a.Face, b.Face)
			}
		}
	}
}

func TestPlanAdaptive_ReducesDensity(t *testing.T) {
	p := NewPlanner(nil)
	plan, err := p.PlanAdaptive(requestFor(sixFaceStore(t), 32, 4))
	if err != nil {
		t.Fatalf("PlanAdaptive: %v", err)
	}
	if plan.Density != 2 {
		t.Errorf("density: got %v, want 2", plan.Density)
	}
	if plan.Width != 32 || plan.Height != 32 {
		t.Errorf("resolution: got %dx%d, want 32x32", plan.Width, plan.Height)
	}
	if len(plan.Steps) == 0 || plan.Steps[0].Kind != StepDensityReduced {
		t.Errorf("steps should start with density_reduced: %v", plan.Steps)
	}
}

func TestPlanAdaptive_FloorOverflow(t *testing.T) {
	s := project.NewStore(nil)
	if err := s.SetResolution(16, 16, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTexture(project.Texture{ID: "tex", Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBone(project.Bone{Name: "root"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCube(project.Cube{Name: "slab", Bone: "root", To: mgl32.Vec3{40, 40, 1},
		Faces: map[project.FaceName]*project.Face{
			project.FaceNorth: {Texture: "tex", UV: &project.Rect{X2: 16, Y2: 16}},
		}}); err != nil {
		t.Fatal(err)
	}
	_, err := NewPlanner(nil).PlanAdaptive(requestFor(s, 32, 4))
	if toolerr.ReasonOf(err) != toolerr.ReasonAtlasOverflow {
		t.Errorf("got %v, want atlas_overflow", err)
	}
}

func TestPlan_Errors(t *testing.T) {
	p := NewPlanner(nil)

	t.Run("resolution missing", func(t *testing.T) {
		req := requestFor(sixFaceStore(t), 128, 4)
		req.Resolution = nil
		if _, err := p.Plan(req); toolerr.ReasonOf(err) != toolerr.ReasonResolutionMiss {
			t.Errorf("got %v", err)
		}
	})

	t.Run("no textures", func(t *testing.T) {
		s := project.NewStore(nil)
		if err := s.SetResolution(16, 16, false); err != nil {
			t.Fatal(err)
		}
		if _, err := p.Plan(requestFor(s, 128, 4)); toolerr.ReasonOf(err) != toolerr.ReasonNoTextures {
			t.Errorf("got %v", err)
		}
	})

	t.Run("unresolved", func(t *testing.T) {
		s := sixFaceStore(t)
		if err := s.RemoveTexture("tex"); err != nil {
			t.Fatal(err)
		}
		if _, err := p.Plan(requestFor(s, 128, 4)); toolerr.ReasonOf(err) != toolerr.ReasonUnresolvedRefs {
			t.Errorf("got %v", err)
		}
	})
}

func TestNextDensity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{16, 8},
		{4, 2},
		{3, 1},
		{2, 1},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := NextDensity(tt.in); got != tt.want {
			t.Errorf("NextDensity(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLayoutDiff(t *testing.T) {
	p := NewPlanner(nil)
	req := requestFor(sixFaceStore(t), 128, 4)
	plan, err := p.Plan(req)
	if err != nil {
		t.Fatal(err)
	}
	d := LayoutDiff(req.Usage, plan)
	if !strings.Contains(d, "+++ layout@64x64") {
		t.Errorf("missing header:\n%s", d)
	}
	if !strings.Contains(d, "+tex body:north 0,0-16,16") {
		t.Errorf("missing planned north face:\n%s", d)
	}
	if !strings.Contains(d, "-tex body:north 0,0-1,1") {
		t.Errorf("missing previous north face:\n%s", d)
	}
}
