// Package atlas bin-packs the faces referenced by a usage into a bounded
// texture resolution.
//
// # Sizing
//
// Each referenced face needs a rectangle of ceil(faceSize x density) pixels per
// axis (at least 1), plus padding on every side. The assigned UV is the inner
// rectangle; the padding ring stays empty.
//
// # Determinism
//
// Faces are packed in a stable (texture, cube, face) order with a shelf packer,
// so identical inputs always produce identical plans. Replanning a plan's own
// output at its resolution reproduces the same assignments.
//
// # Growth Policy
//
//  1. Pack at the current resolution.
//  2. If that fails, double both dimensions (rounded up to the canonical step)
//     until the ceiling is reached.
//  3. If the ceiling still fails, Plan returns AtlasOverflow. PlanAdaptive then
//     halves the density toward a floor of 1 and plans again; at the floor the
//     overflow is final.
//
// Plans are never cached: every request recomputes from scratch.
package atlas

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// DefaultStep is the canonical rounding step for grown resolutions.
const DefaultStep = 16

// Step kinds recorded in Plan.Steps.
const (
	StepResolutionGrown = "resolution_grown"
	StepDensityReduced  = "density_reduced"
	StepPacked          = "packed"
)

// Request holds the planning inputs.
type Request struct {
	// Usage lists the faces to pack. It must have no unresolved references.
	Usage *usage.Usage

	// State provides cube geometry for face sizes.
	State *project.State

	// Resolution is the current project texture resolution.
	Resolution *project.Resolution

	// MaxWidth and MaxHeight bound growth. Values below the current
	// resolution are raised to it; the planner never shrinks.
	MaxWidth  int
	MaxHeight int

	// Padding is the empty border in pixels around every face rectangle.
	Padding int

	// Density is the number of pixels per world unit.
	Density float64

	// Step is the rounding step for grown resolutions (DefaultStep if 0).
	Step int
}

// Assignment is one face's planned rectangle.
type Assignment struct {
	TextureID string           `json:"textureId"`
	CubeID    string           `json:"cubeId"`
	CubeName  string           `json:"cubeName"`
	Face      project.FaceName `json:"face"`
	UV        project.Rect     `json:"uv"`
}

// CubeKey returns the cube id, falling back to its name.
func (a Assignment) CubeKey() string {
	if a.CubeID != "" {
		return a.CubeID
	}
	return a.CubeName
}

// Step is an advisory trace entry. Nothing reads Steps for control flow.
type Step struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Width   int     `json:"width,omitempty"`
	Height  int     `json:"height,omitempty"`
	Density float64 `json:"density,omitempty"`
}

// Plan is the result of a planning request.
type Plan struct {
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Density     float64      `json:"density"`
	Padding     int          `json:"padding"`
	Assignments []Assignment `json:"assignments"`
	Steps       []Step       `json:"steps"`
}

// Lookup finds the assignment for a cube face.
func (p *Plan) Lookup(cubeKey string, face project.FaceName) (Assignment, bool) {
	for _, a := range p.Assignments {
		if (a.CubeID == cubeKey || a.CubeName == cubeKey) && a.Face == face {
			return a, true
		}
	}
	return Assignment{}, false
}

// Validate checks that assignments are pairwise disjoint and inside the plan.
func (p *Plan) Validate() error {
	for i, a := range p.Assignments {
		if a.UV.Empty() || !a.UV.Within(p.Width, p.Height) {
			return fmt.Errorf("assignment %s:%s %s outside %dx%d", a.CubeName, a.Face, a.UV, p.Width, p.Height)
		}
		for _, b := range p.Assignments[i+1:] {
			if a.UV.Overlaps(b.UV) {
				return fmt.Errorf("assignments %s:%s and %s:%s overlap", a.CubeName, a.Face, b.CubeName, b.Face)
			}
		}
	}
	return nil
}

// Planner computes atlas plans.
type Planner struct {
	log *zap.Logger
}

// NewPlanner creates a planner. A nil logger disables logging.
func NewPlanner(log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{log: log}
}

type item struct {
	assignment Assignment
	textureKey string
	w, h       int
}

// Plan packs the usage at the requested density, growing the resolution up to
// the ceiling. It fails with AtlasOverflow when the ceiling is not enough.
func (p *Planner) Plan(req Request) (*Plan, error) {
	if req.Resolution == nil || req.Resolution.Width <= 0 || req.Resolution.Height <= 0 {
		return nil, toolerr.ResolutionMissing()
	}
	if req.Usage == nil || req.Usage.FaceCount() == 0 {
		if req.Usage != nil && len(req.Usage.Unresolved) > 0 {
			return nil, toolerr.UnresolvedReferences(len(req.Usage.Unresolved))
		}
		return nil, toolerr.NoTextures()
	}
	if n := len(req.Usage.Unresolved); n > 0 {
		return nil, toolerr.UnresolvedReferences(n)
	}
	if req.Padding < 0 {
		return nil, toolerr.InvalidPayload("padding must not be negative")
	}
	density := req.Density
	if density <= 0 {
		density = 1
	}
	step := req.Step
	if step <= 0 {
		step = DefaultStep
	}

	items := p.items(req, density)

	w, h := req.Resolution.Width, req.Resolution.Height
	maxW, maxH := max(req.MaxWidth, w), max(req.MaxHeight, h)

	var steps []Step
	for {
		if rects, ok := pack(items, w, h); ok {
			plan := &Plan{Width: w, Height: h, Density: density, Padding: req.Padding, Steps: steps}
			plan.Assignments = make([]Assignment, len(items))
			for i, it := range items {
				a := it.assignment
				a.UV = project.Rect{
					X1: rects[i].X1 + req.Padding,
					Y1: rects[i].Y1 + req.Padding,
					X2: rects[i].X2 - req.Padding,
					Y2: rects[i].Y2 - req.Padding,
				}
				plan.Assignments[i] = a
			}
			plan.Steps = append(plan.Steps, Step{
				Kind:    StepPacked,
				Message: fmt.Sprintf("packed %d faces into %dx%d", len(items), w, h),
				Width:   w, Height: h, Density: density,
			})
			return plan, nil
		}
		if w >= maxW && h >= maxH {
			p.log.Debug("atlas overflow",
				zap.Int("width", w), zap.Int("height", h), zap.Float64("density", density))
			return nil, toolerr.AtlasOverflow(w, h, density)
		}
		nw, nh := min(maxW, roundUp(w*2, step)), min(maxH, roundUp(h*2, step))
		steps = append(steps, Step{
			Kind:    StepResolutionGrown,
			Message: fmt.Sprintf("resolution grown from %dx%d to %dx%d", w, h, nw, nh),
			Width:   nw, Height: nh, Density: density,
		})
		p.log.Debug("atlas resolution grown",
			zap.Int("from_width", w), zap.Int("from_height", h),
			zap.Int("to_width", nw), zap.Int("to_height", nh))
		w, h = nw, nh
	}
}

// PlanAdaptive runs Plan and, on AtlasOverflow, halves the density (floor 1)
// and retries. The overflow at density 1 is returned as-is.
func (p *Planner) PlanAdaptive(req Request) (*Plan, error) {
	density := req.Density
	if density <= 0 {
		density = 1
	}
	var trace []Step
	for {
		req.Density = density
		plan, err := p.Plan(req)
		if err == nil {
			plan.Steps = append(trace, plan.Steps...)
			return plan, nil
		}
		if toolerr.ReasonOf(err) != toolerr.ReasonAtlasOverflow || density <= 1 {
			return nil, err
		}
		next := NextDensity(density)
		trace = append(trace, Step{
			Kind:    StepDensityReduced,
			Message: fmt.Sprintf("density reduced from %g to %g", density, next),
			Density: next,
		})
		p.log.Debug("atlas density reduced", zap.Float64("from", density), zap.Float64("to", next))
		density = next
	}
}

// NextDensity returns the next density in the backoff sequence: halved and
// floored, never below 1.
func NextDensity(d float64) float64 {
	return math.Max(1, math.Floor(d/2))
}

func (p *Planner) items(req Request, density float64) []item {
	var items []item
	for _, t := range req.Usage.Textures {
		for _, f := range t.Faces {
			var fw, fh float64
			if c := req.State.Cube(f.CubeKey()); c != nil {
				fw, fh = c.FaceSize(f.Face)
			}
			items = append(items, item{
				assignment: Assignment{TextureID: t.Key(), CubeID: f.CubeID, CubeName: f.CubeName, Face: f.Face},
				textureKey: t.Key(),
				w:          usage.PixelSpan(fw, density) + 2*req.Padding,
				h:          usage.PixelSpan(fh, density) + 2*req.Padding,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.textureKey != b.textureKey {
			return a.textureKey < b.textureKey
		}
		if a.assignment.CubeKey() != b.assignment.CubeKey() {
			return a.assignment.CubeKey() < b.assignment.CubeKey()
		}
		return project.FaceRank(a.assignment.Face) < project.FaceRank(b.assignment.Face)
	})
	return items
}

// pack places items left to right on shelves. It reports false as soon as an
// item does not fit.
func pack(items []item, width, height int) ([]project.Rect, bool) {
	rects := make([]project.Rect, len(items))
	x, y, shelf := 0, 0, 0
	for i, it := range items {
		if it.w > width {
			return nil, false
		}
		if x+it.w > width {
			y += shelf
			x, shelf = 0, 0
		}
		if y+it.h > height {
			return nil, false
		}
		rects[i] = project.Rect{X1: x, Y1: y, X2: x + it.w, Y2: y + it.h}
		x += it.w
		shelf = max(shelf, it.h)
	}
	return rects, true
}

func roundUp(v, step int) int {
	return (v + step - 1) / step * step
}
