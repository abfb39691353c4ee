package texsync

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/atlas"
	"github.com/ironsheep/texture-atlas-mcp/internal/host"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/recovery"
	"github.com/ironsheep/texture-atlas-mcp/internal/reproject"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// AtlasRequest is the autoUvAtlas payload.
type AtlasRequest struct {
	Padding    *int   `json:"padding,omitempty"`
	Apply      bool   `json:"apply,omitempty"`
	IfRevision string `json:"ifRevision,omitempty"`
}

// AtlasApplyResult describes a planned or applied atlas.
type AtlasApplyResult struct {
	Applied         bool               `json:"applied"`
	Resolution      project.Resolution `json:"resolution"`
	Density         float64            `json:"density"`
	Assignments     []atlas.Assignment `json:"assignments"`
	Steps           []atlas.Step       `json:"steps"`
	Diff            string             `json:"diff,omitempty"`
	UvUsageID       string             `json:"uvUsageId"`
	Revision        string             `json:"revision"`
	RevisionRetried bool               `json:"revisionRetried"`
}

// AutoUvAtlas repacks every referenced face into a non-overlapping layout.
//
// Without Apply the plan is returned with a unified diff of the layout and
// nothing changes. With Apply the call is revision-gated, every texture's
// pixels are reprojected into the new layout, and the whole change is rolled
// back if any step fails.
func (s *Service) AutoUvAtlas(req AtlasRequest) (*AtlasApplyResult, error) {
	padding := s.opts.Padding
	if req.Padding != nil {
		padding = *req.Padding
	}

	var retried bool
	var px pixelIO
	if req.Apply {
		var err error
		if retried, err = s.gate(req.IfRevision); err != nil {
			return nil, err
		}
		if px, err = s.pixels(); err != nil {
			return nil, err
		}
	}

	state := s.editor.Snapshot()
	before, err := s.currentUsage()
	if err != nil {
		return nil, err
	}
	plan, err := s.plan(state, before, padding)
	if err != nil {
		return nil, err
	}

	res := &AtlasApplyResult{
		Resolution:      project.Resolution{Width: plan.Width, Height: plan.Height},
		Density:         plan.Density,
		Assignments:     plan.Assignments,
		Steps:           plan.Steps,
		RevisionRetried: retried,
	}
	if !req.Apply {
		res.Diff = atlas.LayoutDiff(before, plan)
		res.UvUsageID = usage.ID(before)
		res.Revision = s.tracker.Current()
		return res, nil
	}

	if err := s.applyPlan(px, before, plan); err != nil {
		return nil, err
	}
	after, err := s.currentUsage()
	if err != nil {
		return nil, err
	}
	res.Applied = true
	res.UvUsageID = usage.ID(after)
	res.Revision = s.tracker.Current()
	s.log.Info("atlas applied",
		zap.Int("width", plan.Width),
		zap.Int("height", plan.Height),
		zap.Float64("density", plan.Density),
		zap.Int("faces", len(plan.Assignments)))
	return res, nil
}

// plan runs the adaptive planner over the current layout. The starting
// resolution covers the largest referenced texture so a plan never shrinks
// existing pixels.
func (s *Service) plan(state *project.State, u *usage.Usage, padding int) (*atlas.Plan, error) {
	res := s.editor.ProjectTextureResolution()
	if res == nil {
		return nil, toolerr.ResolutionMissing()
	}
	start := *res
	for _, t := range u.Referenced() {
		start.Width = max(start.Width, t.Width)
		start.Height = max(start.Height, t.Height)
	}
	return s.planner.PlanAdaptive(atlas.Request{
		Usage:      u,
		State:      state,
		Resolution: &start,
		MaxWidth:   s.opts.MaxTextureSize,
		MaxHeight:  s.opts.MaxTextureSize,
		Padding:    padding,
		Density:    s.density(u, state),
		Step:       s.opts.ResolutionStep,
	})
}

// repack is the recovery coordinator's repack round: plan, reproject and
// apply the current layout.
func (s *Service) repack(px pixelIO, reason string) (recovery.Attempt, error) {
	a := recovery.Attempt{Reason: reason, ResolutionBefore: s.editor.ProjectTextureResolution()}
	state := s.editor.Snapshot()
	before, err := s.currentUsage()
	if err != nil {
		return a, err
	}
	plan, err := s.plan(state, before, s.opts.Padding)
	if err != nil {
		return a, err
	}
	a.Steps = plan.Steps
	if err := s.applyPlan(px, before, plan); err != nil {
		return a, err
	}
	a.ResolutionAfter = s.editor.ProjectTextureResolution()
	return a, nil
}

// atlasTx records what an apply changed so it can be undone.
type atlasTx struct {
	editor     host.Editor
	px         pixelIO
	resolution *project.Resolution
	resized    bool
	backups    map[string]*project.PixelBuffer
	written    []string
	uvs        map[string]map[project.FaceName]project.Rect
	uvCubes    []string
}

// applyPlan sets the resolution, writes every reprojected texture through the
// corruption guard, then moves the face UVs. Any failure undoes the completed
// steps in reverse order.
func (s *Service) applyPlan(px pixelIO, before *usage.Usage, plan *atlas.Plan) error {
	tx := &atlasTx{
		editor:     s.editor,
		px:         px,
		resolution: s.editor.ProjectTextureResolution(),
		backups:    make(map[string]*project.PixelBuffer),
	}
	err := s.runPlan(tx, before, plan)
	if err == nil {
		return nil
	}
	s.log.Warn("atlas apply failed, rolling back", zap.Error(err))
	if rerr := tx.rollback(); rerr != nil {
		s.log.Error("atlas rollback incomplete", zap.Error(rerr))
		return errors.Join(err, rerr)
	}
	return err
}

func (s *Service) runPlan(tx *atlasTx, before *usage.Usage, plan *atlas.Plan) error {
	if tx.resolution == nil || tx.resolution.Width != plan.Width || tx.resolution.Height != plan.Height {
		if err := s.editor.SetProjectTextureResolution(plan.Width, plan.Height, false); err != nil {
			return toolerr.From(err)
		}
		tx.resized = true
	}

	pairs := reproject.BuildPairs(before, plan)
	for _, t := range before.Referenced() {
		key := t.Key()
		backup, err := tx.px.ReadPixels(key)
		if err != nil {
			return toolerr.From(err)
		}
		tx.backups[key] = backup
		next := reproject.Texture(backup, plan.Width, plan.Height, reproject.ForTexture(pairs, key))
		tx.written = append(tx.written, key)
		if err := s.guard.CommitWithBackup(tx.px, key, backup, next); err != nil {
			return toolerr.From(err)
		}
	}

	tx.uvs = groupUVs(before)
	planned := make(map[string]map[project.FaceName]project.Rect)
	for _, a := range plan.Assignments {
		key := a.CubeKey()
		if planned[key] == nil {
			planned[key] = make(map[project.FaceName]project.Rect)
		}
		planned[key][a.Face] = a.UV
	}
	for _, cube := range sortedKeys(planned) {
		if err := s.editor.SetFaceUV(cube, planned[cube]); err != nil {
			return toolerr.From(fmt.Errorf("set face uv on %s: %w", cube, err))
		}
		tx.uvCubes = append(tx.uvCubes, cube)
	}
	return nil
}

// rollback restores UVs, then pixels, then the resolution.
func (tx *atlasTx) rollback() error {
	var errs []error
	for i := len(tx.uvCubes) - 1; i >= 0; i-- {
		cube := tx.uvCubes[i]
		if err := tx.editor.SetFaceUV(cube, tx.uvs[cube]); err != nil {
			errs = append(errs, fmt.Errorf("restore uv on %s: %w", cube, err))
		}
	}
	for i := len(tx.written) - 1; i >= 0; i-- {
		key := tx.written[i]
		if err := tx.px.WritePixels(key, tx.backups[key]); err != nil {
			errs = append(errs, fmt.Errorf("restore pixels of %s: %w", key, err))
		}
	}
	if tx.resized && tx.resolution != nil {
		if err := tx.editor.SetProjectTextureResolution(tx.resolution.Width, tx.resolution.Height, false); err != nil {
			errs = append(errs, fmt.Errorf("restore resolution: %w", err))
		}
	}
	return errors.Join(errs...)
}

func groupUVs(u *usage.Usage) map[string]map[project.FaceName]project.Rect {
	out := make(map[string]map[project.FaceName]project.Rect)
	for _, t := range u.Textures {
		for _, f := range t.Faces {
			key := f.CubeKey()
			if out[key] == nil {
				out[key] = make(map[project.FaceName]project.Rect)
			}
			out[key][f.Face] = f.UV
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
