package texsync

import (
	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/paint"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/recovery"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// FaceTarget selects faces of one cube. An empty Face selects every face of
// the cube that uses the texture.
type FaceTarget struct {
	CubeID   string           `json:"cubeId,omitempty"`
	CubeName string           `json:"cubeName,omitempty"`
	Face     project.FaceName `json:"face,omitempty"`
}

func (t FaceTarget) matches(f usage.FaceRef) bool {
	switch {
	case t.CubeID != "" && t.CubeID != f.CubeID:
		return false
	case t.CubeID == "" && t.CubeName != "" && t.CubeName != f.CubeName:
		return false
	}
	return t.Face == "" || t.Face == f.Face
}

// PaintFacesRequest is the paintFaces payload.
type PaintFacesRequest struct {
	TextureID   string        `json:"textureId,omitempty"`
	TextureName string        `json:"textureName,omitempty"`
	Targets     []FaceTarget  `json:"targets,omitempty"`
	CoordSpace  string        `json:"coordSpace,omitempty"`
	Ops         []paint.Op    `json:"ops"`
	Mapping     paint.Mapping `json:"mapping,omitempty"`
	UvUsageID   string        `json:"uvUsageId,omitempty"`
	IfRevision  string        `json:"ifRevision,omitempty"`
}

// PaintedFace is one face rectangle a paint call wrote to.
type PaintedFace struct {
	CubeID   string           `json:"cubeId"`
	CubeName string           `json:"cubeName"`
	Face     project.FaceName `json:"face"`
	UV       project.Rect     `json:"uv"`
}

// Recovery reports the repack rounds a call needed.
type Recovery struct {
	Attempts []recovery.Attempt `json:"attempts"`
}

// PaintFacesResult is returned by a successful paintFaces call.
type PaintFacesResult struct {
	TextureID       string        `json:"textureId"`
	TextureName     string        `json:"textureName"`
	Targets         []PaintedFace `json:"targets"`
	OpsApplied      int           `json:"opsApplied"`
	OpaquePixels    int           `json:"opaquePixels"`
	UvUsageID       string        `json:"uvUsageId"`
	Revision        string        `json:"revision"`
	RevisionRetried bool          `json:"revisionRetried"`
	Recovery        Recovery      `json:"recovery"`
}

// PaintFaces paints ops onto the faces of one texture.
//
// The call is rejected on a stale revision before any pixel work. UV
// consistency failures (stale uvUsageId, overlapping or mis-scaled
// rectangles, missing targets) go through the recovery coordinator, which
// repacks the atlas and retries. Each committed write passes the corruption
// guard.
func (s *Service) PaintFaces(req PaintFacesRequest) (*PaintFacesResult, error) {
	ref := textureRef(req.TextureID, req.TextureName)
	if ref == "" {
		return nil, toolerr.InvalidPayload("textureId or textureName is required")
	}
	if len(req.Ops) == 0 {
		return nil, toolerr.InvalidPayload("ops must not be empty")
	}
	if err := paint.Validate(req.Ops); err != nil {
		return nil, err
	}
	space := req.CoordSpace
	if space == "" {
		space = paint.SpaceFace
	}

	retried, err := s.gate(req.IfRevision)
	if err != nil {
		return nil, err
	}
	px, err := s.pixels()
	if err != nil {
		return nil, err
	}

	expected := req.UvUsageID
	attempt := func() (*PaintFacesResult, error) {
		return s.paintAttempt(px, ref, space, req, expected)
	}
	repack := func(reason string) (recovery.Attempt, error) {
		a, err := s.repack(px, reason)
		if err != nil {
			return a, err
		}
		// The caller's id described the old layout.
		if expected != "" {
			u, err := s.currentUsage()
			if err != nil {
				return a, err
			}
			expected = usage.ID(u.Filter(ref))
		}
		return a, nil
	}

	res, attempts, err := recovery.Run(s.coord, attempt, repack)
	if err != nil {
		return nil, err
	}
	res.Recovery = Recovery{Attempts: attempts}
	res.RevisionRetried = retried
	res.Revision = s.tracker.Current()
	s.log.Info("painted faces",
		zap.String("texture", res.TextureID),
		zap.Int("targets", len(res.Targets)),
		zap.Int("ops", res.OpsApplied),
		zap.Int("recovery_rounds", len(attempts)))
	return res, nil
}

func (s *Service) paintAttempt(px pixelIO, ref, space string, req PaintFacesRequest, expected string) (*PaintFacesResult, error) {
	state := s.editor.Snapshot()
	tex, err := resolveTexture(state, ref)
	if err != nil {
		return nil, err
	}
	all, err := s.currentUsage()
	if err != nil {
		return nil, err
	}
	scoped := all.Filter(tex.Key())
	if err := guardUsage(all, scoped, expected); err != nil {
		return nil, err
	}
	if err := usage.Check(scoped, state, s.density(scoped, state)); err != nil {
		return nil, err
	}

	faces := selectFaces(scoped, tex.Key(), req.Targets)
	if len(faces) == 0 {
		return nil, toolerr.NoRects(tex.Key())
	}
	if tex.Width <= 0 || tex.Height <= 0 {
		return nil, toolerr.NoBounds(tex.Key())
	}
	rects := make([]project.Rect, len(faces))
	for i, f := range faces {
		rects[i] = f.UV
	}

	backup, err := px.ReadPixels(tex.Key())
	if err != nil {
		return nil, toolerr.From(err)
	}
	next, err := paint.Paint(backup, paint.Request{
		Ops:     req.Ops,
		Space:   space,
		Targets: rects,
		Mapping: req.Mapping,
	})
	if err != nil {
		return nil, err
	}
	if err := s.guard.CommitWithBackup(px, tex.Key(), backup, next); err != nil {
		return nil, toolerr.From(err)
	}

	after, err := s.currentUsage()
	if err != nil {
		return nil, err
	}
	return &PaintFacesResult{
		TextureID:    tex.ID,
		TextureName:  tex.Name,
		Targets:      faces,
		OpsApplied:   len(req.Ops),
		OpaquePixels: recovery.OpaqueCount(next),
		UvUsageID:    usage.ID(after.Filter(tex.Key())),
	}, nil
}

// guardUsage accepts either the texture's own usage id (from preflight) or
// the whole-project id (from project_state or autoUvAtlas).
func guardUsage(all, scoped *usage.Usage, expected string) error {
	if expected != "" && expected == usage.ID(all) {
		return nil
	}
	return usage.Guard(scoped, expected)
}

// selectFaces returns the faces of texture matching targets, in usage
// order. No targets selects every face.
func selectFaces(u *usage.Usage, texture string, targets []FaceTarget) []PaintedFace {
	tu, ok := u.Texture(texture)
	if !ok {
		return nil
	}
	var out []PaintedFace
	for _, f := range tu.Faces {
		if len(targets) > 0 && !anyTarget(targets, f) {
			continue
		}
		out = append(out, PaintedFace{CubeID: f.CubeID, CubeName: f.CubeName, Face: f.Face, UV: f.UV})
	}
	return out
}

func anyTarget(targets []FaceTarget, f usage.FaceRef) bool {
	for _, t := range targets {
		if t.matches(f) {
			return true
		}
	}
	return false
}

// PaintTextureRequest paints a whole texture in texture space.
type PaintTextureRequest struct {
	TextureID   string     `json:"textureId,omitempty"`
	TextureName string     `json:"textureName,omitempty"`
	Ops         []paint.Op `json:"ops"`
	IfRevision  string     `json:"ifRevision,omitempty"`
}

// PaintTextureResult is returned by PaintTexture.
type PaintTextureResult struct {
	TextureID       string `json:"textureId"`
	TextureName     string `json:"textureName"`
	OpsApplied      int    `json:"opsApplied"`
	OpaquePixels    int    `json:"opaquePixels"`
	Revision        string `json:"revision"`
	RevisionRetried bool   `json:"revisionRetried"`
}

// PaintTexture applies ops in absolute texture pixels with no face targets.
func (s *Service) PaintTexture(req PaintTextureRequest) (*PaintTextureResult, error) {
	ref := textureRef(req.TextureID, req.TextureName)
	if len(req.Ops) == 0 {
		return nil, toolerr.InvalidPayload("ops must not be empty")
	}
	if err := paint.Validate(req.Ops); err != nil {
		return nil, err
	}
	retried, err := s.gate(req.IfRevision)
	if err != nil {
		return nil, err
	}
	px, err := s.pixels()
	if err != nil {
		return nil, err
	}
	tex, err := resolveTexture(s.editor.Snapshot(), ref)
	if err != nil {
		return nil, err
	}
	if tex.Width <= 0 || tex.Height <= 0 {
		return nil, toolerr.NoBounds(tex.Key())
	}

	backup, err := px.ReadPixels(tex.Key())
	if err != nil {
		return nil, toolerr.From(err)
	}
	next, err := paint.Paint(backup, paint.Request{Ops: req.Ops, Space: paint.SpaceTexture})
	if err != nil {
		return nil, err
	}
	if err := s.guard.CommitWithBackup(px, tex.Key(), backup, next); err != nil {
		return nil, toolerr.From(err)
	}
	s.log.Info("painted texture", zap.String("texture", tex.Key()), zap.Int("ops", len(req.Ops)))
	return &PaintTextureResult{
		TextureID:       tex.ID,
		TextureName:     tex.Name,
		OpsApplied:      len(req.Ops),
		OpaquePixels:    recovery.OpaqueCount(next),
		Revision:        s.tracker.Current(),
		RevisionRetried: retried,
	}, nil
}
