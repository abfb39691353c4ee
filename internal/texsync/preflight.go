package texsync

import (
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/recovery"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// PreflightRequest is the preflightTexture payload. With neither id nor name
// the whole project is reported.
type PreflightRequest struct {
	TextureID    string `json:"textureId,omitempty"`
	TextureName  string `json:"textureName,omitempty"`
	IncludeUsage bool   `json:"includeUsage,omitempty"`
}

// TextureStats summarizes one texture.
type TextureStats struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FaceCount    int    `json:"faceCount"`
	OpaquePixels int    `json:"opaquePixels"`
}

// PreflightResult carries the ids a caller presents back on mutating calls.
type PreflightResult struct {
	UvUsageID    string              `json:"uvUsageId"`
	Revision     string              `json:"revision"`
	TextureUsage *usage.Usage        `json:"textureUsage,omitempty"`
	WarningCodes []string            `json:"warningCodes"`
	Resolution   *project.Resolution `json:"resolution"`
	Density      float64             `json:"density"`
	Textures     []TextureStats      `json:"textures"`
}

// PreflightTexture reports the current usage id, revision and layout
// warnings. It never changes the project.
func (s *Service) PreflightTexture(req PreflightRequest) (*PreflightResult, error) {
	state := s.editor.Snapshot()
	u, err := s.currentUsage()
	if err != nil {
		return nil, err
	}

	if ref := textureRef(req.TextureID, req.TextureName); ref != "" {
		tex := state.Texture(ref)
		if tex == nil {
			return nil, toolerr.TextureNotFound(ref)
		}
		u = u.Filter(tex.Key())
	}

	res := s.editor.ProjectTextureResolution()
	out := &PreflightResult{
		UvUsageID:    usage.ID(u),
		Revision:     s.tracker.Current(),
		WarningCodes: usage.Warnings(u, state, res),
		Resolution:   res,
		Density:      s.density(u, state),
		Textures:     []TextureStats{},
	}
	if req.IncludeUsage {
		out.TextureUsage = u
	}
	for _, tu := range u.Textures {
		stats := TextureStats{
			ID:        tu.ID,
			Name:      tu.Name,
			Width:     tu.Width,
			Height:    tu.Height,
			FaceCount: len(tu.Faces),
		}
		if t := state.Texture(tu.Key()); t != nil {
			stats.OpaquePixels = recovery.OpaqueCount(t.Pixels)
		}
		out.Textures = append(out.Textures, stats)
	}
	return out, nil
}

// ProjectSummary is the projectState result.
type ProjectSummary struct {
	Name       string              `json:"name"`
	Bones      int                 `json:"bones"`
	Cubes      int                 `json:"cubes"`
	Textures   int                 `json:"textures"`
	Faces      int                 `json:"faces"`
	Unresolved int                 `json:"unresolved"`
	Resolution *project.Resolution `json:"resolution"`
	Revision   string              `json:"revision"`
	UvUsageID  string              `json:"uvUsageId"`
	Nodes      []string            `json:"nodes"` // outliner order, "kind:name"
}

// ProjectState summarizes the project.
func (s *Service) ProjectState() (*ProjectSummary, error) {
	state := s.editor.Snapshot()
	u, err := s.currentUsage()
	if err != nil {
		return nil, err
	}
	out := &ProjectSummary{
		Name:       state.Name,
		Bones:      len(state.Bones),
		Cubes:      len(state.Cubes),
		Textures:   len(state.Textures),
		Faces:      u.FaceCount(),
		Unresolved: len(u.Unresolved),
		Resolution: s.editor.ProjectTextureResolution(),
		Revision:   s.tracker.Current(),
		UvUsageID:  usage.ID(u),
		Nodes:      []string{},
	}
	for _, n := range state.Nodes() {
		out.Nodes = append(out.Nodes, n.Kind.String()+":"+n.Name())
	}
	return out, nil
}
