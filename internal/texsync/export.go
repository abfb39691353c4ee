package texsync

import (
	"image"

	"github.com/ironsheep/texture-atlas-mcp/internal/imaging"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// ExportRequest selects a texture and an optional region to encode.
type ExportRequest struct {
	TextureID   string        `json:"textureId,omitempty"`
	TextureName string        `json:"textureName,omitempty"`
	Region      *project.Rect `json:"region,omitempty"`
	RegionName  string        `json:"regionName,omitempty"`
	Scale       int           `json:"scale,omitempty"`
}

// ExportResult is a texture encoded as PNG.
type ExportResult struct {
	TextureID   string `json:"textureId"`
	TextureName string `json:"textureName"`
	imaging.ExportResult
}

// ExportTexture encodes a texture, or a region of it, as base64 PNG.
func (s *Service) ExportTexture(req ExportRequest) (*ExportResult, error) {
	tex, err := resolveTexture(s.editor.Snapshot(), textureRef(req.TextureID, req.TextureName))
	if err != nil {
		return nil, err
	}
	img, err := s.editor.ReadTexture(tex.Key())
	if err != nil {
		return nil, toolerr.From(err)
	}

	var region *image.Rectangle
	switch {
	case req.Region != nil:
		r := req.Region.Image()
		region = &r
	case req.RegionName != "":
		r, err := imaging.NamedRegion(req.RegionName, img.Width, img.Height)
		if err != nil {
			return nil, toolerr.InvalidPayload(err.Error())
		}
		region = &r
	}

	enc, err := imaging.Export(img.Image, region, req.Scale)
	if err != nil {
		return nil, toolerr.InvalidPayload(err.Error())
	}
	return &ExportResult{TextureID: tex.ID, TextureName: tex.Name, ExportResult: *enc}, nil
}
