package texsync

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// ApplyTemplate runs several sub-edits as one call. The revision is checked
// once against ifRevision; the steps run inside a bypass scope so their own
// revision checks pass even though each step changes the project.
//
// Steps run in order and the first failure stops the template. Steps already
// applied stay applied.
func (s *Service) ApplyTemplate(ifRevision string, steps []func() error) (retried bool, err error) {
	if retried, err = s.gate(ifRevision); err != nil {
		return false, err
	}
	release := s.tracker.Bypass()
	defer release()

	for i, step := range steps {
		if err := step(); err != nil {
			s.log.Warn("template step failed", zap.Int("step", i), zap.Error(err))
			return retried, toolerr.From(err).With("step", i)
		}
	}
	return retried, nil
}

// PaintBatchRequest paints several textures under one revision check.
type PaintBatchRequest struct {
	Items      []PaintTextureRequest `json:"items"`
	IfRevision string                `json:"ifRevision,omitempty"`
}

// PaintBatchResult lists the per-texture results in request order.
type PaintBatchResult struct {
	Results         []*PaintTextureResult `json:"results"`
	Revision        string                `json:"revision"`
	RevisionRetried bool                  `json:"revisionRetried"`
}

// PaintBatch applies a PaintTexture per item as one template.
func (s *Service) PaintBatch(req PaintBatchRequest) (*PaintBatchResult, error) {
	if len(req.Items) == 0 {
		return nil, toolerr.InvalidPayload("items must not be empty")
	}
	out := &PaintBatchResult{Results: make([]*PaintTextureResult, 0, len(req.Items))}
	steps := make([]func() error, len(req.Items))
	for i, item := range req.Items {
		steps[i] = func() error {
			res, err := s.PaintTexture(item)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			out.Results = append(out.Results, res)
			return nil
		}
	}
	retried, err := s.ApplyTemplate(req.IfRevision, steps)
	if err != nil {
		return nil, err
	}
	out.Revision = s.tracker.Current()
	out.RevisionRetried = retried
	return out, nil
}
