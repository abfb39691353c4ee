// Package texsync exposes the texture synchronization operations:
// preflight, face painting, atlas repacking, whole-texture painting, export
// and the project summary.
//
// Every mutating operation runs the same pipeline:
//
//  1. The revision tracker gates the call on ifRevision.
//  2. Usage is derived from the host and checked against uvUsageId.
//  3. The paint engine or the atlas planner and reprojector produce new pixels
//     on working copies.
//  4. The corruption guard commits each texture and rolls back catastrophic
//     writes.
//  5. On UV-consistency failures the recovery coordinator repacks, reprojects
//     and retries a bounded number of times.
package texsync

import (
	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/atlas"
	"github.com/ironsheep/texture-atlas-mcp/internal/config"
	"github.com/ironsheep/texture-atlas-mcp/internal/host"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/recovery"
	"github.com/ironsheep/texture-atlas-mcp/internal/revision"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// Options configures a Service.
type Options struct {
	Revision       revision.Policy
	MaxTextureSize int
	Padding        int
	Density        float64 // 0 infers density from the current layout
	ResolutionStep int
	AutoMaxRetries int
	Guard          recovery.GuardPolicy
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps a loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Revision: revision.Policy{
			Required:  cfg.Revision.Required,
			AutoRetry: cfg.Revision.AutoRetry,
		},
		MaxTextureSize: cfg.Atlas.MaxTextureSize,
		Padding:        cfg.Atlas.Padding,
		Density:        cfg.Atlas.Density,
		ResolutionStep: cfg.Atlas.ResolutionStep,
		AutoMaxRetries: cfg.Recovery.AutoMaxRetries,
		Guard: recovery.GuardPolicy{
			MinOpaqueBefore: cfg.Guard.MinOpaqueBefore,
			Floor:           cfg.Guard.Floor,
			Ratio:           cfg.Guard.Ratio,
		},
	}
}

// Service runs the texture operations against one host editor.
type Service struct {
	editor  host.Editor
	opts    Options
	tracker *revision.Tracker
	planner *atlas.Planner
	coord   *recovery.Coordinator
	guard   *recovery.Guard
	log     *zap.Logger
}

// New creates a Service. A nil logger disables logging.
func New(editor host.Editor, opts Options, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		editor:  editor,
		opts:    opts,
		tracker: revision.NewTracker(editor, opts.Revision, log.Named("revision")),
		planner: atlas.NewPlanner(log.Named("atlas")),
		coord:   recovery.NewCoordinator(opts.AutoMaxRetries, log.Named("recovery")),
		guard:   recovery.NewGuard(opts.Guard, log.Named("guard")),
		log:     log,
	}
}

// Tracker returns the revision tracker.
func (s *Service) Tracker() *revision.Tracker { return s.tracker }

// Revision returns the current project revision.
func (s *Service) Revision() string { return s.tracker.Current() }

// pixelIO moves pixel buffers through the host's renderer.
type pixelIO struct {
	editor   host.Editor
	renderer host.PixelRenderer
}

func (p pixelIO) ReadPixels(ref string) (*project.PixelBuffer, error) {
	img, err := p.editor.ReadTexture(ref)
	if err != nil {
		return nil, err
	}
	return p.renderer.ReadPixels(img.Image, img.Width, img.Height)
}

func (p pixelIO) WritePixels(ref string, buf *project.PixelBuffer) error {
	img, err := p.renderer.RenderPixels(buf)
	if err != nil {
		return err
	}
	return p.editor.UpdateTexture(ref, img)
}

func (s *Service) pixels() (pixelIO, error) {
	r, ok := host.Renderer(s.editor)
	if !ok {
		return pixelIO{}, toolerr.NotImplemented("pixel rendering")
	}
	return pixelIO{editor: s.editor, renderer: r}, nil
}

// textureRef picks the id over the name. Empty means "not given".
func textureRef(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// resolveTexture finds a texture in state or fails TextureNotFound.
func resolveTexture(state *project.State, ref string) (*project.Texture, error) {
	if ref == "" {
		return nil, toolerr.InvalidPayload("textureId or textureName is required")
	}
	t := state.Texture(ref)
	if t == nil {
		return nil, toolerr.TextureNotFound(ref)
	}
	return t, nil
}

// currentUsage reads usage from the host.
func (s *Service) currentUsage() (*usage.Usage, error) {
	u, err := s.editor.TextureUsageRaw()
	if err != nil {
		return nil, toolerr.From(err)
	}
	return u, nil
}

// density returns the configured density, or the one inferred from the
// layout, or 1.
func (s *Service) density(u *usage.Usage, state *project.State) float64 {
	if s.opts.Density > 0 {
		return s.opts.Density
	}
	if d := usage.InferDensity(u, state); d > 0 {
		return d
	}
	return 1
}

// gate runs the revision check for a mutating call.
func (s *Service) gate(ifRevision string) (bool, error) {
	retried, err := s.tracker.Guard(ifRevision)
	if err != nil {
		s.log.Debug("revision gate rejected call", zap.String("reason", toolerr.ReasonOf(err)))
	}
	return retried, err
}
