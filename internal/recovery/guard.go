package recovery

import (
	"fmt"

	"github.com/anthonynsimon/bild/histogram"
	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// GuardPolicy sets the catastrophic-write thresholds.
type GuardPolicy struct {
	// MinOpaqueBefore is the smallest pre-write count the guard checks.
	MinOpaqueBefore int `yaml:"min_opaque_before"`

	// Floor and Ratio give the post-write minimum: max(Floor, Ratio*before).
	Floor int     `yaml:"floor"`
	Ratio float64 `yaml:"ratio"`
}

// DefaultGuardPolicy returns 256 / 64 / 5%.
func DefaultGuardPolicy() GuardPolicy {
	return GuardPolicy{MinOpaqueBefore: 256, Floor: 64, Ratio: 0.05}
}

// Catastrophic reports whether a drop from before to after opaque pixels
// must be rolled back.
func (p GuardPolicy) Catastrophic(before, after int) bool {
	if before < p.MinOpaqueBefore {
		return false
	}
	limit := max(p.Floor, int(p.Ratio*float64(before)))
	return after < limit
}

// OpaqueCount counts pixels with non-zero alpha.
func OpaqueCount(buf *project.PixelBuffer) int {
	if buf == nil || buf.Width == 0 || buf.Height == 0 {
		return 0
	}
	h := histogram.NewRGBAHistogram(buf.Image())
	return buf.Width*buf.Height - h.A.Bins[0]
}

// Target is where guarded writes land.
type Target interface {
	ReadPixels(ref string) (*project.PixelBuffer, error)
	WritePixels(ref string, buf *project.PixelBuffer) error
}

// Guard commits texture writes and rolls back catastrophic ones.
type Guard struct {
	policy GuardPolicy
	log    *zap.Logger
}

// NewGuard creates a guard.
func NewGuard(policy GuardPolicy, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{policy: policy, log: log}
}

// Commit writes next to ref, reads the result back and compares opacity
// with the pre-write pixels. A catastrophic drop restores the backup and
// returns RecoveryGuardTriggered, so a rolled-back write never reports
// success.
func (g *Guard) Commit(t Target, ref string, next *project.PixelBuffer) error {
	backup, err := t.ReadPixels(ref)
	if err != nil {
		return err
	}
	return g.CommitWithBackup(t, ref, backup, next)
}

// CommitWithBackup is Commit with a caller-supplied pre-write buffer.
func (g *Guard) CommitWithBackup(t Target, ref string, backup, next *project.PixelBuffer) error {
	before := OpaqueCount(backup)
	if err := t.WritePixels(ref, next); err != nil {
		return err
	}
	written, err := t.ReadPixels(ref)
	if err != nil {
		return err
	}
	after := OpaqueCount(written)
	if !g.policy.Catastrophic(before, after) {
		return nil
	}

	g.log.Warn("catastrophic texture write rolled back",
		zap.String("texture", ref),
		zap.Int("opaque_before", before),
		zap.Int("opaque_after", after))
	if err := t.WritePixels(ref, backup); err != nil {
		return fmt.Errorf("restore texture %s after opacity loss: %w", ref, err)
	}
	return toolerr.RecoveryGuardTriggered(ref, before, after)
}
