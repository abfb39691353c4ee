// Package recovery retries UV-consistency failures through a repack cycle and
// guards texture writes against catastrophic opacity loss.
package recovery

import (
	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/atlas"
	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// DefaultAutoMaxRetries is the number of repack rounds when unset.
const DefaultAutoMaxRetries = 1

// retryable lists the failure reasons a repack can fix.
var retryable = map[string]bool{
	toolerr.ReasonUsageMismatch:   true,
	toolerr.ReasonUvOverlap:       true,
	toolerr.ReasonUvScaleMismatch: true,
	toolerr.ReasonUnresolvedRefs:  true,
	toolerr.ReasonNoRects:         true,
	toolerr.ReasonNoBounds:        true,
}

// Retryable reports whether err carries a reason the coordinator recovers.
func Retryable(err error) bool {
	return err != nil && retryable[toolerr.ReasonOf(err)]
}

// Attempt records one repack round.
type Attempt struct {
	Reason           string              `json:"reason"`
	Steps            []atlas.Step        `json:"steps"`
	ResolutionBefore *project.Resolution `json:"resolutionBefore"`
	ResolutionAfter  *project.Resolution `json:"resolutionAfter"`
}

// Repack performs one repack, reproject and usage refresh for the failure
// reason. It returns the record of what it did.
type Repack func(reason string) (Attempt, error)

// Coordinator bounds recovery rounds.
type Coordinator struct {
	maxRetries int
	log        *zap.Logger
}

// NewCoordinator creates a coordinator. Negative maxRetries disables recovery.
func NewCoordinator(maxRetries int, log *zap.Logger) *Coordinator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{maxRetries: maxRetries, log: log}
}

// MaxRetries returns the configured bound.
func (c *Coordinator) MaxRetries() int { return c.maxRetries }

// Run calls op and, while it fails with a retryable reason and rounds remain,
// runs repack and calls op again. Non-retryable failures and repack failures
// are returned immediately. Attempts is never nil.
func Run[T any](c *Coordinator, op func() (T, error), repack Repack) (T, []Attempt, error) {
	attempts := []Attempt{}
	res, err := op()
	for round := 0; err != nil && Retryable(err) && round < c.maxRetries; round++ {
		reason := toolerr.ReasonOf(err)
		c.log.Info("recovering from UV failure",
			zap.String("reason", reason),
			zap.Int("round", round+1),
			zap.Int("max_rounds", c.maxRetries))

		a, rerr := repack(reason)
		if rerr != nil {
			c.log.Warn("repack failed", zap.String("reason", reason), zap.Error(rerr))
			var zero T
			return zero, attempts, rerr
		}
		if a.Reason == "" {
			a.Reason = reason
		}
		attempts = append(attempts, a)
		res, err = op()
	}
	return res, attempts, err
}
