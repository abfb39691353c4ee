package revision

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// Policy controls how strictly mutating calls are gated.
type Policy struct {
	// Required makes ifRevision mandatory on mutating calls.
	Required bool

	// AutoRetry refreshes the revision once on mismatch instead of failing.
	AutoRetry bool
}

// Source is the state the tracker fingerprints. *project.Store satisfies it.
type Source interface {
	Snapshot() *project.State
	Version() uint64
}

// Tracker fingerprints a Source and enforces Policy on mutating calls.
//
// Internal multi-step operations enter a bypass scope so that only the
// outermost call is checked:
//
//	release := tracker.Bypass()
//	defer release()
type Tracker struct {
	source Source
	policy Policy
	log    *zap.Logger

	mu            sync.Mutex
	cachedVersion uint64
	cached        string
	depth         int
}

// NewTracker creates a tracker over source.
func NewTracker(source Source, policy Policy, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{source: source, policy: policy, log: log}
}

// Policy returns the active policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Current returns the revision of the source, recomputing it only when the
// source version changed.
func (t *Tracker) Current() string {
	v := t.source.Version()
	t.mu.Lock()
	if t.cached != "" && t.cachedVersion == v {
		rev := t.cached
		t.mu.Unlock()
		return rev
	}
	t.mu.Unlock()

	rev := Track(t.source.Snapshot())

	t.mu.Lock()
	t.cachedVersion = v
	t.cached = rev
	t.mu.Unlock()
	return rev
}

// EnsureRevisionMatch checks expected against the current revision.
// It returns nil when the policy is off or a bypass scope is active.
func (t *Tracker) EnsureRevisionMatch(expected string) error {
	if !t.policy.Required || t.Bypassed() {
		return nil
	}
	current := t.Current()
	if expected == "" {
		return toolerr.RevisionMissing(current)
	}
	if expected != current {
		return toolerr.RevisionMismatch(expected, current)
	}
	return nil
}

// Guard runs EnsureRevisionMatch and, with AutoRetry, refreshes once on a
// mismatch. The refresh is never repeated. retried reports whether it ran.
func (t *Tracker) Guard(expected string) (retried bool, err error) {
	err = t.EnsureRevisionMatch(expected)
	if err == nil || !t.policy.AutoRetry || !toolerr.IsCode(err, toolerr.CodeRevisionMismatch) {
		return false, err
	}
	refreshed := t.Current()
	t.log.Debug("revision mismatch, retrying with refreshed revision",
		zap.String("expected", expected),
		zap.String("current", refreshed))
	return true, t.EnsureRevisionMatch(refreshed)
}

// Bypass enters a bypass scope and returns its release func. Release is
// idempotent, so a deferred release stays balanced on every return path.
func (t *Tracker) Bypass() (release func()) {
	t.mu.Lock()
	t.depth++
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.depth--
			t.mu.Unlock()
		})
	}
}

// Bypassed reports whether a bypass scope is active.
func (t *Tracker) Bypassed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.depth > 0
}

// Depth returns the number of open bypass scopes.
func (t *Tracker) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.depth
}

// WithBypass runs fn inside a bypass scope.
func (t *Tracker) WithBypass(fn func() error) error {
	release := t.Bypass()
	defer release()
	return fn()
}
