// Package engine dispatches registered rules over targets and walks the
// file tree handing every node to the dispatcher.
package engine

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
)

// ErrRulePanicked wraps a panic recovered from a rule's Run.
var ErrRulePanicked = errors.New("rule panicked")

// Outcome is the aggregated result of handling one target.
type Outcome int

const (
	// Passed means every applicable rule passed and any fix was written.
	Passed Outcome = iota
	// Failed means a rule reported violations or the fix write failed.
	Failed
	// Aborted means a rule returned an error or panicked.
	Aborted
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Writer persists fixed file content.
type Writer interface {
	Replace(path string, data []byte) error
}

// Options configures an Engine.
type Options struct {
	// ApplyFix lets rules fix what they find and writes changed files back
	ApplyFix bool
	// Recurse descends into directories
	Recurse bool
	// FollowSymlinks visits symlinked paths instead of rejecting them
	FollowSymlinks bool
	// Includes are the include regexes every rule's filter starts from
	Includes []string
	// Excludes are global exclude regexes on the full path
	Excludes []string
	// RulePaths are searched for "<rule-id>.excludes" files
	RulePaths []string
	// Disabled lists rule ids that never run
	Disabled []string
	// Settings holds per-rule options keyed by rule id
	Settings map[string]rule.Settings
}

// Stats counts what the engine has seen so far.
type Stats struct {
	Targets int
	Failed  int
	Aborted int
	Fixed   int
}

// Engine runs rules over targets. It is single-threaded.
type Engine struct {
	registry *rule.Registry
	writer   Writer
	log      rule.Logger
	opts     Options
	disabled map[string]bool
	filters  map[string]*rule.PathFilter
	excludes *rule.PathFilter
	stats    Stats
	readDir  func(name string) ([]os.DirEntry, error)
}

// New creates an engine over reg and seals the registry.
// Each rule's path filter is built here, so an invalid pattern or an
// unreadable excludes file is reported before any target is visited.
func New(reg *rule.Registry, writer Writer, log rule.Logger, opts Options) (*Engine, error) {
	excludes, err := rule.NewPathFilter(nil, opts.Excludes)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		registry: reg,
		writer:   writer,
		log:      log,
		opts:     opts,
		disabled: make(map[string]bool, len(opts.Disabled)),
		filters:  make(map[string]*rule.PathFilter, reg.Len()),
		excludes: excludes,
		readDir:  os.ReadDir,
	}
	for _, id := range opts.Disabled {
		e.disabled[id] = true
	}

	reg.Seal()
	for _, r := range reg.Rules() {
		f, err := rule.BuildFilter(r.ID(), opts.RulePaths, opts.Includes, opts.Excludes)
		if err != nil {
			return nil, err
		}
		e.filters[r.ID()] = f
	}
	return e, nil
}

// Stats returns the counters accumulated by Handle and Walk.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Select returns the rules that apply to t, in registration order.
func (e *Engine) Select(t *target.Target) []rule.Rule {
	var selected []rule.Rule
	for _, r := range e.registry.Rules() {
		if e.disabled[r.ID()] {
			continue
		}
		if e.filters[r.ID()].Excludes(t) {
			continue
		}
		if !r.AppliesTo(t) {
			continue
		}
		selected = append(selected, r)
	}
	return selected
}

// Handle runs every applicable rule on t and writes fixes back.
//
// A rule error or panic aborts the target: the remaining rules are skipped
// and nothing is written. A write failure fails the target.
func (e *Engine) Handle(t *target.Target) Outcome {
	e.log.LogDebug("Handling " + t.String())
	e.stats.Targets++

	outcome := Passed
	for _, r := range e.Select(t) {
		e.log.LogTrace("+ Running rule " + r.ID())
		ok, err := e.run(r, t)
		if err != nil {
			e.log.LogError(fmt.Sprintf("EXCEPTION running rule %s on %s - %v", r.ID(), t, err))
			e.stats.Aborted++
			return Aborted
		}
		if !ok {
			e.log.LogDebug("+ Violations reported by rule " + r.ID())
			outcome = Failed
		}
	}

	if e.opts.ApplyFix && t.Changed() {
		if err := e.writer.Replace(t.FullPath, t.Content()); err != nil {
			e.log.LogError(fmt.Sprintf("failed to write fixes to %s: %v", t.Path, err))
			outcome = Failed
		} else {
			e.log.LogInfo("Fixed " + t.Path)
			e.stats.Fixed++
		}
	}

	if outcome == Failed {
		e.stats.Failed++
	}
	return outcome
}

func (e *Engine) run(r rule.Rule, t *target.Target) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			err = fmt.Errorf("%w: %v\n%s", ErrRulePanicked, p, debug.Stack())
		}
	}()
	ctx := &rule.Context{
		ApplyFix: e.opts.ApplyFix,
		Log:      e.log,
		Settings: e.opts.Settings[r.ID()],
	}
	return r.Run(ctx, t)
}
