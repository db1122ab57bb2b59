// Package rule defines the contract fuzz rules implement, the registry they
// are collected in and the path filters that decide which targets a rule
// may see.
package rule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harrison/fuzz/internal/target"
	"github.com/spf13/pflag"
)

// Rule is a pluggable checker that inspects and optionally fixes targets.
type Rule interface {
	// ID returns the unique identifier of the rule (e.g. "check_whitespace").
	ID() string

	// Description returns a one-line summary for listings.
	Description() string

	// ErrorMessage returns the text reported next to flagged line numbers.
	ErrorMessage() string

	// AppliesTo reports whether the rule wants to inspect t.
	// It must not have side effects.
	AppliesTo(t *target.Target) bool

	// Run inspects t and, when ctx.ApplyFix is set and the rule supports
	// it, fixes t's lines in place. It returns true iff no unfixed
	// violation remains. A rule that cannot complete returns an error.
	Run(ctx *Context, t *target.Target) (bool, error)
}

// FlagBinder is implemented by rules that contribute command line flags.
type FlagBinder interface {
	BindFlags(fs *pflag.FlagSet)
}

// Logger is the logging surface rules and the engine write to.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Context carries per-run state into Rule.Run.
type Context struct {
	// ApplyFix directs rules to fix what they find
	ApplyFix bool
	// Log receives violation reports and progress messages
	Log Logger
	// Settings are the rule's configured options
	Settings Settings
}

// Settings holds rule-local options, as read from the config file.
type Settings map[string]any

// Int returns the integer option key, or def when unset or not a number.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// String returns the string option key, or def when unset.
func (s Settings) String(key string, def string) string {
	if v, ok := s[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return def
}

// Bool returns the boolean option key, or def when unset or not a bool.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Base provides the identity half of the Rule interface.
// Rules embed it and implement Run, overriding AppliesTo to narrow by
// target kind or extension.
type Base struct {
	RuleID          string
	RuleDescription string
	RuleErrorMsg    string
}

func (b *Base) ID() string           { return b.RuleID }
func (b *Base) Description() string  { return b.RuleDescription }
func (b *Base) ErrorMessage() string { return b.RuleErrorMsg }

// AppliesTo accepts every target; path exclusion is applied by the engine.
func (b *Base) AppliesTo(t *target.Target) bool { return true }

// Scan iterates t's lines for r, calling fn for every unsuppressed line, and
// reports flagged lines as "<path>:[<n>,<n>] <error message>".
// It returns true when nothing was flagged.
func Scan(ctx *Context, r Rule, t *target.Target, fn func(c *target.Cursor) error) (bool, error) {
	flagged, err := t.Iterate(r.ID(), fn)
	if err != nil {
		return false, err
	}
	if len(flagged) > 0 {
		ctx.logError(FormatViolation(t.Path, flagged, r.ErrorMessage()))
		return false, nil
	}
	return true, nil
}

// FormatViolation renders the standard one-line violation report.
func FormatViolation(path string, lines []int, message string) string {
	nums := make([]string, len(lines))
	for i, n := range lines {
		nums[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("%s:[%s] %s", path, strings.Join(nums, ","), message)
}

func (ctx *Context) logError(msg string) {
	if ctx != nil && ctx.Log != nil {
		ctx.Log.LogError(msg)
	}
}

// Errorf logs an error-level message when a logger is attached.
func (ctx *Context) Errorf(format string, args ...any) {
	ctx.logError(fmt.Sprintf(format, args...))
}

// Warnf logs a warning when a logger is attached.
func (ctx *Context) Warnf(format string, args ...any) {
	if ctx != nil && ctx.Log != nil {
		ctx.Log.LogWarn(fmt.Sprintf(format, args...))
	}
}

// Debugf logs a debug message when a logger is attached.
func (ctx *Context) Debugf(format string, args ...any) {
	if ctx != nil && ctx.Log != nil {
		ctx.Log.LogDebug(fmt.Sprintf(format, args...))
	}
}
