package logger

import (
	"github.com/fatih/color"
)

// colorScheme defines consistent colors for summary figures.
// Green: success
// Red: failure
// Yellow: fixes applied
// Cyan: labels and counts
type colorScheme struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
}

// newColorScheme creates the standard color scheme. With enabled false every
// color prints plain text regardless of the global fatih/color setting.
func newColorScheme(enabled bool) *colorScheme {
	s := &colorScheme{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{s.success, s.fail, s.warn, s.label} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}
