package target

import "slices"

// Cursor is a directive-aware line iterator over a file's lines for one rule.
//
// The cursor shares the target's line slice, so SetText mutations are seen
// by the target and by every later rule. Suppression at a line is a pure
// function of the directives on that line and all lines before it; states
// are cached up to the furthest line computed so moving backward reproduces
// the state a forward scan would have found.
type Cursor struct {
	lines      []string
	index      int
	ruleID     string
	suppressed bool
	flagged    []int

	// states[i] is the suppression state at line index i
	states []bool
}

// NewCursor creates a cursor positioned on the first line.
func NewCursor(lines []string, ruleID string) (*Cursor, error) {
	c := &Cursor{
		lines:  lines,
		ruleID: ruleID,
	}
	if err := c.land(); err != nil {
		return nil, err
	}
	return c, nil
}

// RuleID returns the id of the rule this cursor scans for.
func (c *Cursor) RuleID() string {
	return c.ruleID
}

// Line returns the text at the cursor, or "" at end of file.
func (c *Cursor) Line() string {
	s, _ := c.Peek(0)
	return s
}

// LineNumber returns the 1-based number of the current line.
func (c *Cursor) LineNumber() int {
	return c.index + 1
}

// Len returns the number of lines in the file.
func (c *Cursor) Len() int {
	return len(c.lines)
}

// Peek returns the line at offset from the cursor. ok is false when the
// resulting position is out of range.
func (c *Cursor) Peek(offset int) (string, bool) {
	i := c.index + offset
	if i < 0 || i >= len(c.lines) {
		return "", false
	}
	return c.lines[i], true
}

// SetText replaces the line at offset from the cursor. It returns false,
// leaving the content untouched, when the position is out of range.
func (c *Cursor) SetText(offset int, text string) bool {
	i := c.index + offset
	if i < 0 || i >= len(c.lines) {
		return false
	}
	c.lines[i] = text
	if i < len(c.states) {
		c.states = c.states[:i]
	}
	return true
}

// SetLine replaces the current line.
func (c *Cursor) SetLine(text string) bool {
	return c.SetText(0, text)
}

// Suppressed reports whether the rule is disabled at the current line.
func (c *Cursor) Suppressed() bool {
	return c.suppressed
}

// EOF reports whether the cursor has moved past the last line.
func (c *Cursor) EOF() bool {
	return c.index >= len(c.lines)
}

// BOF reports whether the cursor is on the first line.
func (c *Cursor) BOF() bool {
	return c.index <= 0
}

// Advance moves the cursor distance lines, forward when positive and
// backward when negative, one line at a time. Directive state is recomputed
// after every step. Movement stops at the first line and at end of file.
// It returns the new 1-based line number.
func (c *Cursor) Advance(distance int) (int, error) {
	for ; distance > 0 && !c.EOF(); distance-- {
		c.index++
		if c.EOF() {
			break
		}
		if err := c.land(); err != nil {
			return c.LineNumber(), err
		}
	}
	for ; distance < 0 && !c.BOF(); distance++ {
		c.index--
		if err := c.land(); err != nil {
			return c.LineNumber(), err
		}
	}
	return c.LineNumber(), nil
}

// SkipToEnd moves the cursor directly to end of file.
func (c *Cursor) SkipToEnd() {
	c.index = len(c.lines)
}

// MarkViolation flags the current line.
func (c *Cursor) MarkViolation() {
	c.MarkLine(c.LineNumber())
}

// MarkLine flags the given 1-based line number.
func (c *Cursor) MarkLine(lineNumber int) {
	i, found := slices.BinarySearch(c.flagged, lineNumber)
	if !found {
		c.flagged = slices.Insert(c.flagged, i, lineNumber)
	}
}

// Flagged returns the flagged line numbers in ascending order.
func (c *Cursor) Flagged() []int {
	return slices.Clone(c.flagged)
}

// land recomputes the suppression state for the current line.
func (c *Cursor) land() error {
	if c.EOF() {
		return nil
	}
	for len(c.states) <= c.index {
		i := len(c.states)
		prev := false
		if i > 0 {
			prev = c.states[i-1]
		}
		state, err := applyDirectives(prev, c.lines[i], i+1, c.ruleID)
		if err != nil {
			return err
		}
		c.states = append(c.states, state)
	}
	c.suppressed = c.states[c.index]
	return nil
}
