package rule

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/fuzz/internal/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures messages per level.
type recordingLogger struct {
	errors, warnings, infos, debugs []string
}

func (l *recordingLogger) LogTrace(string)   {}
func (l *recordingLogger) LogDebug(m string) { l.debugs = append(l.debugs, m) }
func (l *recordingLogger) LogInfo(m string)  { l.infos = append(l.infos, m) }
func (l *recordingLogger) LogWarn(m string)  { l.warnings = append(l.warnings, m) }
func (l *recordingLogger) LogError(m string) { l.errors = append(l.errors, m) }

type todoRule struct {
	Base
}

func newTodoRule() *todoRule {
	return &todoRule{Base{RuleID: "check_todo", RuleDescription: "flags TODO", RuleErrorMsg: "TODO found"}}
}

func (r *todoRule) Run(ctx *Context, t *target.Target) (bool, error) {
	return Scan(ctx, r, t, func(c *target.Cursor) error {
		if strings.Contains(c.Line(), "TODO") {
			c.MarkViolation()
		}
		return nil
	})
}

func fileTarget(t *testing.T, content string) *target.Target {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.h")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	tgt, err := target.NewFile(path)
	require.NoError(t, err)
	return tgt
}

func TestScanReportsFlaggedLines(t *testing.T) {
	log := &recordingLogger{}
	ctx := &Context{Log: log}
	tgt := fileTarget(t, "ok\nTODO one\nok\nTODO two\n")

	ok, err := newTodoRule().Run(ctx, tgt)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, log.errors, 1)
	assert.Equal(t, tgt.Path+":[2,4] TODO found", log.errors[0])
}

func TestScanCleanFileReportsNothing(t *testing.T) {
	log := &recordingLogger{}
	ok, err := newTodoRule().Run(&Context{Log: log}, fileTarget(t, "fine\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, log.errors)
}

func TestScanHonoursDirectives(t *testing.T) {
	tgt := fileTarget(t, "// X11_FUZZ: disable check_todo\nTODO\n// X11_FUZZ: enable check_todo\n")
	ok, err := newTodoRule().Run(&Context{}, tgt)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScanPropagatesErrors(t *testing.T) {
	tgt := fileTarget(t, "// X11_FUZZ: disable\n")
	ok, err := newTodoRule().Run(&Context{}, tgt)
	assert.ErrorIs(t, err, target.ErrMalformedDirective)
	assert.False(t, ok)
}

func TestFormatViolation(t *testing.T) {
	assert.Equal(t, "a/b.h:[1] msg", FormatViolation("a/b.h", []int{1}, "msg"))
	assert.Equal(t, "x:[3,7,9] m", FormatViolation("x", []int{3, 7, 9}, "m"))
}

func TestSettings(t *testing.T) {
	s := Settings{
		"int":    4,
		"float":  8.0,
		"string": " 6 ",
		"name":   "abc",
		"flag":   true,
	}

	assert.Equal(t, 4, s.Int("int", 2))
	assert.Equal(t, 8, s.Int("float", 2))
	assert.Equal(t, 6, s.Int("string", 2))
	assert.Equal(t, 2, s.Int("name", 2))
	assert.Equal(t, 2, s.Int("missing", 2))
	assert.Equal(t, "abc", s.String("name", "def"))
	assert.Equal(t, "def", s.String("missing", "def"))
	assert.True(t, s.Bool("flag", false))
	assert.True(t, s.Bool("missing", true))

	var empty Settings
	assert.Equal(t, 3, empty.Int("x", 3))
}

func TestBaseAppliesToEverything(t *testing.T) {
	dir, err := target.NewDirectory(t.TempDir())
	require.NoError(t, err)
	r := newTodoRule()
	assert.True(t, r.AppliesTo(dir))
	assert.Equal(t, "check_todo", r.ID())
	assert.Equal(t, "flags TODO", r.Description())
	assert.Equal(t, "TODO found", r.ErrorMessage())
}
