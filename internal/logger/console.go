// Package logger provides the leveled console logger fuzz reports through.
//
// Violations are logged at error level so they are shown at every
// verbosity; progress and fix details sit at info and debug.
// Implementations are thread-safe.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// levels lists the log levels from most to least verbose, with the
// attributes their tag is printed in on a terminal.
var levels = []struct {
	name  string
	attrs []color.Attribute
}{
	{"TRACE", []color.Attribute{color.FgHiBlack}},
	{"DEBUG", []color.Attribute{color.FgCyan}},
	{"INFO", []color.Attribute{color.FgBlue}},
	{"WARN", []color.Attribute{color.FgYellow, color.Bold}},
	{"ERROR", []color.Attribute{color.FgRed, color.Bold}},
}

// rank returns the position of level in levels, or -1.
func rank(level string) int {
	for i, l := range levels {
		if strings.EqualFold(l.name, level) {
			return i
		}
	}
	return -1
}

// ConsoleLogger logs to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is enabled when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
		now:         time.Now,
	}
}

// VerbosityLevel maps a -v count to a log level:
// 0 warn, 1 info, 2 debug, 3 and above trace.
func VerbosityLevel(verbosity int) string {
	switch {
	case verbosity <= 0:
		return "warn"
	case verbosity == 1:
		return "info"
	case verbosity == 2:
		return "debug"
	default:
		return "trace"
	}
}

// isTerminal reports whether w is a TTY that should get colors.
// NO_COLOR (honoured by fatih/color) turns colors off.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases level, falling back to "info" when it
// names no known level.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if rank(normalized) < 0 {
		return "info"
	}
	return normalized
}

// Level returns the configured minimum level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return rank(messageLevel) >= rank(cl.logLevel)
}

// LogTrace logs at trace level, the most verbose.
func (cl *ConsoleLogger) LogTrace(message string) { cl.logWithLevel("TRACE", message) }

// LogDebug logs at debug level.
func (cl *ConsoleLogger) LogDebug(message string) { cl.logWithLevel("DEBUG", message) }

// LogInfo logs at info level.
func (cl *ConsoleLogger) LogInfo(message string) { cl.logWithLevel("INFO", message) }

// LogWarn logs at warn level. Unreadable targets are reported here.
func (cl *ConsoleLogger) LogWarn(message string) { cl.logWithLevel("WARN", message) }

// LogError logs at error level. Violations and rule exceptions are
// reported here and therefore shown at every verbosity.
func (cl *ConsoleLogger) LogError(message string) { cl.logWithLevel("ERROR", message) }

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	tag := level
	if cl.colorOutput {
		c := color.New(levels[rank(level)].attrs...)
		c.EnableColor()
		tag = c.Sprint(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", cl.timestamp(), tag, message)
}

// Summary describes the outcome of one check run.
type Summary struct {
	Targets  int
	Failed   int
	Aborted  int
	Fixed    int
	Duration time.Duration
}

// LogSummary logs the run summary at INFO level.
// Format: "[HH:MM:SS] Checked N targets: F failed, A aborted, X fixed (<duration>)"
func (cl *ConsoleLogger) LogSummary(s Summary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	scheme := newColorScheme(cl.colorOutput)
	failed := fmt.Sprintf("%d failed", s.Failed)
	if s.Failed > 0 {
		failed = scheme.fail.Sprint(failed)
	} else {
		failed = scheme.success.Sprint(failed)
	}
	aborted := fmt.Sprintf("%d aborted", s.Aborted)
	if s.Aborted > 0 {
		aborted = scheme.fail.Sprint(aborted)
	}
	fixed := fmt.Sprintf("%d fixed", s.Fixed)
	if s.Fixed > 0 {
		fixed = scheme.warn.Sprint(fixed)
	}

	fmt.Fprintf(cl.writer, "[%s] Checked %s targets: %s, %s, %s (%s)\n",
		cl.timestamp(), scheme.label.Sprint(s.Targets), failed, aborted, fixed, formatDuration(s.Duration))
}

func (cl *ConsoleLogger) timestamp() string {
	return cl.now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "250ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// NoOpLogger discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(message string) {}
func (n *NoOpLogger) LogDebug(message string) {}
func (n *NoOpLogger) LogInfo(message string)  {}
func (n *NoOpLogger) LogWarn(message string)  {}
func (n *NoOpLogger) LogError(message string) {}
