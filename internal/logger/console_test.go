package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
}

func newTestLogger(buf *bytes.Buffer, level string) *ConsoleLogger {
	l := NewConsoleLogger(buf, level)
	l.now = fixedClock
	return l
}

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger == nil {
			t.Fatal("expected non-nil logger")
		}
		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("buffers never get color output")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "info")
		if logger == nil {
			t.Fatal("expected non-nil logger even with nil writer")
		}
		logger.LogError("dropped")
	})
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"DEBUG", "debug"},
		{" warn ", "warn"},
		{"error", "error"},
		{"", "info"},
		{"verbose", "info"},
	}

	for _, tt := range tests {
		if got := normalizeLogLevel(tt.input); got != tt.want {
			t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVerbosityLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      string
	}{
		{-1, "warn"},
		{0, "warn"},
		{1, "info"},
		{2, "debug"},
		{3, "trace"},
		{7, "trace"},
	}

	for _, tt := range tests {
		if got := VerbosityLevel(tt.verbosity); got != tt.want {
			t.Errorf("VerbosityLevel(%d) = %q, want %q", tt.verbosity, got, tt.want)
		}
	}
}

func TestLogFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf, "info")

	logger.LogError("src/a.h:[3] tab(s) detected")

	want := "[15:04:05] [ERROR] src/a.h:[3] tab(s) detected\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
	}{
		{"trace", []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}},
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}},
		{"info", []string{"INFO", "WARN", "ERROR"}},
		{"warn", []string{"WARN", "ERROR"}},
		{"error", []string{"ERROR"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := newTestLogger(buf, tt.level)

			logger.LogTrace("m")
			logger.LogDebug("m")
			logger.LogInfo("m")
			logger.LogWarn("m")
			logger.LogError("m")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.expected) {
				t.Fatalf("expected %d lines, got %d: %q", len(tt.expected), len(lines), buf.String())
			}
			for i, lvl := range tt.expected {
				if !strings.Contains(lines[i], "["+lvl+"]") {
					t.Errorf("line %d: expected level %s, got %q", i, lvl, lines[i])
				}
			}
		})
	}
}

func TestLogSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf, "info")

	logger.LogSummary(Summary{Targets: 12, Failed: 2, Aborted: 1, Fixed: 3, Duration: 1500 * time.Millisecond})

	want := "[15:04:05] Checked 12 targets: 2 failed, 1 aborted, 3 fixed (1s)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestLogSummaryFilteredAtWarn(t *testing.T) {
	buf := &bytes.Buffer{}
	newTestLogger(buf, "warn").LogSummary(Summary{Targets: 1})
	if buf.Len() != 0 {
		t.Errorf("summary should be suppressed at warn level, got %q", buf.String())
	}
}

func TestColorOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf, "info")
	logger.colorOutput = true

	logger.LogError("boom")

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected ANSI codes in colored output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected message in output, got %q", buf.String())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour + time.Second, "1h0m1s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestConcurrentLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("line")
		}()
	}
	wg.Wait()

	if got := strings.Count(buf.String(), "\n"); got != 20 {
		t.Errorf("expected 20 lines, got %d", got)
	}
}

func TestNoOpLogger(t *testing.T) {
	n := NewNoOpLogger()
	n.LogTrace("x")
	n.LogDebug("x")
	n.LogInfo("x")
	n.LogWarn("x")
	n.LogError("x")
}
