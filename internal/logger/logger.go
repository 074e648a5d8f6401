package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level represents the log level
type Level int

const (
	LevelTrace Level = iota // Wire-level detail (-vv)
	LevelDebug              // Debug information (-v)
	LevelInfo               // Important steps
	LevelWarn               // Default threshold
	LevelError              // Error messages
)

// ANSI color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[90m"
)

// LevelFromVerbosity maps the count of -v flags to a threshold.
func LevelFromVerbosity(count int) Level {
	switch {
	case count <= 0:
		return LevelWarn
	case count == 1:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Logger provides levelled logging for the CLI. Output goes to stderr so
// that stdout carries only the model response.
type Logger struct {
	writer    io.Writer
	level     Level
	showTime  bool
	colorMode bool
}

// NewLogger creates a new Logger instance
func NewLogger(w io.Writer, level Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		writer:    w,
		level:     level,
		showTime:  true,
		colorMode: true,
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return &Logger{writer: io.Discard, level: LevelError + 1}
}

// SetColorMode enables or disables colored output
func (l *Logger) SetColorMode(enabled bool) {
	l.colorMode = enabled
}

// SetShowTime enables or disables timestamp display
func (l *Logger) SetShowTime(enabled bool) {
	l.showTime = enabled
}

// Level returns the current threshold.
func (l *Logger) Level() Level {
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.level <= level
}

func (l *Logger) Trace(format string, args ...any) {
	if l.Enabled(LevelTrace) {
		l.log(ColorGray, "TRACE", format, args...)
	}
}

// Debug logs debug information (only shown with -v)
func (l *Logger) Debug(format string, args ...any) {
	if l.Enabled(LevelDebug) {
		l.log(ColorGray, "DEBUG", format, args...)
	}
}

// Info logs general information
func (l *Logger) Info(format string, args ...any) {
	if l.Enabled(LevelInfo) {
		l.log(ColorBlue, "INFO", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...any) {
	if l.Enabled(LevelWarn) {
		l.log(ColorYellow, "WARN", format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) {
	if l.Enabled(LevelError) {
		l.log(ColorRed, "ERROR", format, args...)
	}
}

// TraceJSON logs a titled JSON document, pretty-printed when long.
func (l *Logger) TraceJSON(title string, raw []byte) {
	if !l.Enabled(LevelTrace) {
		return
	}
	l.log(ColorGray, "TRACE", "%s: %s", title, formatJSON(string(raw)))
}

// log is the core logging method
func (l *Logger) log(color, level, format string, args ...any) {
	timestamp := ""
	if l.showTime {
		timestamp = time.Now().Format("15:04:05") + " "
	}

	msg := fmt.Sprintf(format, args...)

	if l.colorMode {
		fmt.Fprintf(l.writer, "%s%s[%s]%s %s\n",
			color, timestamp, level, ColorReset, msg)
	} else {
		fmt.Fprintf(l.writer, "%s[%s] %s\n", timestamp, level, msg)
	}
}

// formatJSON formats JSON strings adaptively based on length
// Short JSON (< 80 chars) stays compact, long JSON gets pretty-printed
func formatJSON(jsonStr string) string {
	compact := strings.TrimSpace(jsonStr)

	if len(compact) < 80 {
		return compact
	}

	var obj interface{}
	if err := json.Unmarshal([]byte(compact), &obj); err != nil {
		return compact
	}

	pretty, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return compact
	}

	return string(pretty)
}
