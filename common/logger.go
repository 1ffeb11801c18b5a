package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// ColorHandler is a slog handler that adds colors and compact formatting
// for interactive terminal use.
type ColorHandler struct {
	enableColor bool
	minLevel    slog.Level
}

func NewColorHandler(minLevel slog.Level) *ColorHandler {
	return &ColorHandler{
		enableColor: isTerminal(),
		minLevel:    minLevel,
	}
}

func (h *ColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

func (h *ColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *ColorHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *ColorHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf strings.Builder

	if h.enableColor {
		buf.WriteString(Gray)
	}
	buf.WriteString(r.Time.Format("15:04:05"))
	if h.enableColor {
		buf.WriteString(Reset)
	}
	buf.WriteString(" ")

	var color string
	if h.enableColor {
		switch r.Level {
		case slog.LevelDebug:
			color = Gray
		case slog.LevelInfo:
			color = Blue
		case slog.LevelWarn:
			color = Yellow
		case slog.LevelError:
			color = Red
		default:
			color = White
		}
		buf.WriteString(color)
		buf.WriteString("[")
		buf.WriteString(r.Level.String())
		buf.WriteString("]")
		buf.WriteString(Reset)
	} else {
		buf.WriteString("[")
		buf.WriteString(r.Level.String())
		buf.WriteString("]")
	}
	buf.WriteString(" ")
	buf.WriteString(r.Message)

	if r.NumAttrs() > 0 {
		r.Attrs(func(a slog.Attr) bool {
			buf.WriteString(" ")
			if h.enableColor {
				buf.WriteString(Gray)
			}
			buf.WriteString(a.Key)
			buf.WriteString("=")
			buf.WriteString(fmt.Sprintf("%v", a.Value.Any()))
			if h.enableColor {
				buf.WriteString(Reset)
			}
			return true
		})
	}

	buf.WriteString("\n")

	_, err := os.Stdout.Write([]byte(buf.String()))
	return err
}

// isTerminal reports whether stdout supports ANSI colors.
func isTerminal() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if os.Getenv("CI") != "" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Log is the package-level logger used by the convenience functions below.
var Log *slog.Logger

func init() {
	Log = slog.New(newDefaultHandler())
	slog.SetDefault(Log)
}

// newDefaultHandler picks ColorHandler for an interactive terminal and falls
// back to tint's handler (DOCWEAVE_LOG_FORMAT=tint, or any non-tty output)
// for CI and piped logs, where tint's plain structured lines are easier to
// grep than a hand-rolled color scheme.
func newDefaultHandler() slog.Handler {
	if GetEnv("DOCWEAVE_LOG_FORMAT", "") == "tint" || !isTerminal() {
		return tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			NoColor:    !isTerminal(),
		})
	}
	return NewColorHandler(slog.LevelDebug)
}

func sprintf(msg string, args []any) string {
	return fmt.Sprintf(msg, args...)
}

func Debug(msg string, args ...any) {
	if len(args) > 0 && containsFormatVerbs(msg) {
		Log.Debug(sprintf(msg, args))
	} else {
		Log.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if len(args) > 0 && containsFormatVerbs(msg) {
		Log.Info(sprintf(msg, args))
	} else {
		Log.Info(msg, args...)
	}
}

func Warning(msg string, args ...any) {
	if len(args) > 0 && containsFormatVerbs(msg) {
		Log.Warn(sprintf(msg, args))
	} else {
		Log.Warn(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if len(args) > 0 && containsFormatVerbs(msg) {
		Log.Error(sprintf(msg, args))
	} else {
		Log.Error(msg, args...)
	}
}

func containsFormatVerbs(s string) bool {
	return strings.Contains(s, "%s") || strings.Contains(s, "%d") ||
		strings.Contains(s, "%v") || strings.Contains(s, "%f") ||
		strings.Contains(s, "%t") || strings.Contains(s, "%x") ||
		strings.Contains(s, "%q") || strings.Contains(s, "%w") ||
		strings.Contains(s, "%%")
}

// Fatal logs an error at error level and exits the process.
func Fatal(msg string, args ...any) {
	newArgs := append(append([]any{}, args...), "log_type", "FATAL")
	if containsFormatVerbs(msg) {
		Log.Error(fmt.Sprintf(msg, args...), "log_type", "FATAL")
	} else {
		Log.Error(msg, newArgs...)
	}
	os.Exit(1)
}

// Colorize wraps text in an ANSI color, a no-op when colors are disabled.
func Colorize(text, color string) string {
	if !isTerminal() {
		return text
	}
	return color + text + Reset
}

// Timer measures and logs the duration of a named operation.
type Timer struct {
	start time.Time
	name  string
}

func StartTimer(name string) *Timer {
	Debug("starting timer: %s", name)
	return &Timer{start: time.Now(), name: name}
}

func (t *Timer) End() {
	Info("timer completed: %s in %v", t.name, time.Since(t.start))
}
