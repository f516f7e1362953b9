// pattern: Functional Core

package logging

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Levels in increasing severity, as shown in the log pane.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogEntry is one decoded log line.
type LogEntry struct {
	Time    time.Time
	Level   string
	Scope   string
	Message string
	Fields  map[string]any
}

// String renders the entry on one line with fields in key order.
func (e LogEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %-5s %s: %s", e.Time.Format("15:04:05"), e.Level, e.Scope, e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// InScope reports whether the entry belongs to scope or one of its
// children. "table" matches "table.reservations" but not "tables".
func (e LogEntry) InScope(scope string) bool {
	if scope == "" || e.Scope == scope {
		return true
	}
	return strings.HasPrefix(e.Scope, scope+".")
}

// AtLeast reports whether the entry is at or above the given level.
func (e LogEntry) AtLeast(level string) bool {
	return severity(e.Level) >= severity(NormalizeLevel(level))
}

// NormalizeLevel maps config and zap level names onto the pane's labels.
// Unknown names read as INFO.
func NormalizeLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error", "dpanic", "panic", "fatal":
		return LevelError
	default:
		return LevelInfo
	}
}

func severity(level string) int {
	switch level {
	case LevelDebug:
		return 0
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}
