// pattern: Imperative Shell

package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath   string // rotated JSON log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      string // debug, info, warn, error
	BufferSize int    // entries kept for the log pane (default 500)
}

// LoggerProvider hands out scoped loggers. Manager and TestLogManager both
// implement it.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog-style logger bound to a dotted scope such as
// "table.reservations" or "backend.feed".
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

func (l *ScopedLogger) Info(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

func (l *ScopedLogger) Error(msg string, args ...any) {
	if l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a logger that adds the key-value pairs to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), scope: l.scope}
}

// Scope returns the logger's dotted scope.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// Manager writes every entry to a rotated file and to the in-memory sink
// read by the log pane. The level can be changed at runtime.
type Manager struct {
	base  *zap.Logger
	sink  *ChannelSink
	file  *lumberjack.Logger
	level zap.AtomicLevel

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewManager opens the log file and builds the shared zap core.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: file path is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 500
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 14
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logging: level %q: %w", cfg.Level, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.BufferSize)

	enc := zapcore.NewJSONEncoder(encoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(file), level),
		zapcore.NewCore(enc.Clone(), sink, level),
	)

	return &Manager{
		base:    zap.New(core),
		sink:    sink,
		file:    file,
		level:   level,
		loggers: make(map[string]*ScopedLogger),
	}, nil
}

// encoderConfig is shared by every core so the sink can decode what the
// file receives.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.NameKey = "scope"
	return cfg
}

// For returns the cached logger for a scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[scope]; ok {
		return l
	}
	l := newScoped(m.base, m.level, scope)
	m.loggers[scope] = l
	return l
}

func newScoped(base *zap.Logger, level zapcore.LevelEnabler, scope string) *ScopedLogger {
	z := base.Named(scope)
	return &ScopedLogger{
		slog:  slog.New(&zapHandler{zap: z, level: level}),
		scope: scope,
	}
}

// SetLevel changes the minimum level of every logger, including ones
// already handed out.
func (m *Manager) SetLevel(level string) error {
	if err := m.level.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("logging: level %q: %w", level, err)
	}
	return nil
}

// Level returns the current minimum level.
func (m *Manager) Level() string {
	return m.level.String()
}

// Entries returns the stream read by the log pane.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Dropped returns how many entries the log pane never saw because it fell
// behind.
func (m *Manager) Dropped() uint64 {
	return m.sink.Dropped()
}

func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and releases the file and the entry stream.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}
