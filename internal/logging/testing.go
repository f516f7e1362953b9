// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a logger that discards everything.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// TestLogManager is a LoggerProvider that only writes to an in-memory
// sink at debug level, for asserting on log output in tests.
type TestLogManager struct {
	sink *ChannelSink
	base *zap.Logger

	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

func NewTestLogManager(size int) *TestLogManager {
	sink := NewChannelSink(size)
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, zapcore.DebugLevel)
	return &TestLogManager{
		sink:    sink,
		base:    zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

func (m *TestLogManager) For(scope string) *ScopedLogger {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.loggers[scope]; ok {
		return l
	}
	l := newScoped(m.base, zapcore.DebugLevel, scope)
	m.loggers[scope] = l
	return l
}

// Drain returns every entry written so far without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var out []LogEntry
	for {
		select {
		case e, ok := <-m.sink.Entries():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
