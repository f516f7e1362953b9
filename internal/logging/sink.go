// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// isoLayout matches zapcore.ISO8601TimeEncoder.
const isoLayout = "2006-01-02T15:04:05.000Z0700"

// ChannelSink is a zapcore.WriteSyncer that decodes each JSON line into a
// LogEntry and keeps the newest entries in a bounded channel. When the
// reader falls behind the oldest entry is dropped; logging never blocks.
type ChannelSink struct {
	mu      sync.Mutex
	entries chan LogEntry
	closed  bool
	dropped atomic.Uint64
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, size)}
}

func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, err := decodeEntry(p)
	if err != nil {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("logging: sink closed")
	}
	for {
		select {
		case s.entries <- entry:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries:
			s.dropped.Add(1)
		default:
		}
	}
}

func (s *ChannelSink) Sync() error { return nil }

// Close ends the entry stream. Later writes fail.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// Dropped counts entries discarded to make room.
func (s *ChannelSink) Dropped() uint64 {
	return s.dropped.Load()
}

func decodeEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}
	e := LogEntry{Time: time.Now(), Level: LevelInfo, Scope: "salesdesk", Fields: map[string]any{}}
	if v, ok := raw["msg"].(string); ok {
		e.Message = v
	}
	if v, ok := raw["level"].(string); ok {
		e.Level = NormalizeLevel(v)
	}
	if v, ok := raw["scope"].(string); ok && v != "" {
		e.Scope = v
	}
	if v, ok := raw["time"].(string); ok {
		if t, err := time.Parse(isoLayout, v); err == nil {
			e.Time = t
		}
	}
	for k, v := range raw {
		switch k {
		case "msg", "level", "scope", "time", "caller", "stacktrace":
		default:
			e.Fields[k] = v
		}
	}
	return e, nil
}
