package logging

import (
	"testing"
	"time"
)

func TestChannelSink_Decode(t *testing.T) {
	sink := NewChannelSink(4)
	defer func() { _ = sink.Close() }()

	line := `{"level":"warn","time":"2026-05-04T09:30:15.250Z","scope":"backend","msg":"request failed","caller":"x.go:1","status":502}` + "\n"
	n, err := sink.Write([]byte(line))
	if err != nil || n != len(line) {
		t.Fatalf("Write() = %d, %v", n, err)
	}

	got := <-sink.Entries()
	if got.Level != LevelWarn || got.Scope != "backend" || got.Message != "request failed" {
		t.Errorf("decoded entry = %+v", got)
	}
	if want := time.Date(2026, 5, 4, 9, 30, 15, 250e6, time.UTC); !got.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", got.Time, want)
	}
	if _, ok := got.Fields["caller"]; ok {
		t.Error("caller should not be kept as a field")
	}
	if got.Fields["status"] != float64(502) {
		t.Errorf("status field = %v", got.Fields["status"])
	}
}

func TestChannelSink_DropsOldest(t *testing.T) {
	sink := NewChannelSink(2)
	defer func() { _ = sink.Close() }()

	for _, msg := range []string{"one", "two", "three", "four"} {
		if _, err := sink.Write([]byte(`{"msg":"` + msg + `"}`)); err != nil {
			t.Fatalf("Write(%s) error = %v", msg, err)
		}
	}
	if got := sink.Dropped(); got != 2 {
		t.Errorf("Dropped() = %d, want 2", got)
	}
	first, second := <-sink.Entries(), <-sink.Entries()
	if first.Message != "three" || second.Message != "four" {
		t.Errorf("kept %q, %q; want the newest two", first.Message, second.Message)
	}
}

func TestChannelSink_IgnoresGarbage(t *testing.T) {
	sink := NewChannelSink(1)
	defer func() { _ = sink.Close() }()

	n, err := sink.Write([]byte("not json"))
	if err != nil || n != len("not json") {
		t.Errorf("Write() = %d, %v; garbage should be swallowed", n, err)
	}
	select {
	case e := <-sink.Entries():
		t.Errorf("unexpected entry %+v", e)
	default:
	}
}

func TestChannelSink_Close(t *testing.T) {
	sink := NewChannelSink(1)
	_ = sink.Close()
	_ = sink.Close()
	if _, err := sink.Write([]byte(`{"msg":"late"}`)); err == nil {
		t.Error("write after close should fail")
	}
	if _, ok := <-sink.Entries(); ok {
		t.Error("entries channel should be closed")
	}
}
