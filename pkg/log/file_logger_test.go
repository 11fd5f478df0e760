package log

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.llog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
}

func TestFileLoggerBadPath(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "test.llog"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFileLoggerWritesAndReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.llog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionOut,
		Category:     CategoryData,
		Data:         NewDataEvent("GET /\r\n", 0),
	})
	logger.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Category:     CategoryData,
		Data:         NewDataEvent("HTTP/1.0 200 OK\r\n", 1),
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var texts []string
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		texts = append(texts, ev.Data.Text)
	}

	if len(texts) != 2 || texts[0] != "GET /\r\n" || texts[1] != "HTTP/1.0 200 OK\r\n" {
		t.Errorf("texts = %q", texts)
	}
	if logger.Dropped() != 0 {
		t.Errorf("Dropped = %d, want 0", logger.Dropped())
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.llog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{ConnectionID: "conn", Category: CategoryState,
			StateChange: &StateChangeEvent{NewState: StateConnected}})
		logger.Close()
	}

	if n := countEvents(t, path, Filter{}); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "test.llog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	// Ignored after close.
	logger.Log(Event{ConnectionID: "late"})
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.llog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				logger.Log(Event{ConnectionID: "conn", Category: CategoryData, Data: NewDataEvent("x\r\n", 1)})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if n := countEvents(t, path, Filter{}); n != 100 {
		t.Errorf("got %d events, want 100", n)
	}
}

func TestFilterMatches(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	in, out := DirectionIn, DirectionOut
	state := CategoryState
	before, after := base.Add(-time.Second), base.Add(time.Second)

	ev := Event{
		Timestamp:    base,
		ConnectionID: "c1",
		Direction:    DirectionIn,
		Category:     CategoryData,
		Host:         "pop.example.org",
		Data:         NewDataEvent("+OK POP3 ready\r\n", 1),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"connection", Filter{ConnectionID: "c1"}, true},
		{"other connection", Filter{ConnectionID: "c2"}, false},
		{"direction", Filter{Direction: &in}, true},
		{"other direction", Filter{Direction: &out}, false},
		{"category", Filter{Category: &state}, false},
		{"start inclusive", Filter{TimeStart: &base}, true},
		{"end exclusive", Filter{TimeEnd: &base}, false},
		{"window", Filter{TimeStart: &before, TimeEnd: &after}, true},
		{"host", Filter{Host: "pop.example.org"}, true},
		{"other host", Filter{Host: "imap.example.org"}, false},
		{"contains", Filter{Contains: "POP3"}, true},
		{"not contains", Filter{Contains: "IMAP"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(ev); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}

	// Contains never matches events without text.
	f := Filter{Contains: "x"}
	if f.Matches(Event{Category: CategoryState}) {
		t.Error("Contains matched a state event")
	}
}

func TestStreamReaderFilters(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, ev := range []Event{
		{ConnectionID: "a", Category: CategoryData},
		{ConnectionID: "b", Category: CategoryData},
		{ConnectionID: "a", Category: CategoryError, Error: &ErrorEventData{Message: "x"}},
	} {
		if err := enc.Encode(ev); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	r := NewStreamReader(&buf, Filter{ConnectionID: "a"})
	var got []Category
	for {
		ev, err := r.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("Next failed: %v", err)
			}
			break
		}
		got = append(got, ev.Category)
	}
	if len(got) != 2 || got[0] != CategoryData || got[1] != CategoryError {
		t.Errorf("got %v", got)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on stream reader: %v", err)
	}
}

func TestNewReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "none.llog")); err == nil {
		t.Error("expected error")
	}
}

func countEvents(t *testing.T, path string, f Filter) int {
	t.Helper()
	r, err := NewFilteredReader(path, f)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	n := 0
	for {
		if _, err := r.Next(); err != nil {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("Next failed: %v", err)
			}
			return n
		}
		n++
	}
}
