package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/linesock/linesock-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.llog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sessionEvents is a short SMTP exchange with a STARTTLS upgrade.
func sessionEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	base := log.Event{ConnectionID: "abc12345-6789-0123-4567-890abcdef012", Host: "mail.example.org", Port: 25}

	at := func(offset time.Duration, e log.Event) log.Event {
		e.Timestamp = ts.Add(offset)
		e.ConnectionID = base.ConnectionID
		e.Host = base.Host
		e.Port = base.Port
		return e
	}

	code := 104
	return []log.Event{
		at(0, log.Event{Category: log.CategoryState, StateChange: &log.StateChangeEvent{
			Entity: log.StateEntityConnection, OldState: log.StateClosed, NewState: log.StateConnected,
		}}),
		at(10*time.Millisecond, log.Event{Direction: log.DirectionIn, Category: log.CategoryData,
			Data: log.NewDataEvent("220 mail.example.org ESMTP\r\n", 1)}),
		at(20*time.Millisecond, log.Event{Direction: log.DirectionOut, Category: log.CategoryData,
			Data: log.NewDataEvent("STARTTLS\r\n", 0)}),
		at(30*time.Millisecond, log.Event{Category: log.CategoryState, Secure: true, StateChange: &log.StateChangeEvent{
			Entity: log.StateEntityCrypto, OldState: log.StatePlain, NewState: log.StateSecure, Reason: "TLS 1.3",
		}}),
		at(40*time.Millisecond, log.Event{Direction: log.DirectionIn, Category: log.CategoryData, Secure: true,
			Data: log.NewDataEvent("250-first\r\n250 last\r\n", 2)}),
		at(2*time.Second, log.Event{Category: log.CategoryError, Secure: true, Error: &log.ErrorEventData{
			Kind: "connectivity", Message: "connection reset by peer", Code: &code, Context: "read",
		}}),
	}
}
