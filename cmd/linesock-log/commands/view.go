// Package commands implements the linesock-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/linesock/linesock-go/pkg/log"
)

// timestampLayout is used by view and export.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Direction *log.Direction
	Category  *log.Category
	Contains  string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Direction: f.Direction,
		Category:  f.Category,
		Contains:  f.Contains,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION tcp://host:port Type
	ts := event.Timestamp.UTC().Format(timestampLayout)
	connID := shortenConnID(event.ConnectionID)

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, event.Direction, endpoint(event), typeLabel(event))

	switch {
	case event.Data != nil:
		formatDataDetails(w, event.Data)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.Data != nil:
		return "Data"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func endpoint(event log.Event) string {
	scheme := "tcp"
	if event.Secure {
		scheme = "tls"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, event.Host, event.Port)
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatDataDetails(w io.Writer, data *log.DataEvent) {
	fmt.Fprintf(w, "  Size: %d bytes", data.Size)
	if data.Lines > 0 {
		fmt.Fprintf(w, ", %d lines", data.Lines)
	}
	fmt.Fprintln(w)
	for _, line := range strings.Split(strings.TrimRight(data.Text, "\r\n"), "\n") {
		fmt.Fprintf(w, "  | %s\n", strings.TrimRight(line, "\r"))
	}
	if data.Truncated {
		fmt.Fprintln(w, "  (truncated)")
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	c, ok := log.ParseCategory(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("invalid category: %s (must be data, state, or error)", s)
	}
	return c, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
