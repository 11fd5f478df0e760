package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/linesock/linesock-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return Export(reader, format, w)
}

// Export writes every event from r to w in format (jsonl, csv or text).
func Export(r *log.Reader, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		return exportJSONL(r, w)
	case "csv":
		return exportCSV(r, w)
	case "text":
		return exportText(r, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv, text)", format)
	}
}

// jsonEvent flattens enums to names for readable JSON.
type jsonEvent struct {
	log.Event
	Direction string `json:"Direction"`
	Category  string `json:"Category"`
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out := jsonEvent{Event: event, Direction: event.Direction.String(), Category: event.Category.String()}
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "connection_id", "direction", "category", "host", "port", "secure", "type", "size", "lines", "text"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var size, lines, text string
		switch {
		case event.Data != nil:
			size = strconv.Itoa(event.Data.Size)
			lines = strconv.Itoa(event.Data.Lines)
			text = event.Data.Text
		case event.StateChange != nil:
			text = event.StateChange.NewState
		case event.Error != nil:
			text = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.ConnectionID,
			event.Direction.String(),
			event.Category.String(),
			event.Host,
			strconv.Itoa(event.Port),
			strconv.FormatBool(event.Secure),
			typeLabel(event),
			size,
			lines,
			text,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// exportText writes the raw conversation, one line per transfer, prefixed
// with "<" for received and ">" for sent data.
func exportText(reader *log.Reader, w io.Writer) error {
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if event.Data == nil {
			continue
		}
		prefix := "<"
		if event.Direction == log.DirectionOut {
			prefix = ">"
		}
		fmt.Fprintf(w, "%s %s\n", prefix, strconv.Quote(event.Data.Text))
	}
}
