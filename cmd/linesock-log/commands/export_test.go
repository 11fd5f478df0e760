package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linesock/linesock-go/pkg/log"
)

func exportString(t *testing.T, format string) string {
	t.Helper()
	path := createTestLogFile(t, sessionEvents())
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if err := Export(reader, format, &buf); err != nil {
		t.Fatalf("Export(%s) failed: %v", format, err)
	}
	return buf.String()
}

func TestExportToJSONL(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(exportString(t, "jsonl")), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["Direction"] != "IN" {
		t.Errorf("Direction = %v, want IN", first["Direction"])
	}
	if first["Category"] != "DATA" {
		t.Errorf("Category = %v, want DATA", first["Category"])
	}
	data, ok := first["Data"].(map[string]any)
	if !ok {
		t.Fatalf("Data missing: %v", first)
	}
	if data["Text"] != "220 mail.example.org ESMTP\r\n" {
		t.Errorf("Text = %q", data["Text"])
	}
}

func TestExportToCSV(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(exportString(t, "csv"))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header + 6 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" {
		t.Errorf("unexpected header: %v", records[0])
	}

	out := records[3]
	if out[2] != "OUT" || out[7] != "Data" || out[8] != "10" || strings.TrimSpace(out[10]) != "STARTTLS" {
		t.Errorf("unexpected row: %q", out)
	}
	if records[4][6] != "true" {
		t.Errorf("expected secure flag on crypto row: %q", records[4])
	}
}

func TestExportToText(t *testing.T) {
	want := `< "220 mail.example.org ESMTP\r\n"
> "STARTTLS\r\n"
< "250-first\r\n250 last\r\n"
`
	if got := exportString(t, "text"); got != want {
		t.Errorf("text export:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunExportToFile(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 6 {
		t.Errorf("expected 6 lines, got %d", n)
	}
}
