// Command linesock-log views and analyses linesock capture files.
//
// Capture files are written by sockets configured with a protocol logger,
// for example by running linesock with the -capture flag.
//
// Usage:
//
//	linesock-log <command> [flags] <file.llog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL, CSV or text
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View only data sent to the server
//	linesock-log view --direction out smtp.llog
//
//	# Replay the conversation as text
//	linesock-log export --format text smtp.llog
//
//	# Keep one connection
//	linesock-log filter --conn-id abc12345-... -o one.llog smtp.llog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/linesock/linesock-go/cmd/linesock-log/commands"
)

const usage = `linesock-log - linesock Capture Analyzer

Usage:
  linesock-log <command> [flags] <file.llog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL, CSV or text
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "linesock-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parseWithPath parses args and returns the single positional log path.
func parseWithPath(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func usageFor(fs *flag.FlagSet, title, synopsis string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "linesock-log %s - %s\n\nUsage:\n  linesock-log %s\n\nFlags:\n", fs.Name(), title, synopsis)
		fs.PrintDefaults()
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	usageFor(fs, "View capture file in human-readable format", "view [flags] <file.llog>")

	direction := fs.String("direction", "", "Filter by direction (in, out)")
	category := fs.String("category", "", "Filter by category (data, state, error)")
	contains := fs.String("contains", "", "Only data events containing this text")

	path := parseWithPath(fs, args)

	filter := commands.ViewFilter{Contains: *contains}
	if *direction != "" {
		d, err := commands.ParseDirectionFlag(*direction)
		if err != nil {
			fail(err)
		}
		filter.Direction = &d
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	usageFor(fs, "Export capture file to JSONL, CSV or text", "export [flags] <file.llog>")

	format := fs.String("format", "jsonl", "Output format (jsonl, csv, text)")
	output := fs.String("o", "", "Output file (default: stdout)")

	path := parseWithPath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	usageFor(fs, "Filter capture file and write to new file", "filter [flags] <file.llog>")

	var opts commands.FilterOptions
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.Host, "host", "", "Filter by host")
	fs.StringVar(&opts.Contains, "contains", "", "Only data events containing this text")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (data, state, error)")

	path := parseWithPath(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, "linesock-log stats - Show statistics about the capture file\n\nUsage:\n  linesock-log stats <file.llog>\n\n")
	}

	path := parseWithPath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
