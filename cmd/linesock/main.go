// Command linesock talks to line-oriented TCP and TLS servers.
//
// Usage:
//
//	linesock <command> [flags] [args]
//
// Commands:
//
//	send     Connect, send requests and print the replies
//	shell    Interactive session (connect, write, read, starttls, close)
//	probe    Show the environment and the readiness strategy in use
//
// Examples:
//
//	# Fetch a page over HTTP/1.0
//	linesock send -expect '/^$/' example.org:80 'GET / HTTP/1.0\r\nHost: example.org\r\n'
//
//	# Talk to an SMTP server, upgrading with STARTTLS
//	linesock send -greeting '/^220 /' -starttls STARTTLS -expect '/^250 /' mail.example.org:25 'EHLO me'
//
//	# POP3 over TLS with capture
//	linesock send -secure -greeting 1 -capture pop.llog mail.example.org:995 'QUIT'
//
//	# Interactive
//	linesock shell -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/linesock/linesock-go/cmd/linesock/commands"
)

const usage = `linesock - line-oriented TCP/TLS client

Usage:
  linesock <command> [flags] [args]

Commands:
  send     Connect, send requests and print the replies
  shell    Interactive session (connect, write, read, starttls, close)
  probe    Show the environment and the readiness strategy in use

Use "linesock <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "send":
		err = runSend(ctx, args)
	case "shell":
		err = runShell(ctx, args)
	case "probe":
		err = runProbe(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the standard logger, which also backs the
// default slog handler.
func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}

// connectFlags registers the flags shared by send and shell.
func connectFlags(fs *flag.FlagSet, o *commands.ConnectOptions, logLevel *string) {
	fs.StringVar(&o.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.BoolVar(&o.Secure, "secure", false, "Connect with TLS")
	fs.DurationVar(&o.Timeout, "timeout", 0, "Connect and read timeout (default from config, 60s)")
	fs.StringVar(&o.CAFile, "ca-file", "", "PEM file with trusted CA certificates")
	fs.BoolVar(&o.Insecure, "insecure", false, "Skip TLS certificate verification")
	fs.BoolVar(&o.Strict, "strict", false, "Fail instead of downgrading when TLS is unavailable")
	fs.StringVar(&o.Capture, "capture", "", "Write a protocol capture (CBOR) to this file")
	fs.UintVar(&o.Retries, "retries", 1, "Connect attempts with exponential backoff")
	fs.BoolVar(&o.Fallback, "fallback", false, "Retry without TLS when a secure connection is unavailable")
	fs.StringVar(logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

func runSend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `linesock send - Connect, send requests and print the replies

Usage:
  linesock send [flags] <host:port> [request...]

Expectations are idle, a line count, or /regexp/.

Flags:
`)
		fs.PrintDefaults()
	}

	var opts commands.SendOptions
	var logLevel string
	connectFlags(fs, &opts.Connect, &logLevel)
	fs.StringVar(&opts.Greeting, "greeting", "", "Read a greeting before the first request")
	fs.StringVar(&opts.Expect, "expect", "idle", "Read expectation after each request")
	fs.StringVar(&opts.StartTLS, "starttls", "", "Command that asks the server to start TLS")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("address required")
	}
	setupLogging(logLevel)

	opts.Requests = fs.Args()[1:]
	return commands.RunSend(ctx, fs.Arg(0), opts, os.Stdout, slog.Default())
}

func runShell(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("shell", flag.ExitOnError)
	var opts commands.ConnectOptions
	var logLevel string
	connectFlags(fs, &opts, &logLevel)

	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(logLevel)

	sh, err := commands.NewShell(opts, slog.Default())
	if err != nil {
		return err
	}
	// Keep log output from interfering with the prompt.
	log.SetOutput(sh.Stdout())

	if fs.NArg() > 0 {
		sh.Exec(ctx, "connect "+fs.Arg(0))
	}
	sh.Run(ctx)
	return nil
}

func runProbe(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	configFile := fs.String("config", "", "Configuration file path (YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := commands.ConnectOptions{ConfigFile: *configFile}.LoadConfig()
	if err != nil {
		return err
	}
	commands.RunProbe(cfg, os.Stdout)
	return nil
}
