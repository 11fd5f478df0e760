package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/chzyer/readline"

	"github.com/linesock/linesock-go/pkg/socket"
)

// Shell is an interactive session driving one socket at a time.
type Shell struct {
	out    io.Writer
	opts   ConnectOptions
	logger *slog.Logger
	sess   *Session
	rl     *readline.Instance
}

// NewShell creates a shell reading commands from the terminal.
func NewShell(opts ConnectOptions, logger *slog.Logger) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "linesock> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("connect"),
			readline.PcItem("write"),
			readline.PcItem("read", readline.PcItem("idle")),
			readline.PcItem("starttls", readline.PcItem("any"), readline.PcItem("tls1.2"), readline.PcItem("tls1.3")),
			readline.PcItem("close"),
			readline.PcItem("status"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	sh := newShell(rl.Stdout(), opts, logger)
	sh.rl = rl
	return sh, nil
}

func newShell(out io.Writer, opts ConnectOptions, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{out: out, opts: opts, logger: logger}
}

// Stdout returns a writer that coordinates with the prompt.
func (sh *Shell) Stdout() io.Writer {
	return sh.out
}

// Run reads commands until quit, EOF or ctx is done.
func (sh *Shell) Run(ctx context.Context) {
	defer sh.rl.Close()
	defer sh.closeSession()

	sh.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := sh.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(sh.out, "Exiting...")
			return
		}
		if sh.Exec(ctx, line) {
			return
		}
	}
}

// Exec runs one command line. It reports whether the shell should exit.
func (sh *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		sh.printHelp()
	case "connect", "c":
		sh.cmdConnect(ctx, rest)
	case "write", "w":
		sh.cmdWrite(rest)
	case "read", "r":
		sh.cmdRead(rest)
	case "starttls":
		sh.cmdStartTLS(ctx, rest)
	case "close":
		sh.cmdClose()
	case "status":
		sh.cmdStatus()
	case "quit", "exit", "q":
		fmt.Fprintln(sh.out, "Exiting...")
		sh.closeSession()
		return true
	default:
		fmt.Fprintf(sh.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (sh *Shell) printHelp() {
	fmt.Fprintln(sh.out, `
linesock Shell Commands:
  connect <host:port> [tls]  - Open a connection (tls requests a secure one)
  write <text>               - Send text; CRLF is appended, \r \n \t are unescaped
  read [idle|N|/regexp/]     - Read lines (default idle)
  starttls [any|tls1.2|tls1.3] - Upgrade the open connection to TLS
  close                      - Close the connection
  status                     - Show connection status
  help                       - Show this help
  quit                       - Exit`)
}

func (sh *Shell) connected() bool {
	if sh.sess == nil || !sh.sess.IsConnected() {
		fmt.Fprintln(sh.out, "Not connected (use 'connect <host:port>')")
		return false
	}
	return true
}

func (sh *Shell) cmdConnect(ctx context.Context, args string) {
	fields := strings.Fields(args)
	if len(fields) < 1 {
		fmt.Fprintln(sh.out, "Usage: connect <host:port> [tls]")
		return
	}
	sh.closeSession()

	opts := sh.opts
	if len(fields) > 1 && strings.EqualFold(fields[1], "tls") {
		opts.Secure = true
	}

	sess, err := Open(ctx, fields[0], opts, sh.logger)
	if err != nil {
		fmt.Fprintf(sh.out, "Connect failed: %v\n", err)
		return
	}
	sh.sess = sess
	fmt.Fprintf(sh.out, "Connected to %s (conn %s)\n", sess.RemoteAddr(), shortID(sess.ConnectionID()))
}

func (sh *Shell) cmdWrite(args string) {
	if !sh.connected() {
		return
	}
	if args == "" {
		fmt.Fprintln(sh.out, "Usage: write <text>")
		return
	}
	n, err := sh.sess.WriteString(withCRLF(Unescape(args)))
	if err != nil {
		fmt.Fprintf(sh.out, "Write failed: %v\n", err)
		return
	}
	fmt.Fprintf(sh.out, "Sent %d bytes\n", n)
}

func (sh *Shell) cmdRead(args string) {
	if !sh.connected() {
		return
	}
	expect, err := ParseExpect(args)
	if err != nil {
		fmt.Fprintf(sh.out, "%v\n", err)
		return
	}
	if err := readAndPrint(sh.sess.Socket, expect, sh.out); err != nil {
		fmt.Fprintf(sh.out, "Read failed: %v\n", err)
	}
}

func (sh *Shell) cmdStartTLS(ctx context.Context, args string) {
	if !sh.connected() {
		return
	}
	method := socket.CryptoAny
	if args != "" {
		m, err := socket.ParseCryptoMethod(args)
		if err != nil {
			fmt.Fprintf(sh.out, "%v\n", err)
			return
		}
		method = m
	}
	ok, err := sh.sess.SetCrypto(ctx, true, method)
	if err != nil {
		fmt.Fprintf(sh.out, "STARTTLS failed: %v\n", err)
		return
	}
	if ok {
		fmt.Fprintln(sh.out, "TLS enabled")
	}
}

func (sh *Shell) cmdClose() {
	if sh.sess == nil {
		fmt.Fprintln(sh.out, "Not connected")
		return
	}
	sh.closeSession()
	fmt.Fprintln(sh.out, "Closed")
}

func (sh *Shell) cmdStatus() {
	if sh.sess == nil || !sh.sess.IsConnected() {
		fmt.Fprintln(sh.out, "Status: disconnected")
		return
	}
	secure, _ := sh.sess.Secure()
	timeout, _ := sh.sess.Timeout()
	fmt.Fprintln(sh.out, "Status: connected")
	fmt.Fprintf(sh.out, "  Endpoint: %s\n", sh.sess.String())
	fmt.Fprintf(sh.out, "  Remote:   %s\n", sh.sess.RemoteAddr())
	fmt.Fprintf(sh.out, "  Conn ID:  %s\n", sh.sess.ConnectionID())
	fmt.Fprintf(sh.out, "  Secure:   %t\n", secure)
	fmt.Fprintf(sh.out, "  Timeout:  %s\n", timeout)
}

func (sh *Shell) closeSession() {
	if sh.sess == nil {
		return
	}
	if err := sh.sess.Close(); err != nil {
		sh.logger.Debug("close failed", "err", err)
	}
	sh.sess = nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
