package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/linesock/linesock-go/pkg/socket"
)

// SendOptions configures a one-shot exchange.
type SendOptions struct {
	Connect ConnectOptions

	// Greeting is read before the first request; empty skips it.
	Greeting string

	// Requests are sent in order, each followed by a read of Expect.
	// A request without a trailing newline gets CRLF appended.
	Requests []string

	// Expect is the read expectation after each request.
	Expect string

	// StartTLS upgrades the connection after the greeting by sending
	// StartTLS and reading one reply line.
	StartTLS string
}

// RunSend connects to addr, performs the exchange and prints every line
// received. Lines are prefixed with "< " and requests with "> ".
func RunSend(ctx context.Context, addr string, opts SendOptions, w io.Writer, logger *slog.Logger) error {
	expect, err := ParseExpect(opts.Expect)
	if err != nil {
		return err
	}
	var greeting socket.Expect
	if opts.Greeting != "" {
		if greeting, err = ParseExpect(opts.Greeting); err != nil {
			return err
		}
	}

	sess, err := Open(ctx, addr, opts.Connect, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	if opts.Greeting != "" {
		if err := readAndPrint(sess.Socket, greeting, w); err != nil {
			return err
		}
	}

	if opts.StartTLS != "" {
		if err := send(sess.Socket, opts.StartTLS, w); err != nil {
			return err
		}
		if err := readAndPrint(sess.Socket, socket.Lines(1), w); err != nil {
			return err
		}
		if _, err := sess.SetCrypto(ctx, true, socket.CryptoAny); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
		fmt.Fprintln(w, "* TLS enabled")
	}

	for _, req := range opts.Requests {
		if err := send(sess.Socket, req, w); err != nil {
			return err
		}
		if err := readAndPrint(sess.Socket, expect, w); err != nil {
			return err
		}
	}
	return nil
}

func send(s *socket.Socket, req string, w io.Writer) error {
	data := withCRLF(Unescape(req))
	if _, err := s.WriteString(data); err != nil {
		return err
	}
	fmt.Fprintf(w, "> %s\n", trimEOL(data))
	return nil
}

func readAndPrint(s *socket.Socket, expect socket.Expect, w io.Writer) error {
	lines, err := s.Read(expect)
	for _, line := range lines {
		fmt.Fprintf(w, "< %s\n", line)
	}
	return err
}

func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
