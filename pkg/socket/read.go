package socket

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/readiness"
	"github.com/linesock/linesock-go/pkg/transport"
)

// IdleWait is how long Read waits for more data after each line when no
// count or pattern is expected.
const IdleWait = 200 * time.Millisecond

type expectKind uint8

const (
	expectIdle expectKind = iota
	expectLines
	expectPattern
)

// Expect tells Read when a response is complete.
// The zero value is Idle.
type Expect struct {
	kind    expectKind
	lines   int
	pattern *regexp.Regexp
}

// Idle reads until no further data arrives within IdleWait.
var Idle = Expect{}

// Lines stops after n lines.
func Lines(n int) Expect {
	return Expect{kind: expectLines, lines: n}
}

// Until stops after the first line matching re.
func Until(re *regexp.Regexp) Expect {
	return Expect{kind: expectPattern, pattern: re}
}

// MustUntil is Until with a pattern compiled by regexp.MustCompile.
func MustUntil(pattern string) Expect {
	return Until(regexp.MustCompile(pattern))
}

// String describes the expectation for logs.
func (e Expect) String() string {
	switch e.kind {
	case expectLines:
		return fmt.Sprintf("%d lines", e.lines)
	case expectPattern:
		if e.pattern == nil {
			return "until <nil>"
		}
		return "until " + e.pattern.String()
	default:
		return "idle"
	}
}

func (e Expect) validate() error {
	switch e.kind {
	case expectLines:
		if e.lines <= 0 {
			return invalidArgument("read", "expected line count must be positive, got %d", e.lines)
		}
	case expectPattern:
		if e.pattern == nil {
			return invalidArgument("read", "expected pattern must not be nil")
		}
	}
	return nil
}

// done reports whether lines satisfies a count or pattern expectation.
func (e Expect) done(lines []string) bool {
	switch e.kind {
	case expectLines:
		return len(lines) >= e.lines
	case expectPattern:
		return e.pattern.MatchString(lines[len(lines)-1])
	default:
		return false
	}
}

// Read waits up to the socket timeout for data, then reads CRLF-terminated
// lines until expect is satisfied or the stream ends. The last two
// characters of each terminated line are stripped; a final line cut off by
// end-of-stream has no terminator and is returned unchanged.
//
// When nothing arrives within the timeout Read returns an empty slice and no
// error. On a transport failure it returns the lines read so far together
// with a ConnectivityError.
func (s *Socket) Read(expect Expect) ([]string, error) {
	h := s.h
	if h == nil {
		return nil, notConnected("read")
	}
	if err := expect.validate(); err != nil {
		return nil, err
	}

	res, err := s.waiter.Wait(h, s.timeout)
	if err != nil {
		return []string{}, s.readFailed(err)
	}
	if !res.Ready {
		return []string{}, nil
	}
	defer h.conn.SetReadDeadline(time.Time{})

	lines := []string{}
	for {
		if err := h.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return lines, s.readFailed(err)
		}
		raw, rerr := h.ReadString('\n')

		if raw != "" || res.HasChar {
			line := stripTerminator(raw)
			if res.HasChar {
				line = string(res.Char) + line
				res.HasChar = false
			}
			lines = append(lines, line)
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) || readiness.IsTimeout(rerr) {
				break
			}
			s.received(lines)
			return lines, s.readFailed(rerr)
		}
		if expect.done(lines) {
			break
		}
		if expect.kind == expectIdle {
			more, werr := s.waiter.Wait(h, IdleWait)
			if werr != nil || !more.Ready {
				break
			}
			res = more
		}
	}

	s.received(lines)
	return lines, nil
}

// stripTerminator removes the two-character terminator from a complete line.
// A partial line cut off by end-of-stream is returned as is.
func stripTerminator(raw string) string {
	if !strings.HasSuffix(raw, "\n") {
		return raw
	}
	if len(raw) < 2 {
		return ""
	}
	return raw[:len(raw)-2]
}

func (s *Socket) received(lines []string) {
	if len(lines) == 0 {
		return
	}
	text := strings.Join(lines, "\r\n")
	s.logger.Debug("received", "conn_id", s.connID, "lines", len(lines), "data", text)
	s.metrics.add(s.metrics.linesRead, len(lines))

	ev := s.event(log.DirectionIn, log.CategoryData)
	ev.Data = log.NewDataEvent(text, len(lines))
	s.protocol.Log(ev)
}

func (s *Socket) readFailed(err error) error {
	ce := &ConnectivityError{
		Op:    "read",
		Host:  s.host,
		Port:  s.port,
		Errno: transport.Errno(err),
		Msg:   fmt.Sprintf("unable to read data from server at %s on port %d: %s", s.host, s.port, transport.Cause(err)),
		Err:   err,
	}
	s.emitError(ce)
	return ce
}
