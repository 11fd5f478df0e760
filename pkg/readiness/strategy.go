package readiness

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"
)

// Polling defaults.
const (
	// DefaultPollAttempts is the number of single-byte reads before giving up.
	DefaultPollAttempts = 3

	// DefaultPollInterval is the sleep between polling attempts.
	DefaultPollInterval = 50 * time.Millisecond

	// minWait is the shortest deadline armed for a wait. A deadline that is
	// already in the past fails reads before the kernel buffer is checked.
	minWait = time.Millisecond
)

// Source is the buffered read side of a connection.
// Implemented by a bufio.Reader paired with its net.Conn.
type Source interface {
	// Buffered returns the number of bytes that can be read without I/O.
	Buffered() int

	// Peek returns the next n bytes without advancing the reader.
	Peek(n int) ([]byte, error)

	// ReadByte reads and consumes a single byte.
	ReadByte() (byte, error)

	// SetReadDeadline sets the deadline for future reads.
	SetReadDeadline(t time.Time) error
}

// Result is the outcome of a readiness wait.
type Result struct {
	// Ready is true if data (or end-of-stream) can be read without blocking.
	Ready bool

	// Char is a byte consumed while waiting; valid only if HasChar is set.
	Char byte

	// HasChar reports whether Char holds a pre-read byte the caller must
	// prepend to its next line.
	HasChar bool
}

// Strategy waits for a Source to become readable.
type Strategy interface {
	// Wait blocks until data is ready or timeout elapses. A timeout is not
	// an error: it yields a Result with Ready false.
	Wait(src Source, timeout time.Duration) (Result, error)

	// Mode identifies the strategy.
	Mode() Mode
}

// New returns the strategy for a mode. ModeAuto is classified without
// polling rules; use Resolve to supply them.
func New(mode Mode, logger *slog.Logger) Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	switch mode {
	case ModeQuiet:
		return &Quiet{logger: logger}
	case ModePoll:
		return NewPolling()
	case ModeStandard:
		return Standard{}
	default:
		return New(Detect(nil), logger)
	}
}

// Resolve maps a configured mode and polling rules to a strategy.
func Resolve(mode Mode, pollOn []Rule, logger *slog.Logger) Strategy {
	if mode == ModeAuto {
		mode = Detect(pollOn)
	}
	return New(mode, logger)
}

// Standard peeks one byte under a read deadline.
type Standard struct{}

// Mode returns ModeStandard.
func (Standard) Mode() Mode { return ModeStandard }

// Wait implements Strategy.
func (Standard) Wait(src Source, timeout time.Duration) (Result, error) {
	if src.Buffered() > 0 {
		return Result{Ready: true}, nil
	}
	if err := src.SetReadDeadline(time.Now().Add(max(timeout, minWait))); err != nil {
		return Result{}, err
	}
	_, err := src.Peek(1)
	switch {
	case err == nil:
		return Result{Ready: true}, nil
	case IsTimeout(err):
		return Result{}, nil
	case errors.Is(err, io.EOF):
		// End-of-stream is readable; the caller observes it on its next read.
		return Result{Ready: true}, nil
	default:
		return Result{}, err
	}
}

// Quiet is Standard with non-timeout errors discarded.
type Quiet struct {
	logger *slog.Logger
}

// Mode returns ModeQuiet.
func (*Quiet) Mode() Mode { return ModeQuiet }

// Wait implements Strategy.
func (q *Quiet) Wait(src Source, timeout time.Duration) (Result, error) {
	res, err := Standard{}.Wait(src, timeout)
	if err != nil {
		if q.logger != nil {
			q.logger.Debug("readiness diagnostic discarded", "err", err)
		}
		return Result{}, nil
	}
	return res, nil
}

// Polling reads single bytes instead of relying on the readiness primitive.
type Polling struct {
	attempts int
	interval time.Duration

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPolling returns a polling strategy with the default attempt budget.
func NewPolling() *Polling {
	return &Polling{
		attempts: DefaultPollAttempts,
		interval: DefaultPollInterval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Mode returns ModePoll.
func (*Polling) Mode() Mode { return ModePoll }

// Wait implements Strategy. NUL bytes are consumed and ignored.
func (p *Polling) Wait(src Source, timeout time.Duration) (Result, error) {
	start := p.now()
	for i := 0; ; {
		if i > 0 {
			p.sleep(p.interval)
		}
		remaining := max(timeout-p.now().Sub(start), minWait)
		// Read errors are treated as "no byte yet".
		_ = src.SetReadDeadline(p.now().Add(remaining))
		c, err := src.ReadByte()
		if err == nil && c != 0 {
			return Result{Ready: true, Char: c, HasChar: true}, nil
		}
		i++
		if i >= p.attempts || p.now().Sub(start) >= timeout {
			return Result{}, nil
		}
	}
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
