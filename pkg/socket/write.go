package socket

import (
	"fmt"
	"time"

	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/transport"
)

// Write sends all of data and returns len(data). A write attempt that sends
// nothing or fails aborts with a ConnectivityError; partial writes continue
// with the unsent remainder.
func (s *Socket) Write(data []byte) (int, error) {
	h := s.h
	if h == nil {
		return 0, notConnected("write")
	}
	if len(data) == 0 {
		return 0, invalidArgument("write", "parameter data must be non-empty")
	}

	total := 0
	for total < len(data) {
		if err := h.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
			return total, s.writeFailed(err)
		}
		n, err := h.conn.Write(data[total:])
		if n > 0 {
			total += n
		}
		if err != nil || n <= 0 {
			s.metrics.add(s.metrics.bytesWritten, total)
			return total, s.writeFailed(err)
		}
	}

	s.metrics.add(s.metrics.bytesWritten, total)
	ev := s.event(log.DirectionOut, log.CategoryData)
	ev.Data = log.NewDataEvent(string(data), 0)
	s.protocol.Log(ev)
	return total, nil
}

// WriteString is Write for text. The count is in bytes, not characters.
func (s *Socket) WriteString(data string) (int, error) {
	return s.Write([]byte(data))
}

func (s *Socket) writeFailed(err error) error {
	cause := ErrWriteFailed
	if err != nil {
		cause = fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	ce := &ConnectivityError{
		Op:    "write",
		Host:  s.host,
		Port:  s.port,
		Errno: transport.Errno(err),
		Msg:   fmt.Sprintf("unable to write data to server at %s on port %d", s.host, s.port),
		Err:   cause,
	}
	s.emitError(ce)
	return ce
}
