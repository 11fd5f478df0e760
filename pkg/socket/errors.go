package socket

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ProgrammerError and ConnectivityError.
var (
	// ErrInvalidArgument is wrapped when a parameter violates its contract.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotConnected is wrapped when an operation needs a live connection.
	ErrNotConnected = errors.New("socket is not connected")

	// ErrStrictlySecure is wrapped when TLS is requested but unavailable and
	// the configuration forbids a downgrade.
	ErrStrictlySecure = errors.New("cannot honour strictly secure connection requests")

	// ErrSecureUnavailable is wrapped when the secure layer failed during
	// connect.
	ErrSecureUnavailable = errors.New("secure connection unavailable")

	// ErrWriteFailed is wrapped when a write sent nothing.
	ErrWriteFailed = errors.New("write failed")
)

// ProgrammerError reports a violated precondition: a bad parameter or an
// operation on a socket that is not connected. Retrying cannot help.
type ProgrammerError struct {
	Op  string
	Msg string
	Err error
}

func (e *ProgrammerError) Error() string {
	return fmt.Sprintf("socket %s: %s", e.Op, e.Msg)
}

func (e *ProgrammerError) Unwrap() error { return e.Err }

// ConnectivityError reports an environment or transport failure. The caller
// decides whether to retry, for example without TLS.
type ConnectivityError struct {
	Op   string
	Host string
	Port int

	// Errno is the operating system error number, or 0.
	Errno int

	Msg string
	Err error
}

func (e *ConnectivityError) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("socket %s: %s (errno %d)", e.Op, e.Msg, e.Errno)
	}
	return fmt.Sprintf("socket %s: %s", e.Op, e.Msg)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsProgrammerError reports whether err is or wraps a ProgrammerError.
func IsProgrammerError(err error) bool {
	var pe *ProgrammerError
	return errors.As(err, &pe)
}

// IsConnectivityError reports whether err is or wraps a ConnectivityError.
func IsConnectivityError(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

func invalidArgument(op, format string, args ...any) error {
	return &ProgrammerError{Op: op, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidArgument}
}

func notConnected(op string) error {
	return &ProgrammerError{
		Op:  op,
		Msg: "no connection has been established; call Connect first",
		Err: ErrNotConnected,
	}
}
