package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"
)

// DefaultConnectTimeout bounds a dial when neither the config nor the
// context carries a deadline.
const DefaultConnectTimeout = 60 * time.Second

// Dialer opens raw network connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// DialConfig configures a single Dial.
type DialConfig struct {
	Host string
	Port int

	// Secure wraps the stream in TLS right after the TCP connect.
	Secure bool

	// TLSConfig is required when Secure is set.
	TLSConfig *tls.Config

	// Timeout bounds the TCP connect plus the handshake.
	// Zero means DefaultConnectTimeout.
	Timeout time.Duration

	// Dialer defaults to a *net.Dialer.
	Dialer Dialer
}

// Address returns host:port.
func (c DialConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the address with a tcp:// or tls:// scheme.
func (c DialConfig) URL() string {
	scheme := "tcp"
	if c.Secure {
		scheme = "tls"
	}
	return scheme + "://" + c.Address()
}

// Dial opens the connection described by cfg. Diagnostics from the TLS
// handshake are recorded into capture, which may be nil.
func Dial(ctx context.Context, cfg DialConfig, capture *Capture) (net.Conn, error) {
	if cfg.Secure && cfg.TLSConfig == nil {
		return nil, errors.New("TLS config is required for secure connections")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	// An earlier caller deadline still wins.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	conn, err := dialer.DialContext(ctx, "tcp", cfg.Address())
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	if !cfg.Secure {
		return conn, nil
	}

	tlsConn, err := Handshake(ctx, conn, cfg.TLSConfig, capture)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// Handshake runs a client TLS handshake over an established stream.
// On failure the diagnostic is recorded into capture and conn is left open.
func Handshake(ctx context.Context, conn net.Conn, tlsConf *tls.Config, capture *Capture) (*tls.Conn, error) {
	tlsConn := tls.Client(conn, tlsConf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		if capture != nil {
			capture.Warn("%v", err)
		}
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}
	return tlsConn, nil
}

// Errno extracts the operating system error number from err, or 0.
func Errno(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

// Cause strips the net.OpError wrapping from err and returns the innermost
// message, e.g. "connection refused".
func Cause(err error) string {
	if err == nil {
		return ""
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
