package socket

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/linesock/linesock-go/pkg/config"
	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/readiness"
	"github.com/linesock/linesock-go/pkg/transport"
)

// Socket is a blocking, line-oriented TCP client with optional TLS.
//
// A Socket owns at most one connection at a time. It is not safe for
// concurrent use.
type Socket struct {
	host    string
	port    int
	secure  bool
	timeout time.Duration

	tlsConfig *tls.Config
	tlsFiles  transport.TLSConfig
	dialer    transport.Dialer
	waiter    readiness.Strategy

	logger   *slog.Logger
	protocol log.Logger
	metrics  *metrics

	// h is nil while not connected.
	h       *handle
	cleanup runtime.Cleanup
	connID  string
}

// handle is the owned connection and its read buffer.
// It implements readiness.Source.
type handle struct {
	*bufio.Reader
	conn net.Conn
}

func newHandle(conn net.Conn) *handle {
	return &handle{Reader: bufio.NewReader(conn), conn: conn}
}

func (h *handle) SetReadDeadline(t time.Time) error {
	return h.conn.SetReadDeadline(t)
}

// New validates the parameters and returns an unconnected Socket.
// No network activity happens until Connect.
func New(host string, port int, opts ...Option) (*Socket, error) {
	if host == "" {
		return nil, invalidArgument("new", "parameter host must be a non-empty string")
	}
	if port < 1 || port > 65535 {
		return nil, invalidArgument("new", "parameter port must be between 1 and 65535, got %d", port)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout < 0 {
		return nil, invalidArgument("new", "parameter timeout must not be negative, got %s", o.timeout)
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	secure := o.secure
	if secure && !cfg.TLSSupported() {
		if cfg.StrictlySecure {
			return nil, &ConnectivityError{
				Op:   "new",
				Host: host,
				Port: port,
				Msg:  "a secure connection was requested but TLS is not available in this environment",
				Err:  ErrStrictlySecure,
			}
		}
		logger.Debug("TLS unavailable, downgrading to a plain connection", "host", host, "port", port)
		secure = false
	}

	timeout := o.timeout
	if timeout == 0 {
		timeout = cfg.Timeout()
	}

	waiter := o.readiness
	if waiter == nil {
		waiter = readiness.Resolve(cfg.ReadinessMode(), cfg.Readiness.PollOn, logger)
	}

	protocol := o.protocolLog
	if protocol == nil {
		protocol = log.NoopLogger{}
	}

	return &Socket{
		host:      host,
		port:      port,
		secure:    secure,
		timeout:   timeout,
		tlsConfig: o.tlsConfig,
		tlsFiles:  cfg.TLS,
		dialer:    o.dialer,
		waiter:    waiter,
		logger:    logger,
		protocol:  protocol,
		metrics:   newMetrics(o.meterProvider, host, port, secure),
	}, nil
}

// NewFromAddr is New with a "host:port" address.
func NewFromAddr(addr string, opts ...Option) (*Socket, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, invalidArgument("new", "address %q is not host:port", addr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, invalidArgument("new", "parameter port must be numeric, got %q", portStr)
	}
	return New(host, port, opts...)
}

// Connect opens the connection. It returns s unchanged if already
// connected, so calls can be chained:
//
//	s, err := sock.Connect(ctx)
func (s *Socket) Connect(ctx context.Context) (*Socket, error) {
	if s.h != nil {
		return s, nil
	}

	cfg := transport.DialConfig{
		Host:    s.host,
		Port:    s.port,
		Secure:  s.secure,
		Timeout: s.timeout,
		Dialer:  s.dialer,
	}
	if s.secure {
		tlsConf, err := s.clientTLSConfig()
		if err != nil {
			return nil, s.connectFailed(&ConnectivityError{
				Op:   "connect",
				Host: s.host,
				Port: s.port,
				Msg:  fmt.Sprintf("unable to prepare TLS for %s: %v", cfg.URL(), err),
				Err:  err,
			})
		}
		cfg.TLSConfig = tlsConf
	}

	var capture transport.Capture
	conn, err := transport.Dial(ctx, cfg, &capture)
	if err != nil {
		if diags := capture.Match(transport.TLSFailureSignature); len(diags) > 0 {
			return nil, s.connectFailed(&ConnectivityError{
				Op:   "connect",
				Host: s.host,
				Port: s.port,
				Msg: fmt.Sprintf("a secure connection to %s on port %d was requested, but was not available. "+
					"Try a non-secure connection instead", s.host, s.port),
				Err: fmt.Errorf("%w: %s", ErrSecureUnavailable, strings.Join(diags, "; ")),
			})
		}
		return nil, s.connectFailed(&ConnectivityError{
			Op:    "connect",
			Host:  s.host,
			Port:  s.port,
			Errno: transport.Errno(err),
			Msg:   fmt.Sprintf("unable to connect to %s: %s", cfg.URL(), transport.Cause(err)),
			Err:   err,
		})
	}

	h := newHandle(conn)
	s.h = h
	s.connID = uuid.NewString()
	s.cleanup = runtime.AddCleanup(s, closeLeaked(s.logger, cfg.URL()), h)

	s.metrics.add(s.metrics.connects, 1)
	s.logger.Debug("connected", "addr", cfg.URL(), "conn_id", s.connID)
	s.emitState(log.StateEntityConnection, log.StateClosed, log.StateConnected, "")
	return s, nil
}

// closeLeaked returns the cleanup run when a connected Socket becomes
// unreachable without Close.
func closeLeaked(logger *slog.Logger, addr string) func(*handle) {
	return func(h *handle) {
		if err := h.conn.Close(); err == nil {
			logger.Warn("socket was not closed before release", "addr", addr)
		}
	}
}

func (s *Socket) connectFailed(err *ConnectivityError) error {
	s.metrics.add(s.metrics.connectErrors, 1)
	s.emitError(err)
	return err
}

// Close releases the connection. It is a no-op when not connected and safe
// to call any number of times.
func (s *Socket) Close() error {
	if s.h == nil {
		return nil
	}
	h := s.h
	s.h = nil
	s.cleanup.Stop()

	err := h.conn.Close()
	s.emitState(log.StateEntityConnection, log.StateConnected, log.StateClosed, "")
	s.logger.Debug("closed", "host", s.host, "port", s.port, "conn_id", s.connID)
	s.connID = ""
	return err
}

// IsConnected reports whether a connection is open.
func (s *Socket) IsConnected() bool {
	return s.h != nil
}

// ConnectionID returns the identifier of the current connection, or "".
func (s *Socket) ConnectionID() string {
	return s.connID
}

// RemoteAddr returns the peer address, or nil when not connected.
func (s *Socket) RemoteAddr() net.Addr {
	if s.h == nil {
		return nil
	}
	return s.h.conn.RemoteAddr()
}

// Host returns the configured host.
func (s *Socket) Host() (string, error) {
	if s.h == nil {
		return "", notConnected("host")
	}
	return s.host, nil
}

// Port returns the configured port.
func (s *Socket) Port() (int, error) {
	if s.h == nil {
		return 0, notConnected("port")
	}
	return s.port, nil
}

// Secure reports whether the connection was opened with TLS.
func (s *Socket) Secure() (bool, error) {
	if s.h == nil {
		return false, notConnected("secure")
	}
	return s.secure, nil
}

// Timeout returns the connect and read timeout.
func (s *Socket) Timeout() (time.Duration, error) {
	if s.h == nil {
		return 0, notConnected("timeout")
	}
	return s.timeout, nil
}

// String returns the address in tcp://host:port or tls://host:port form.
func (s *Socket) String() string {
	return transport.DialConfig{Host: s.host, Port: s.port, Secure: s.secure}.URL()
}

func (s *Socket) clientTLSConfig() (*tls.Config, error) {
	if s.tlsConfig == nil {
		return transport.NewClientTLSConfig(&s.tlsFiles, s.host)
	}
	c := s.tlsConfig.Clone()
	if c.ServerName == "" && !c.InsecureSkipVerify {
		c.ServerName = s.host
	}
	return c, nil
}

func (s *Socket) event(dir log.Direction, cat log.Category) log.Event {
	ev := log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.connID,
		Direction:    dir,
		Category:     cat,
		Host:         s.host,
		Port:         s.port,
		Secure:       s.secure,
	}
	if s.h != nil {
		ev.RemoteAddr = s.h.conn.RemoteAddr().String()
		_, ev.Secure = s.h.conn.(*tls.Conn)
	}
	return ev
}

func (s *Socket) emitState(entity log.StateEntity, from, to, reason string) {
	ev := s.event(log.DirectionOut, log.CategoryState)
	ev.StateChange = &log.StateChangeEvent{Entity: entity, OldState: from, NewState: to, Reason: reason}
	s.protocol.Log(ev)
}

func (s *Socket) emitError(err error) {
	ev := s.event(log.DirectionIn, log.CategoryError)
	data := &log.ErrorEventData{Message: err.Error()}
	switch e := err.(type) {
	case *ConnectivityError:
		data.Kind = "connectivity"
		data.Context = e.Op
		if e.Errno != 0 {
			code := e.Errno
			data.Code = &code
		}
	case *ProgrammerError:
		data.Kind = "programmer"
		data.Context = e.Op
	}
	ev.Error = data
	s.protocol.Log(ev)
}
