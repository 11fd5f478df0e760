// Package commands implements the linesock CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/linesock/linesock-go/pkg/config"
	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/reconnect"
	"github.com/linesock/linesock-go/pkg/socket"
)

// ConnectOptions holds the flags shared by commands that open a socket.
type ConnectOptions struct {
	ConfigFile string
	Secure     bool
	Timeout    time.Duration
	CAFile     string
	Insecure   bool
	Strict     bool

	// Capture is a file path for protocol capture, empty to disable.
	Capture string

	// Retries is the number of connect attempts; 0 or 1 disables retrying.
	Retries uint

	// Fallback retries without TLS when a secure connection is unavailable.
	Fallback bool
}

// LoadConfig loads the configuration file (or defaults) and applies the
// command-line overrides.
func (o ConnectOptions) LoadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		loaded, err := config.Load(o.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.CAFile != "" {
		cfg.TLS.CAFile = o.CAFile
	}
	if o.Insecure {
		cfg.TLS.InsecureSkipVerify = true
	}
	if o.Strict {
		cfg.SetStrictlySecure(true)
	}
	return cfg, nil
}

// Session is an open socket plus the resources opened with it.
type Session struct {
	*socket.Socket
	capture *log.FileLogger
}

// Close closes the socket and the capture file.
func (s *Session) Close() error {
	err := s.Socket.Close()
	if s.capture != nil {
		if cerr := s.capture.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open connects to addr ("host:port") according to opts.
func Open(ctx context.Context, addr string, opts ConnectOptions, logger *slog.Logger) (*Session, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, err
	}
	host, port, err := splitAddr(addr)
	if err != nil {
		return nil, err
	}

	sess := &Session{}
	sockOpts := []socket.Option{
		socket.WithConfig(cfg),
		socket.WithTimeout(opts.Timeout),
		socket.WithLogger(logger),
	}
	if opts.Capture != "" {
		sess.capture, err = log.NewFileLogger(opts.Capture)
		if err != nil {
			return nil, err
		}
		sockOpts = append(sockOpts, socket.WithProtocolLogger(sess.capture))
	}

	fail := func(err error) (*Session, error) {
		if sess.capture != nil {
			sess.capture.Close()
		}
		return nil, err
	}

	s, err := socket.New(host, port, append(sockOpts, socket.WithSecure(opts.Secure))...)
	if err != nil {
		return fail(err)
	}

	if opts.Retries <= 1 && !opts.Fallback {
		if _, err := s.Connect(ctx); err != nil {
			return fail(err)
		}
		sess.Socket = s
		return sess, nil
	}

	policy := reconnect.DefaultPolicy()
	policy.MaxAttempts = max(opts.Retries, 1)
	if opts.Fallback {
		// The switch to plain counts as an attempt.
		policy.MaxAttempts++
	}
	r := reconnect.New(policy,
		reconnect.WithLogger(logger),
		reconnect.WithFallback(func(error) reconnect.Connector {
			if !opts.Fallback {
				return nil
			}
			logger.Warn("secure connection unavailable, retrying without TLS", "host", host, "port", port)
			plain, err := socket.New(host, port, sockOpts...)
			if err != nil {
				return nil
			}
			return plain
		}),
	)
	connected, err := r.Connect(ctx, s)
	if err != nil {
		return fail(err)
	}
	sess.Socket = connected
	return sess, nil
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("address %q: port must be numeric", addr)
	}
	return host, port, nil
}
