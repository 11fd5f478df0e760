// Package linetest provides loopback line servers for tests.
package linetest

import (
	"bufio"
	"crypto/tls"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
)

// Handler serves a single accepted connection.
type Handler func(conn net.Conn)

// Server is a loopback TCP server that runs a Handler per connection.
type Server struct {
	listener net.Listener
	handler  Handler
	wg       conc.WaitGroup

	mu    sync.Mutex
	conns []net.Conn
}

// Start listens on an ephemeral loopback port and serves plain TCP.
func Start(t *testing.T, handler Handler) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	return serve(t, ln, handler)
}

// StartTLS listens on an ephemeral loopback port and serves TLS with cert.
func StartTLS(t *testing.T, cert tls.Certificate, handler Handler) *Server {
	t.Helper()

	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	return serve(t, ln, handler)
}

func serve(t *testing.T, ln net.Listener, handler Handler) *Server {
	s := &Server{listener: ln, handler: handler}
	s.wg.Go(s.acceptLoop)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Go(func() {
			defer conn.Close()
			s.handler(conn)
		})
	}
}

// Addr returns the listen address as host:port.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Host returns the listen host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Addr())
	return host
}

// Port returns the listen port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Addr())
	n, _ := strconv.Atoi(port)
	return n
}

// Close stops accepting, closes open connections and waits for handlers.
func (s *Server) Close() {
	s.listener.Close()
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.wg.Wait()
}

// ClosedPort returns a loopback port with nothing listening on it.
func ClosedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

// Greet writes lines on accept and then drains input until the peer leaves.
func Greet(lines ...string) Handler {
	return func(conn net.Conn) {
		for _, l := range lines {
			if _, err := conn.Write([]byte(l)); err != nil {
				return
			}
		}
		drain(conn)
	}
}

// Echo writes every received line back unchanged.
func Echo() Handler {
	return func(conn net.Conn) {
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				if _, werr := conn.Write([]byte(line)); werr != nil {
					return
				}
			}
			if err != nil {
				return
			}
		}
	}
}

// Respond answers each received line with reply(line). A nil reply from the
// function writes nothing.
func Respond(reply func(line string) []string) Handler {
	return func(conn net.Conn) {
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			for _, out := range reply(line) {
				if _, err := conn.Write([]byte(out)); err != nil {
					return
				}
			}
		}
	}
}

// Trickle writes lines one at a time with gap between them.
func Trickle(gap time.Duration, lines ...string) Handler {
	return func(conn net.Conn) {
		for i, l := range lines {
			if i > 0 {
				time.Sleep(gap)
			}
			if _, err := conn.Write([]byte(l)); err != nil {
				return
			}
		}
		drain(conn)
	}
}

// Hangup writes lines and closes the connection immediately.
func Hangup(lines ...string) Handler {
	return func(conn net.Conn) {
		for _, l := range lines {
			if _, err := conn.Write([]byte(l)); err != nil {
				return
			}
		}
	}
}

// Record sends everything received on the connection to out, one chunk per
// read, and closes out when the peer leaves.
func Record(out chan<- []byte) Handler {
	return func(conn net.Conn) {
		defer close(out)
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				out <- chunk
			}
			if err != nil {
				return
			}
		}
	}
}

// StartTLSUpgrade serves plain text until the client sends "STARTTLS\r\n",
// answers with ready, then switches the connection to TLS and hands it to
// handler.
func StartTLSUpgrade(t *testing.T, cert tls.Certificate, ready string, handler Handler) *Server {
	t.Helper()

	return Start(t, func(conn net.Conn) {
		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if line == "STARTTLS\r\n" {
				break
			}
		}
		if _, err := conn.Write([]byte(ready)); err != nil {
			return
		}
		tlsConn := tls.Server(conn, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		if err := tlsConn.Handshake(); err != nil {
			return
		}
		defer tlsConn.Close()
		handler(tlsConn)
	})
}

func drain(conn net.Conn) {
	buf := make([]byte, 512)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}
