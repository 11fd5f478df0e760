package socket

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/transport"
)

// CryptoMethod constrains the TLS version negotiated by SetCrypto.
type CryptoMethod uint8

const (
	// CryptoAny negotiates the best version both sides support (TLS 1.2+).
	CryptoAny CryptoMethod = iota
	// CryptoTLS12 requires exactly TLS 1.2.
	CryptoTLS12
	// CryptoTLS13 requires exactly TLS 1.3.
	CryptoTLS13
)

// String returns the method name.
func (m CryptoMethod) String() string {
	switch m {
	case CryptoAny:
		return "any"
	case CryptoTLS12:
		return "tls1.2"
	case CryptoTLS13:
		return "tls1.3"
	default:
		return "unknown"
	}
}

// ParseCryptoMethod is the inverse of CryptoMethod.String.
func ParseCryptoMethod(s string) (CryptoMethod, error) {
	for _, m := range []CryptoMethod{CryptoAny, CryptoTLS12, CryptoTLS13} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown crypto method %q", s)
}

func (m CryptoMethod) apply(c *tls.Config) {
	switch m {
	case CryptoTLS12:
		c.MinVersion, c.MaxVersion = tls.VersionTLS12, tls.VersionTLS12
	case CryptoTLS13:
		c.MinVersion, c.MaxVersion = tls.VersionTLS13, tls.VersionTLS13
	}
}

// SetCrypto negotiates TLS in place on the open connection, as after an
// SMTP STARTTLS exchange. It returns the handshake outcome unmodified: no
// retry is attempted and a failed handshake leaves the connection in
// whatever state the peer left it.
//
// Disabling crypto is not supported by crypto/tls; enable false reports
// false without touching the connection.
func (s *Socket) SetCrypto(ctx context.Context, enable bool, method CryptoMethod) (bool, error) {
	h := s.h
	if h == nil {
		return false, notConnected("set crypto")
	}
	if !enable {
		return false, nil
	}
	if _, ok := h.conn.(*tls.Conn); ok {
		return true, nil
	}
	if n := h.Buffered(); n > 0 {
		return false, invalidArgument("set crypto", "%d unread bytes precede the handshake", n)
	}

	tlsConf, err := s.clientTLSConfig()
	if err != nil {
		return false, err
	}
	method.apply(tlsConf)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tlsConn, err := transport.Handshake(ctx, h.conn, tlsConf, nil)
	if err != nil {
		s.logger.Debug("crypto negotiation failed", "conn_id", s.connID, "method", method, "err", err)
		return false, err
	}

	h.conn = tlsConn
	h.Reset(tlsConn)

	version := transport.VersionName(tlsConn.ConnectionState().Version)
	s.logger.Debug("crypto enabled", "conn_id", s.connID, "version", version)
	s.emitState(log.StateEntityCrypto, log.StatePlain, log.StateSecure, version)
	return true, nil
}
