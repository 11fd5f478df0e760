// Package socket provides a blocking, timeout-aware, line-oriented TCP client
// with optional TLS, meant to sit beneath line protocols such as SMTP or POP3.
//
// A Socket is built unconnected, connected explicitly, then driven with
// Write and Read:
//
//	s, err := socket.New("mail.example.org", 25, socket.WithTimeout(30*time.Second))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	if _, err := s.Connect(ctx); err != nil {
//	    return err
//	}
//	greeting, err := s.Read(socket.MustUntil(`^220 `))
//	...
//	s.WriteString("EHLO client.example.org\r\n")
//	caps, err := s.Read(socket.MustUntil(`^250 `))
//
// # Reading
//
// Read first waits up to the timeout for the connection to become readable,
// using the readiness strategy chosen from the configuration (see package
// readiness). If nothing arrives it returns no lines and no error. Otherwise
// it reads CRLF-terminated lines until the Expect is met: a line count, a
// pattern matching the last line, or, for Idle, a short quiet period.
//
// # Errors
//
// Misuse (bad parameters, operations before Connect) yields a
// ProgrammerError. Environment and transport failures yield a
// ConnectivityError carrying host, port and the OS error number where one
// exists. The package never retries; see package reconnect for a
// caller-side policy.
//
// # TLS
//
// WithSecure requests TLS from the first byte. When the configuration
// reports TLS as unavailable the request is dropped, unless the
// configuration is strictly secure, in which case New fails.
// SetCrypto upgrades an open plain connection in place.
package socket
