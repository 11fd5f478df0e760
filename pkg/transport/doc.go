// Package transport opens the client side of line-oriented connections.
//
// A connection is a TCP stream, optionally wrapped in TLS right after the
// dial. TLS client settings come from a TLSConfig, which names PEM files the
// way daemon-style configs do and is turned into a *tls.Config by
// NewClientTLSConfig.
//
// # Diagnostics
//
// Dial records handshake-stage diagnostics into a Capture instead of only
// returning them. Callers inspect the capture to classify a failed connect:
// a diagnostic matching TLSFailureSignature means the secure layer could not
// be negotiated, anything else is an ordinary connectivity failure whose
// errno is extracted with Errno.
//
//	┌────────────────────────────────┐
//	│      CRLF-terminated lines     │
//	├────────────────────────────────┤
//	│      TLS 1.2+ (optional)       │
//	├────────────────────────────────┤
//	│             TCP                │
//	└────────────────────────────────┘
package transport
