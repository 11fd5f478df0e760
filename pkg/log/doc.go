// Package log provides protocol capture for line sockets.
//
// This package defines the Logger interface and Event types for recording
// what crossed a socket: lines read, bytes written, connection state and
// errors. It is separate from operational logging (slog) - protocol capture
// gives a machine-readable trace of a conversation with a server.
//
// # Basic Usage
//
// Sockets accept a Logger through socket.WithProtocolLogger:
//
//	// For development: log to console via slog
//	socket.WithProtocolLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For later inspection: write to a binary file
//	fl, _ := log.NewFileLogger("/var/log/linesock/smtp.llog")
//	socket.WithProtocolLogger(fl)
//
//	// Both: use MultiLogger
//	socket.WithProtocolLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fl,
//	))
//
// # Event Types
//
//   - Data: text received or sent (DataEvent)
//   - State: connect, close and crypto changes (StateChangeEvent)
//   - Error: failed operations (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .llog extension.
// The linesock-log CLI tool provides viewing, statistics and export.
package log
