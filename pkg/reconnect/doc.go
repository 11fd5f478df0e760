// Package reconnect retries Socket.Connect with exponential backoff.
//
// Sockets never retry on their own. A caller that wants to ride out a
// restarting server wraps the connect call:
//
//	r := reconnect.New(reconnect.DefaultPolicy(), reconnect.WithLogger(logger))
//	s, err := r.Connect(ctx, sock)
//
// # Schedule
//
// Delays grow from Initial by Multiplier up to Max, each randomised by
// Jitter:
//
//  1. Initial delay: 1 second
//  2. Exponential increase: 2s, 4s, 8s, 16s, 32s
//  3. Maximum delay: 60 seconds
//
// # Permanent failures
//
// Programmer errors and TLS failures are not retried: the same call would
// fail the same way. WithFallback offers a second connector (typically a
// plain socket) to switch to after a secure connection proved unavailable.
package reconnect
