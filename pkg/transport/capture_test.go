package transport

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptureMatch(t *testing.T) {
	var c Capture
	c.Warn("stream_socket_client(): SSL operation failed with code %d", 1)
	c.Warn("connection refused")
	c.Warn("tls: first record does not look like a TLS handshake")

	assert.Len(t, c.Warnings(), 3)
	assert.Equal(t, []string{
		"stream_socket_client(): SSL operation failed with code 1",
		"tls: first record does not look like a TLS handshake",
	}, c.Match(TLSFailureSignature))
	assert.Equal(t, []string{"connection refused"}, c.Match(regexp.MustCompile("refused")))

	c.Reset()
	assert.Empty(t, c.Warnings())
}

func TestTLSFailureSignature(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"SSL: Handshake timed out", true},
		{"ssl3_get_record:wrong version number", true},
		{"remote error: tls: handshake failure", true},
		{"x509: certificate signed by unknown authority", false},
		{"dial tcp 127.0.0.1:1: connect: connection refused", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, TLSFailureSignature.MatchString(tt.msg))
		})
	}
}

func TestCaptureWarningsIsCopy(t *testing.T) {
	var c Capture
	c.Warn("one")
	w := c.Warnings()
	w[0] = "changed"
	assert.Equal(t, []string{"one"}, c.Warnings())
}
