package socket

import (
	"context"
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesock/linesock-go/internal/linetest"
	"github.com/linesock/linesock-go/pkg/log"
)

func startTLS(t *testing.T, s *Socket) {
	t.Helper()
	_, err := s.WriteString("STARTTLS\r\n")
	require.NoError(t, err)
	lines, err := s.Read(Lines(1))
	require.NoError(t, err)
	require.Equal(t, []string{"220 go ahead"}, lines)
}

func TestSetCryptoUpgradesInPlace(t *testing.T) {
	certs := linetest.GenerateCerts(t)
	srv := linetest.StartTLSUpgrade(t, certs.Server, "220 go ahead\r\n", linetest.Echo())
	rec := &recordingLogger{}
	s := dial(t, srv, WithTLSConfig(&tls.Config{RootCAs: certs.CAPool}), WithProtocolLogger(rec))

	startTLS(t, s)

	ok, err := s.SetCrypto(context.Background(), true, CryptoAny)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.WriteString("PING\r\n")
	require.NoError(t, err)
	lines, err := s.Read(Lines(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"PING"}, lines)

	// Already encrypted.
	ok, err = s.SetCrypto(context.Background(), true, CryptoAny)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Contains(t, rec.states(), log.StateSecure)
}

func TestSetCryptoMethodPinsVersion(t *testing.T) {
	certs := linetest.GenerateCerts(t)
	srv := linetest.StartTLSUpgrade(t, certs.Server, "220 go ahead\r\n", linetest.Echo())
	rec := &recordingLogger{}
	s := dial(t, srv, WithTLSConfig(&tls.Config{RootCAs: certs.CAPool}), WithProtocolLogger(rec))

	startTLS(t, s)

	ok, err := s.SetCrypto(context.Background(), true, CryptoTLS12)
	require.NoError(t, err)
	assert.True(t, ok)

	var reason string
	for _, ev := range rec.events {
		if ev.StateChange != nil && ev.StateChange.Entity == log.StateEntityCrypto {
			reason = ev.StateChange.Reason
			assert.True(t, ev.Secure)
		}
	}
	assert.Equal(t, "TLS 1.2", reason)
}

func TestSetCryptoHandshakeFailureIsReturnedRaw(t *testing.T) {
	srv := linetest.Start(t, linetest.Greet())
	s := dial(t, srv, WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	ok, err := s.SetCrypto(ctx, true, CryptoAny)
	assert.False(t, ok)
	require.Error(t, err)
	assert.False(t, IsProgrammerError(err))
	assert.False(t, IsConnectivityError(err))
	assert.True(t, s.IsConnected())
}

func TestSetCryptoTimeoutBoundsCallerDeadline(t *testing.T) {
	srv := linetest.Start(t, linetest.Greet())
	s := dial(t, srv, WithTimeout(200*time.Millisecond), WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	ok, err := s.SetCrypto(ctx, true, CryptoAny)
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSetCryptoDisable(t *testing.T) {
	srv := linetest.Start(t, linetest.Greet())
	s := dial(t, srv)

	ok, err := s.SetCrypto(context.Background(), false, CryptoAny)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCryptoMethodNames(t *testing.T) {
	for _, m := range []CryptoMethod{CryptoAny, CryptoTLS12, CryptoTLS13} {
		got, err := ParseCryptoMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseCryptoMethod("sslv3")
	assert.Error(t, err)
	assert.Equal(t, "unknown", CryptoMethod(9).String())
}

func TestCryptoMethodApply(t *testing.T) {
	c := &tls.Config{}
	CryptoTLS13.apply(c)
	assert.Equal(t, uint16(tls.VersionTLS13), c.MinVersion)
	assert.Equal(t, uint16(tls.VersionTLS13), c.MaxVersion)

	c = &tls.Config{MinVersion: tls.VersionTLS12}
	CryptoAny.apply(c)
	assert.Equal(t, uint16(tls.VersionTLS12), c.MinVersion)
	assert.Zero(t, c.MaxVersion)
}
