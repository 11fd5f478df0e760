package commands

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesock/linesock-go/internal/linetest"
)

func itoa(n int) string { return strconv.Itoa(n) }

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linesock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_timeout: 5s\ntls:\n  ca_file: /etc/ca.pem\n"), 0o600))

	cfg, err := ConnectOptions{ConfigFile: path}.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "/etc/ca.pem", cfg.TLS.CAFile)
	assert.False(t, cfg.StrictlySecure)

	cfg, err = ConnectOptions{ConfigFile: path, CAFile: "/tmp/other.pem", Insecure: true, Strict: true}.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.pem", cfg.TLS.CAFile)
	assert.True(t, cfg.TLS.InsecureSkipVerify)
	assert.True(t, cfg.StrictlySecure)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := ConnectOptions{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}.LoadConfig()
	assert.Error(t, err)
}

func TestOpenWithRetries(t *testing.T) {
	srv := linetest.Start(t, linetest.Greet())

	sess, err := Open(context.Background(), srv.Addr(), ConnectOptions{Timeout: testTimeout, Retries: 3}, quietLogger())
	require.NoError(t, err)
	assert.True(t, sess.IsConnected())
	require.NoError(t, sess.Close())
	assert.False(t, sess.IsConnected())
}

func TestOpenBadCapturePath(t *testing.T) {
	srv := linetest.Start(t, linetest.Greet())

	_, err := Open(context.Background(), srv.Addr(), ConnectOptions{
		Timeout: testTimeout,
		Capture: filepath.Join(t.TempDir(), "missing", "dir", "x.llog"),
	}, quietLogger())
	assert.ErrorContains(t, err, "open protocol log")
}

func TestSplitAddr(t *testing.T) {
	host, port, err := splitAddr("mail.example.org:25")
	require.NoError(t, err)
	assert.Equal(t, "mail.example.org", host)
	assert.Equal(t, 25, port)

	_, _, err = splitAddr("mail.example.org:smtp")
	assert.ErrorContains(t, err, "numeric")
}
