package commands

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesock/linesock-go/pkg/config"
	"github.com/linesock/linesock-go/pkg/readiness"
)

func TestRunProbeDefaults(t *testing.T) {
	var out bytes.Buffer
	RunProbe(config.Default(), &out)
	got := out.String()

	assert.Contains(t, got, "OS:              "+runtime.GOOS)
	assert.Contains(t, got, "Runtime:         "+runtime.Version())
	assert.Contains(t, got, "Configured mode: auto")
	assert.Contains(t, got, "TLS available:   true")
	assert.Contains(t, got, "TLS versions:    TLS 1.2, TLS 1.3")
	assert.Contains(t, got, "Default timeout: 1m0s")
}

func TestRunProbeWithRules(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("quiet classification takes precedence on windows")
	}
	cfg := config.Default()
	cfg.Readiness.PollOn = []readiness.Rule{{OS: runtime.GOOS}}

	var out bytes.Buffer
	RunProbe(cfg, &out)
	assert.Contains(t, out.String(), "Classified as:   poll")
	assert.Contains(t, out.String(), "Strategy:        poll")
	assert.Contains(t, out.String(), "Polling rules:   1")
}

func TestRunProbeForcedMode(t *testing.T) {
	cfg := config.Default()
	cfg.Readiness.Mode = "standard"
	cfg.TLSAvailable = func() bool { return false }

	var out bytes.Buffer
	RunProbe(cfg, &out)
	assert.Contains(t, out.String(), "Strategy:        standard")
	assert.Contains(t, out.String(), "TLS available:   false")
}
