// Package config holds the shared configuration injected into sockets.
//
// A single Config is typically loaded once at process start and handed to
// every socket.New call through socket.WithConfig. Sockets snapshot the
// values they need at construction, so changing a Config (for example with
// SetStrictlySecure) only affects sockets constructed afterwards.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linesock/linesock-go/pkg/readiness"
	"github.com/linesock/linesock-go/pkg/transport"
)

// DefaultTimeout is the socket timeout used when none is configured.
const DefaultTimeout = 60 * time.Second

// Config errors.
var (
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrInvalidMode    = errors.New("invalid readiness mode")
)

// Config is the shared socket configuration.
type Config struct {
	// StrictlySecure rejects secure sockets when TLS is unavailable instead
	// of silently downgrading them to plaintext.
	StrictlySecure bool `yaml:"strictly_secure"`

	// DefaultTimeout applies to sockets constructed without a timeout.
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// Readiness selects the readiness-wait strategy.
	Readiness ReadinessConfig `yaml:"readiness"`

	// TLS holds client TLS material for secure sockets.
	TLS transport.TLSConfig `yaml:"tls"`

	// TLSAvailable reports whether the environment supports TLS.
	// Nil means transport.TLSAvailable.
	TLSAvailable func() bool `yaml:"-"`
}

// ReadinessConfig selects how sockets wait for readable data.
type ReadinessConfig struct {
	// Mode is one of auto, standard, quiet or poll.
	Mode string `yaml:"mode"`

	// PollOn lists environments that auto mode classifies as polling.
	PollOn []readiness.Rule `yaml:"poll_on"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DefaultTimeout: DefaultTimeout,
		Readiness: ReadinessConfig{
			Mode: readiness.ModeAuto.String(),
		},
	}
}

// Load reads a YAML configuration file layered over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration layered over Default and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("%w: default_timeout %s is negative", ErrInvalidTimeout, c.DefaultTimeout)
	}
	if _, err := readiness.ParseMode(c.Readiness.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMode, err)
	}
	for i, rule := range c.Readiness.PollOn {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("readiness.poll_on[%d]: %w", i, err)
		}
	}
	return nil
}

// SetStrictlySecure sets the strictly secure flag for sockets constructed
// from now on.
func (c *Config) SetStrictlySecure(strict bool) {
	c.StrictlySecure = strict
}

// Timeout returns the default timeout, falling back to DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	if c.DefaultTimeout <= 0 {
		return DefaultTimeout
	}
	return c.DefaultTimeout
}

// TLSSupported reports whether TLS can be used in this environment.
func (c *Config) TLSSupported() bool {
	if c.TLSAvailable != nil {
		return c.TLSAvailable()
	}
	return transport.TLSAvailable()
}

// ReadinessMode returns the parsed readiness mode (auto when unset).
func (c *Config) ReadinessMode() readiness.Mode {
	m, err := readiness.ParseMode(c.Readiness.Mode)
	if err != nil {
		return readiness.ModeAuto
	}
	return m
}

// Clone returns a shallow copy safe to modify independently.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Readiness.PollOn = append([]readiness.Rule(nil), c.Readiness.PollOn...)
	return &cp
}

func decodeStrict(data []byte, out *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
