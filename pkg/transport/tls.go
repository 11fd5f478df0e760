package transport

import (
	"crypto/tls"
	"fmt"

	"github.com/docker/go-connections/tlsconfig"
)

// TLSConfig holds file-based TLS client settings.
type TLSConfig struct {
	// CAFile is a PEM bundle of trusted roots. When set, it replaces the
	// system pool.
	CAFile string `yaml:"ca_file"`

	// CertFile and KeyFile hold an optional client certificate.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	// ServerName overrides the name verified against the server certificate.
	// Defaults to the dialed host.
	ServerName string `yaml:"server_name"`

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// IsZero reports whether no setting is present.
func (c *TLSConfig) IsZero() bool {
	return c == nil || *c == TLSConfig{}
}

// NewClientTLSConfig builds a client *tls.Config for host.
func NewClientTLSConfig(cfg *TLSConfig, host string) (*tls.Config, error) {
	if cfg == nil {
		cfg = &TLSConfig{}
	}

	var (
		tlsConf *tls.Config
		err     error
	)
	if cfg.CAFile == "" && cfg.CertFile == "" && cfg.KeyFile == "" {
		tlsConf = tlsconfig.ClientDefault()
		tlsConf.InsecureSkipVerify = cfg.InsecureSkipVerify
	} else {
		tlsConf, err = tlsconfig.Client(tlsconfig.Options{
			CAFile:             cfg.CAFile,
			CertFile:           cfg.CertFile,
			KeyFile:            cfg.KeyFile,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
			ExclusiveRootPools: cfg.CAFile != "",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	tlsConf.ServerName = cfg.ServerName
	if tlsConf.ServerName == "" {
		tlsConf.ServerName = host
	}
	return tlsConf, nil
}

// TLSAvailable reports whether the TLS stack offers any usable cipher suite.
func TLSAvailable() bool {
	return len(tls.CipherSuites()) > 0
}

// VersionName returns the protocol name for a negotiated TLS version.
func VersionName(v uint16) string {
	return tls.VersionName(v)
}
