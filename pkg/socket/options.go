package socket

import (
	"crypto/tls"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/linesock/linesock-go/pkg/config"
	"github.com/linesock/linesock-go/pkg/log"
	"github.com/linesock/linesock-go/pkg/readiness"
	"github.com/linesock/linesock-go/pkg/transport"
)

// Option configures a Socket at construction.
type Option func(*options)

type options struct {
	secure        bool
	timeout       time.Duration
	config        *config.Config
	tlsConfig     *tls.Config
	dialer        transport.Dialer
	readiness     readiness.Strategy
	logger        *slog.Logger
	protocolLog   log.Logger
	meterProvider metric.MeterProvider
}

// WithSecure requests TLS. The request is dropped at construction when TLS
// is unavailable and the configuration is not strictly secure.
func WithSecure(secure bool) Option {
	return func(o *options) { o.secure = secure }
}

// WithTimeout sets the connect and read timeout. Zero selects the
// configured default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithConfig sets the shared configuration. Defaults to config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// WithTLSConfig overrides the TLS client settings built from the config's
// TLS files.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) { o.tlsConfig = c }
}

// WithDialer replaces the network dialer.
func WithDialer(d transport.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithReadiness replaces the readiness strategy chosen from the config.
func WithReadiness(s readiness.Strategy) Option {
	return func(o *options) { o.readiness = s }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProtocolLogger captures traffic and state changes.
func WithProtocolLogger(l log.Logger) Option {
	return func(o *options) { o.protocolLog = l }
}

// WithMeterProvider sets the provider for socket counters. Defaults to the
// global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}
