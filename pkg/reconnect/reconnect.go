package reconnect

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/linesock/linesock-go/pkg/socket"
)

// Backoff defaults.
const (
	// InitialBackoff is the delay after the first failed attempt.
	InitialBackoff = 1 * time.Second

	// MaxBackoff caps the delay between attempts.
	MaxBackoff = 60 * time.Second

	// BackoffMultiplier is the factor by which the delay grows.
	BackoffMultiplier = 2.0

	// JitterFactor randomises each delay by up to this fraction.
	JitterFactor = 0.25

	// DefaultMaxAttempts bounds the number of connect calls.
	DefaultMaxAttempts = 5
)

// Policy configures the retry schedule.
type Policy struct {
	Initial     time.Duration `yaml:"initial"`
	Max         time.Duration `yaml:"max"`
	Multiplier  float64       `yaml:"multiplier"`
	Jitter      float64       `yaml:"jitter"`
	MaxAttempts uint          `yaml:"max_attempts"`
}

// DefaultPolicy returns the default schedule.
func DefaultPolicy() Policy {
	return Policy{
		Initial:     InitialBackoff,
		Max:         MaxBackoff,
		Multiplier:  BackoffMultiplier,
		Jitter:      JitterFactor,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// withDefaults fills zero or invalid fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Initial <= 0 {
		p.Initial = d.Initial
	}
	if p.Max <= 0 {
		p.Max = d.Max
	}
	if p.Multiplier <= 1 {
		p.Multiplier = d.Multiplier
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		p.Jitter = d.Jitter
	}
	if p.MaxAttempts == 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	return p
}

// BackOff builds the exponential schedule for p.
func (p Policy) BackOff() *backoff.ExponentialBackOff {
	p = p.withDefaults()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = p.Max
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.Reset()
	return b
}

// Connector opens a connection. *socket.Socket implements it.
type Connector interface {
	Connect(ctx context.Context) (*socket.Socket, error)
}

// Option configures a Reconnector.
type Option func(*Reconnector)

// WithLogger sets the logger for failed attempts.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconnector) { r.logger = l }
}

// WithNotify is called after each failed attempt that will be retried.
func WithNotify(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(r *Reconnector) { r.notify = fn }
}

// WithFallback is consulted once when a secure connection proves
// unavailable. A non-nil Connector replaces the current one and retrying
// continues; nil keeps the failure permanent.
func WithFallback(fn func(err error) Connector) Option {
	return func(r *Reconnector) { r.fallback = fn }
}

// Reconnector retries connect calls according to a Policy.
type Reconnector struct {
	policy   Policy
	logger   *slog.Logger
	notify   func(attempt int, delay time.Duration, err error)
	fallback func(err error) Connector
}

// New creates a Reconnector.
func New(policy Policy, opts ...Option) *Reconnector {
	r := &Reconnector{
		policy: policy.withDefaults(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Connect calls c.Connect until it succeeds, fails permanently, the
// attempt budget is spent or ctx is done. The last error is returned.
func (r *Reconnector) Connect(ctx context.Context, c Connector) (*socket.Socket, error) {
	current := c
	attempt := 0
	fellBack := false

	op := func() (*socket.Socket, error) {
		attempt++
		s, err := current.Connect(ctx)
		if err == nil {
			return s, nil
		}

		if errors.Is(err, socket.ErrSecureUnavailable) && r.fallback != nil && !fellBack {
			fellBack = true
			if next := r.fallback(err); next != nil {
				r.logger.Info("secure connection unavailable, falling back", "attempt", attempt, "err", err)
				current = next
				return nil, err
			}
		}
		if Permanent(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(r.policy.BackOff()),
		backoff.WithMaxTries(r.policy.MaxAttempts),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			r.logger.Warn("connect failed, retrying", "attempt", attempt, "retry_in", delay, "err", err)
			if r.notify != nil {
				r.notify(attempt, delay, err)
			}
		}),
	)
}

// Permanent reports whether retrying the same connect call cannot succeed.
func Permanent(err error) bool {
	return socket.IsProgrammerError(err) ||
		errors.Is(err, socket.ErrStrictlySecure) ||
		errors.Is(err, socket.ErrSecureUnavailable)
}
