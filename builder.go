package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/password"
	"github.com/MrEthical07/goSession/token"
)

// Builder assembles a [Controller]. Configure it with the With* methods and
// call [Builder.Build] exactly once.
type Builder struct {
	config Config

	store     CredentialStore
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig]. Signing secrets must
// still be supplied through [Builder.WithConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a defensive copy of
// cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithCredentialStore sets the persistence collaborator. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the sink that receives audit events when auditing is
// enabled in the configuration.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the VerifyAccess latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the Controller. A missing
// or shared signing secret fails here; configuration problems are
// startup-fatal, never per-request.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	hasher, err := password.NewHasher(password.Config{
		Cost: cfg.Password.Cost,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  cloneBytes(cfg.Token.AccessSecret),
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshSecret: cloneBytes(cfg.Token.RefreshSecret),
		RefreshTTL:    cfg.Token.RefreshTTL,
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	controller := &Controller{
		config:  cfg,
		store:   b.store,
		hasher:  hasher,
		tokens:  tokens,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return controller, nil
}
