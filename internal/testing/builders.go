package testing

import (
	"slices"

	"github.com/imamik/inception/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with a valid configuration.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Prefix:         "demo",
			NumWorkers:     2,
			NumControllers: 1,
			Image:          "ubuntu-24.04",
			Flavor:         "cx22",
			KeyName:        "deploy",
			Location:       "nbg1",
			ConfigRepoURL:  "https://example.com/chef-repo.git",
			User:           "ubuntu",
			StrictHostKeys: true,
			Timeout:        60,
			PollInterval:   5,
		},
	}
}

// WithPrefix sets the cluster prefix.
func (b *ConfigBuilder) WithPrefix(prefix string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Prefix = prefix
	return nb
}

// WithWorkers sets the number of workers.
func (b *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.NumWorkers = n
	return nb
}

// WithControllers sets the number of controllers.
func (b *ConfigBuilder) WithControllers(n int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.NumControllers = n
	return nb
}

// WithAtomic enables rollback on failure.
func (b *ConfigBuilder) WithAtomic(atomic bool) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Atomic = atomic
	return nb
}

// WithParallel sets concurrent fan-out.
func (b *ConfigBuilder) WithParallel(parallel bool) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Parallel = &parallel
	return nb
}

// WithMaxParallel bounds the worker pool.
func (b *ConfigBuilder) WithMaxParallel(n int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.MaxParallel = n
	return nb
}

// WithReadiness sets the readiness timeout and poll interval in seconds.
func (b *ConfigBuilder) WithReadiness(timeout, pollInterval int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Timeout = timeout
	nb.cfg.PollInterval = pollInterval
	return nb
}

// WithStrictHostKeys toggles host key verification.
func (b *ConfigBuilder) WithStrictHostKeys(strict bool) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.StrictHostKeys = strict
	return nb
}

// WithFloatingIPPool sets the floating IP pool.
func (b *ConfigBuilder) WithFloatingIPPool(pool string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.FloatingIPPool = pool
	return nb
}

// Build returns the constructed config with defaults applied.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	cfg.ApplyDefaults()
	return &cfg
}

// clone creates a deep copy of the builder for immutability.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.SecurityGroups = slices.Clone(b.cfg.SecurityGroups)
	if b.cfg.Parallel != nil {
		parallel := *b.cfg.Parallel
		cfg.Parallel = &parallel
	}
	return &ConfigBuilder{cfg: cfg}
}

// MinimalConfig returns a minimal valid config for simple tests.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
