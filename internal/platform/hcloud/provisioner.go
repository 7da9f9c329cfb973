package hcloud

import (
	"maps"

	"github.com/go-logr/logr"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/inception/internal/config"
)

// Provisioner creates and removes cluster resources in a Hetzner Cloud project.
type Provisioner struct {
	client   *hcloud.Client
	timeouts *config.Timeouts
	location string
	labels   map[string]string
	log      logr.Logger
}

// ProvisionerOption configures a Provisioner.
type ProvisionerOption func(*Provisioner)

// WithTimeouts sets custom timeouts for the provisioner.
func WithTimeouts(t *config.Timeouts) ProvisionerOption {
	return func(p *Provisioner) {
		p.timeouts = t
	}
}

// WithHCloudClient sets a custom hcloud client (useful for testing).
func WithHCloudClient(hc *hcloud.Client) ProvisionerOption {
	return func(p *Provisioner) {
		p.client = hc
	}
}

// WithLocation sets the default location for servers and floating IPs.
func WithLocation(location string) ProvisionerOption {
	return func(p *Provisioner) {
		p.location = location
	}
}

// WithLabels sets labels applied to every created resource.
func WithLabels(labels map[string]string) ProvisionerOption {
	return func(p *Provisioner) {
		p.labels = maps.Clone(labels)
	}
}

// WithLogger sets the logger for resource operations.
func WithLogger(log logr.Logger) ProvisionerOption {
	return func(p *Provisioner) {
		p.log = log
	}
}

// NewProvisioner creates a Provisioner with optional configuration.
func NewProvisioner(token string, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		timeouts: config.LoadTimeouts(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = hcloud.NewClient(
			hcloud.WithToken(token),
			hcloud.WithApplication("inception", ""),
		)
	}
	return p
}

// HCloudClient returns the underlying hcloud.Client.
func (p *Provisioner) HCloudClient() *hcloud.Client {
	return p.client
}

// resourceLabels merges the provisioner's labels with per-resource labels.
func (p *Provisioner) resourceLabels(extra map[string]string) map[string]string {
	out := make(map[string]string, len(p.labels)+len(extra))
	maps.Copy(out, p.labels)
	maps.Copy(out, extra)
	return out
}
