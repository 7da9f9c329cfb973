package config

import "time"

// Config holds everything a single create or destroy run needs.
type Config struct {
	Prefix         string `yaml:"prefix"`
	NumWorkers     int    `yaml:"num_workers"`
	NumControllers int    `yaml:"num_controllers"`

	// Instance shape
	Image             string   `yaml:"image"`
	ConfigServerImage string   `yaml:"config_server_image"`
	Flavor            string   `yaml:"flavor"`
	GatewayFlavor     string   `yaml:"gateway_flavor"`
	KeyName           string   `yaml:"key_name"`
	SecurityGroups    []string `yaml:"security_groups"`
	Location          string   `yaml:"location"`
	FloatingIPPool    string   `yaml:"floating_ip_pool"`
	UserDataFile      string   `yaml:"userdata_file"`

	// Configuration management
	ConfigRepoURL    string  `yaml:"config_repo_url"`
	ConfigRepoBranch string  `yaml:"config_repo_branch"`
	Recipes          Recipes `yaml:"recipes"`

	// Remote access
	User           string `yaml:"user"`
	SSHKeyFile     string `yaml:"ssh_key_file"`
	StrictHostKeys bool   `yaml:"strict_host_keys"`

	// Pipeline behavior
	Atomic         bool   `yaml:"atomic"`
	Parallel       *bool  `yaml:"parallel"`
	MaxParallel    int    `yaml:"max_parallel"`
	Timeout        int    `yaml:"timeout"`
	PollInterval   int    `yaml:"poll_interval"`
	CommandTimeout int    `yaml:"command_timeout"`
	ReadyMarker    string `yaml:"ready_marker"`

	// StateDB is the path of the sqlite cluster record database.
	StateDB string `yaml:"state_db"`

	// HCloudToken is read from HCLOUD_TOKEN, never from the file.
	HCloudToken string `yaml:"-"`
}

// Recipes names the run-list items applied in each configuration stage.
type Recipes struct {
	Network    string `yaml:"network"`
	DNS        string `yaml:"dns"`
	Controller string `yaml:"controller"`
	Worker     string `yaml:"worker"`
}

// ParallelEnabled reports whether fan-out batches run concurrently.
// Unset means enabled.
func (c *Config) ParallelEnabled() bool {
	return c.Parallel == nil || *c.Parallel
}

// TimeoutDuration returns the readiness timeout.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// PollIntervalDuration returns the delay between readiness iterations.
func (c *Config) PollIntervalDuration() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

// CommandTimeoutDuration returns the per-command timeout, zero for none.
func (c *Config) CommandTimeoutDuration() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}

// ServerImage returns the image for the configuration server, falling
// back to the cluster image.
func (c *Config) ServerImage() string {
	if c.ConfigServerImage != "" {
		return c.ConfigServerImage
	}
	return c.Image
}

// NodeFlavor returns the flavor for the gateway when gateway is true,
// otherwise the cluster flavor.
func (c *Config) NodeFlavor(gateway bool) string {
	if gateway && c.GatewayFlavor != "" {
		return c.GatewayFlavor
	}
	return c.Flavor
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.NumControllers == 0 {
		c.NumControllers = DefaultNumControllers
	}
	if c.MaxParallel == 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeoutSeconds
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollSeconds
	}
	if c.User == "" {
		c.User = DefaultUser
	}
	if c.ConfigRepoBranch == "" {
		c.ConfigRepoBranch = DefaultRepoBranch
	}
	if c.ReadyMarker == "" {
		c.ReadyMarker = DefaultReadyMarker
	}
	if c.StateDB == "" {
		c.StateDB = DefaultStateDB
	}
	if c.Recipes.Network == "" {
		c.Recipes.Network = DefaultNetworkRecipe
	}
	if c.Recipes.DNS == "" {
		c.Recipes.DNS = DefaultDNSRecipe
	}
	if c.Recipes.Controller == "" {
		c.Recipes.Controller = DefaultControllerRecipe
	}
	if c.Recipes.Worker == "" {
		c.Recipes.Worker = DefaultWorkerRecipe
	}
}
