package config

// Defaults applied by ApplyDefaults.
const (
	DefaultNumWorkers       = 2
	DefaultNumControllers   = 1
	DefaultMaxParallel      = 8
	DefaultTimeoutSeconds   = 25 * 60
	DefaultPollSeconds      = 5
	DefaultUser             = "ubuntu"
	DefaultRepoBranch       = "master"
	DefaultReadyMarker      = "/var/lib/cloud/instance/boot-finished"
	DefaultStateDB          = "inception.db"
	DefaultNetworkRecipe    = "recipe[inception::vxlan]"
	DefaultDNSRecipe        = "recipe[inception::dnsmasq]"
	DefaultControllerRecipe = "role[controller]"
	DefaultWorkerRecipe     = "role[worker]"
)

// Upper bounds enforced by Validate.
const (
	MaxWorkers     = 5
	MaxControllers = 3
)
