package provisioning

import (
	"context"

	"github.com/imamik/inception/internal/platform"
)

// CloudProvisioner manages instances and floating IPs on the IaaS API.
// Implemented by internal/platform/hcloud.Provisioner.
type CloudProvisioner interface {
	CreateInstance(ctx context.Context, opts platform.CreateOpts) (string, error)
	GetInstance(ctx context.Context, id string) (*platform.Instance, error)
	ListInstances(ctx context.Context) ([]*platform.Instance, error)
	DeleteInstance(ctx context.Context, id string) error

	CreateFloatingIP(ctx context.Context, pool string) (string, error)
	AssociateFloatingIP(ctx context.Context, instanceID, ip string) error
	ListFloatingIPs(ctx context.Context) ([]*platform.FloatingIP, error)
	DeleteFloatingIP(ctx context.Context, ip string) error
}

// RemoteExecutor runs shell commands on nodes or locally.
// Implemented by internal/platform/ssh.Executor.
//
// Network-level failures are reported as *platform.ConnectionFailure and
// commands exiting non-zero as *platform.NonZeroExit.
type RemoteExecutor interface {
	Run(ctx context.Context, target platform.Target, command string, opts platform.RunOptions) (platform.Output, error)
	RunLocal(ctx context.Context, command string, opts platform.RunOptions) (platform.Output, error)
}

// StatusRecorder persists cluster records across runs.
// Implemented by internal/store.Store.
type StatusRecorder interface {
	Save(ctx context.Context, cluster *Cluster) error
	Remove(ctx context.Context, prefix string) error
}
