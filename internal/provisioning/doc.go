// Package provisioning stands up and tears down an inception cluster.
//
// The Orchestrator drives a fixed pipeline of states:
//
//	Created → ServersLaunching → ServersReady → ConfigServerBootstrapped →
//	NodesCheckedIn → NetworkDeployed → ControllerConfigured →
//	WorkersConfigured → Active
//
// Instances are created through a CloudProvisioner, awaited by the
// ReadinessPoller and configured by the Runner, which executes batches of
// remote commands through a RemoteExecutor either sequentially or on a
// bounded worker pool. Every batch is a barrier: a failure in any batch
// aborts the pipeline. With atomic runs the RollbackManager then deletes
// everything that carries the cluster prefix.
//
// Cloud and remote shell access are narrow interfaces so the pipeline can be
// exercised against fakes; internal/platform/hcloud and internal/platform/ssh
// provide the production adapters.
package provisioning
