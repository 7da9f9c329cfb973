package provisioning

import (
	"context"
	"fmt"
	"slices"

	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/util/naming"
)

// CleanupFailure is one deletion that did not succeed.
type CleanupFailure struct {
	Resource string
	Err      error
}

// CleanupReport records the outcome of a teardown.
type CleanupReport struct {
	Prefix   string
	Deleted  []string
	Failures []CleanupFailure
}

// Err returns a *CleanupError listing every failure, or nil.
func (r *CleanupReport) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	ce := &CleanupError{}
	for _, f := range r.Failures {
		ce.Add(fmt.Errorf("%s: %w", f.Resource, f.Err))
	}
	return ce
}

func (r *CleanupReport) fail(resource string, err error) {
	r.Failures = append(r.Failures, CleanupFailure{Resource: resource, Err: err})
}

// RollbackManager deletes every resource of a cluster, discovered from the
// cloud API by name prefix.
type RollbackManager struct {
	cloud CloudProvisioner
	exec  RemoteExecutor
	// PruneHostKeys removes known_hosts entries of deleted addresses.
	PruneHostKeys bool
	observer      Observer
}

// NewRollbackManager creates a RollbackManager.
func NewRollbackManager(cloud CloudProvisioner, exec RemoteExecutor, observer Observer) *RollbackManager {
	if observer == nil {
		observer = NewLogrObserver(discard)
	}
	return &RollbackManager{cloud: cloud, exec: exec, observer: observer}
}

// Cleanup deletes the gateway floating IPs and every instance named
// "<prefix>-*". Floating IPs in knownIPs are deleted as well, which covers
// an address created but not yet associated. Every deletion is attempted
// independently; failures are collected in the report.
func (m *RollbackManager) Cleanup(ctx context.Context, prefix string, knownIPs ...string) *CleanupReport {
	report := &CleanupReport{Prefix: prefix}
	knownIPs = slices.DeleteFunc(slices.Clone(knownIPs), func(ip string) bool { return ip == "" })
	m.observer.Printf("[Cleanup] Tearing down cluster %s", prefix)

	all, err := m.cloud.ListInstances(ctx)
	if err != nil {
		report.fail("instances", fmt.Errorf("failed to list instances: %w", err))
		return report
	}

	var instances []*platform.Instance
	var gateway *platform.Instance
	for _, inst := range all {
		if !naming.BelongsTo(inst.Name, prefix) {
			continue
		}
		instances = append(instances, inst)
		if inst.Name == naming.Gateway(prefix) {
			gateway = inst
		}
	}

	for _, ip := range m.gatewayFloatingIPs(ctx, report, gateway, knownIPs) {
		m.delete(report, "floating_ip", ip, func() error {
			return m.cloud.DeleteFloatingIP(ctx, ip)
		})
	}

	var removed []string
	for _, inst := range instances {
		if m.delete(report, "instance", inst.Name, func() error {
			return m.cloud.DeleteInstance(ctx, inst.ID)
		}) {
			removed = append(removed, inst.Addresses["public"], inst.IPAddress)
		}
	}

	if m.PruneHostKeys && m.exec != nil {
		m.pruneHostKeys(ctx, removed)
	}

	m.observer.Printf("[Cleanup] Deleted %d resources, %d failures", len(report.Deleted), len(report.Failures))
	return report
}

// gatewayFloatingIPs returns the floating IPs assigned to the gateway or
// matching one of its addresses, plus knownIPs that still exist.
func (m *RollbackManager) gatewayFloatingIPs(ctx context.Context, report *CleanupReport, gateway *platform.Instance, knownIPs []string) []string {
	if gateway == nil && len(knownIPs) == 0 {
		return nil
	}

	fips, err := m.cloud.ListFloatingIPs(ctx)
	if err != nil {
		report.fail("floating_ips", fmt.Errorf("failed to list floating IPs: %w", err))
		return nil
	}

	var addrs []string
	for _, fip := range fips {
		if slices.Contains(knownIPs, fip.IP) || ownedBy(fip, gateway) {
			addrs = append(addrs, fip.IP)
		}
	}
	return addrs
}

func ownedBy(fip *platform.FloatingIP, inst *platform.Instance) bool {
	if inst == nil {
		return false
	}
	if fip.InstanceID != "" && fip.InstanceID == inst.ID {
		return true
	}
	if fip.IP == inst.IPAddress {
		return true
	}
	for _, addr := range inst.Addresses {
		if addr == fip.IP {
			return true
		}
	}
	return false
}

func (m *RollbackManager) delete(report *CleanupReport, resourceType, name string, fn func() error) bool {
	LogResourceDeleting(m.observer, "cleanup", resourceType, name)
	m.observer.Printf("[Cleanup] Deleting %s %s...", resourceType, name)

	err := fn()
	recordCleanupMetric(resourceType, err)
	if err != nil {
		m.observer.Printf("[Cleanup] Warning: Failed to delete %s %s: %v", resourceType, name, err)
		report.fail(resourceType+" "+name, err)
		return false
	}

	LogResourceDeleted(m.observer, "cleanup", resourceType, name)
	report.Deleted = append(report.Deleted, name)
	return true
}

func (m *RollbackManager) pruneHostKeys(ctx context.Context, addrs []string) {
	seen := map[string]bool{}
	for _, addr := range addrs {
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		if _, err := m.exec.RunLocal(ctx, "ssh-keygen -R "+addr, platform.RunOptions{Silent: true}); err != nil {
			m.observer.Printf("[Cleanup] Warning: Failed to prune host key for %s: %v", addr, err)
		}
	}
}
