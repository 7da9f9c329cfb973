package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/inception/internal/platform"
)

// CreateFloatingIP allocates an IPv4 floating IP homed in pool, or in the
// provisioner's location when pool is empty, and returns its address.
func (p *Provisioner) CreateFloatingIP(ctx context.Context, pool string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.FloatingIP)
	defer cancel()

	if pool == "" {
		pool = p.location
	}
	if pool == "" {
		return "", fmt.Errorf("floating IP pool or location is required")
	}

	loc, err := p.resolveLocation(ctx, pool)
	if err != nil {
		return "", err
	}

	res, _, err := p.client.FloatingIP.Create(ctx, hcloud.FloatingIPCreateOpts{
		Type:         hcloud.FloatingIPTypeIPv4,
		HomeLocation: loc,
		Labels:       p.resourceLabels(nil),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create floating IP in %s: %w", pool, err)
	}
	if err := waitForActions(ctx, p.client, res.Action); err != nil {
		return "", fmt.Errorf("failed to wait for floating IP creation: %w", err)
	}

	p.log.V(1).Info("floating IP created", "ip", res.FloatingIP.IP.String(), "pool", pool)
	return res.FloatingIP.IP.String(), nil
}

// AssociateFloatingIP assigns the floating IP with address ip to the server.
func (p *Provisioner) AssociateFloatingIP(ctx context.Context, instanceID, ip string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.FloatingIP)
	defer cancel()

	serverID, err := parseID(instanceID)
	if err != nil {
		return err
	}
	fip, err := p.findFloatingIP(ctx, ip)
	if err != nil {
		return err
	}
	if fip == nil {
		return fmt.Errorf("floating IP not found: %s", ip)
	}

	action, _, err := p.client.FloatingIP.Assign(ctx, fip, &hcloud.Server{ID: serverID})
	if err != nil {
		return fmt.Errorf("failed to assign floating IP %s to server %s: %w", ip, instanceID, err)
	}
	if err := waitForActions(ctx, p.client, action); err != nil {
		return fmt.Errorf("failed to wait for floating IP assignment: %w", err)
	}
	return nil
}

// ListFloatingIPs returns every floating IP in the project.
func (p *Provisioner) ListFloatingIPs(ctx context.Context) ([]*platform.FloatingIP, error) {
	fips, err := p.client.FloatingIP.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list floating IPs: %w", err)
	}

	out := make([]*platform.FloatingIP, 0, len(fips))
	for _, f := range fips {
		out = append(out, toFloatingIP(f))
	}
	return out, nil
}

// DeleteFloatingIP releases the floating IP with address ip. Releasing an
// address that no longer exists succeeds.
func (p *Provisioner) DeleteFloatingIP(ctx context.Context, ip string) error {
	return (&DeleteOperation[*hcloud.FloatingIP]{
		Name:         ip,
		ResourceType: "floating IP",
		Lookup:       func(ctx context.Context) (*hcloud.FloatingIP, error) { return p.findFloatingIP(ctx, ip) },
		Delete: func(ctx context.Context, fip *hcloud.FloatingIP) error {
			_, err := p.client.FloatingIP.Delete(ctx, fip)
			return err
		},
	}).Execute(ctx, p)
}

func (p *Provisioner) findFloatingIP(ctx context.Context, ip string) (*hcloud.FloatingIP, error) {
	fips, err := p.client.FloatingIP.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list floating IPs: %w", err)
	}
	for _, f := range fips {
		if f.IP != nil && f.IP.String() == ip {
			return f, nil
		}
	}
	return nil, nil
}

func toFloatingIP(f *hcloud.FloatingIP) *platform.FloatingIP {
	out := &platform.FloatingIP{ID: formatID(f.ID)}
	if f.IP != nil {
		out.IP = f.IP.String()
	}
	if f.Server != nil {
		out.InstanceID = formatID(f.Server.ID)
	}
	if f.HomeLocation != nil {
		out.Pool = f.HomeLocation.Name
	}
	return out
}
