package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/util/retry"
)

// CreateInstance creates a server and returns its ID once the create
// action has finished. The server may still be booting.
func (p *Provisioner) CreateInstance(ctx context.Context, opts platform.CreateOpts) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.ServerCreate)
	defer cancel()

	createOpts, err := p.buildServerCreateOpts(ctx, opts)
	if err != nil {
		return "", err
	}

	var result hcloud.ServerCreateResult
	err = retry.Do(ctx, func() error {
		res, _, err := p.client.Server.Create(ctx, createOpts)
		if err != nil {
			if isInvalidParameter(err) {
				return retry.Fatal(err)
			}
			return err
		}
		result = res
		return nil
	}, retry.WithMaxRetries(p.timeouts.RetryMaxAttempts), retry.WithInitialDelay(p.timeouts.RetryInitialDelay))
	if err != nil {
		return "", fmt.Errorf("failed to create server %s: %w", opts.Name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := waitForActions(ctx, p.client, actions...); err != nil {
		return "", fmt.Errorf("failed to wait for server %s creation: %w", opts.Name, err)
	}

	p.log.V(1).Info("server created", "name", opts.Name, "id", result.Server.ID)
	return formatID(result.Server.ID), nil
}

// buildServerCreateOpts resolves all dependencies and builds server creation options.
func (p *Provisioner) buildServerCreateOpts(ctx context.Context, opts platform.CreateOpts) (hcloud.ServerCreateOpts, error) {
	serverType, _, err := p.client.ServerType.Get(ctx, opts.Flavor)
	if err != nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("failed to get server type: %w", err)
	}
	if serverType == nil {
		return hcloud.ServerCreateOpts{}, fmt.Errorf("server type not found: %s", opts.Flavor)
	}

	image, err := p.resolveImage(ctx, opts.Image, serverType.Architecture)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	var keyNames []string
	if opts.KeyName != "" {
		keyNames = []string{opts.KeyName}
	}
	sshKeys, err := p.resolveSSHKeys(ctx, keyNames)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	firewalls, err := p.resolveFirewalls(ctx, opts.SecurityGroups)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	location := opts.Location
	if location == "" {
		location = p.location
	}
	loc, err := p.resolveLocation(ctx, location)
	if err != nil {
		return hcloud.ServerCreateOpts{}, err
	}

	return hcloud.ServerCreateOpts{
		Name:       opts.Name,
		ServerType: serverType,
		Image:      image,
		SSHKeys:    sshKeys,
		Firewalls:  firewalls,
		Location:   loc,
		UserData:   opts.UserData,
		Labels:     p.resourceLabels(opts.Labels),
	}, nil
}

// GetInstance returns the server with the given ID.
func (p *Provisioner) GetInstance(ctx context.Context, id string) (*platform.Instance, error) {
	serverID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var server *hcloud.Server
	err = retry.Do(ctx, func() error {
		s, _, err := p.client.Server.GetByID(ctx, serverID)
		if err != nil {
			return err
		}
		server = s
		return nil
	},
		retry.WithMaxRetries(p.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(p.timeouts.RetryInitialDelay),
		retry.WithRetryIf(isTransient))
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", id, err)
	}
	if server == nil {
		return nil, fmt.Errorf("server not found: %s", id)
	}
	return toInstance(server), nil
}

// ListInstances returns every server in the project.
func (p *Provisioner) ListInstances(ctx context.Context) ([]*platform.Instance, error) {
	servers, err := p.client.Server.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}

	instances := make([]*platform.Instance, 0, len(servers))
	for _, s := range servers {
		instances = append(instances, toInstance(s))
	}
	return instances, nil
}

// DeleteInstance deletes the server with the given ID. Deleting a server
// that no longer exists succeeds.
func (p *Provisioner) DeleteInstance(ctx context.Context, id string) error {
	serverID, err := parseID(id)
	if err != nil {
		return err
	}

	return (&DeleteOperation[*hcloud.Server]{
		Name:         id,
		ResourceType: "server",
		Lookup: func(ctx context.Context) (*hcloud.Server, error) {
			s, _, err := p.client.Server.GetByID(ctx, serverID)
			return s, err
		},
		Delete: func(ctx context.Context, server *hcloud.Server) error {
			result, _, err := p.client.Server.DeleteWithResult(ctx, server)
			if err != nil {
				return err
			}
			return waitForActions(ctx, p.client, result.Action)
		},
	}).Execute(ctx, p)
}

// toInstance converts an hcloud server into the provisioner-neutral view.
func toInstance(s *hcloud.Server) *platform.Instance {
	inst := &platform.Instance{
		ID:        formatID(s.ID),
		Name:      s.Name,
		Status:    string(s.Status),
		Addresses: map[string]string{},
		Labels:    s.Labels,
	}
	if ip := s.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		inst.IPAddress = ip.String()
		inst.Addresses["public"] = ip.String()
	}
	if ip := s.PublicNet.IPv6.IP; ip != nil && !ip.IsUnspecified() {
		inst.Addresses["ipv6"] = ip.String()
	}
	for _, pn := range s.PrivateNet {
		if pn.IP == nil || pn.Network == nil {
			continue
		}
		name := pn.Network.Name
		if name == "" {
			name = "private-" + formatID(pn.Network.ID)
		}
		inst.Addresses[name] = pn.IP.String()
	}
	for _, fip := range s.PublicNet.FloatingIPs {
		if fip != nil && fip.IP != nil {
			inst.Addresses["floating"] = fip.IP.String()
		}
	}
	return inst
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid server id: %q", id)
	}
	return n, nil
}
