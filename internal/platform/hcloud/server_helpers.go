package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// resolveImage resolves an image name or ID for the server architecture.
func (p *Provisioner) resolveImage(ctx context.Context, image string, arch hcloud.Architecture) (*hcloud.Image, error) {
	if image == "" {
		return nil, fmt.Errorf("image is required")
	}
	imageObj, _, err := p.client.Image.GetForArchitecture(ctx, image, arch)
	if err != nil {
		return nil, fmt.Errorf("failed to get image %s: %w", image, err)
	}
	if imageObj == nil {
		return nil, fmt.Errorf("image not found: %s (%s)", image, arch)
	}
	return imageObj, nil
}

// resolveSSHKeys resolves SSH key names/IDs to SSH key objects.
func (p *Provisioner) resolveSSHKeys(ctx context.Context, sshKeys []string) ([]*hcloud.SSHKey, error) {
	var sshKeyObjs []*hcloud.SSHKey
	for _, key := range sshKeys {
		keyObj, _, err := p.client.SSHKey.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to get ssh key %s: %w", key, err)
		}
		if keyObj == nil {
			return nil, fmt.Errorf("ssh key not found: %s", key)
		}
		sshKeyObjs = append(sshKeyObjs, keyObj)
	}
	return sshKeyObjs, nil
}

// resolveFirewalls resolves security group names to firewalls applied at creation.
func (p *Provisioner) resolveFirewalls(ctx context.Context, groups []string) ([]*hcloud.ServerCreateFirewall, error) {
	var firewalls []*hcloud.ServerCreateFirewall
	for _, name := range groups {
		fw, _, err := p.client.Firewall.Get(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to get firewall %s: %w", name, err)
		}
		if fw == nil {
			return nil, fmt.Errorf("security group not found: %s", name)
		}
		firewalls = append(firewalls, &hcloud.ServerCreateFirewall{Firewall: *fw})
	}
	return firewalls, nil
}

// resolveLocation resolves a location name to a location object.
func (p *Provisioner) resolveLocation(ctx context.Context, location string) (*hcloud.Location, error) {
	if location == "" {
		return nil, nil
	}

	locObj, _, err := p.client.Location.Get(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", location, err)
	}
	if locObj == nil {
		return nil, fmt.Errorf("location not found: %s", location)
	}
	return locObj, nil
}
