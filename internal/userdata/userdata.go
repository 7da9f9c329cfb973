// Package userdata renders the cloud-config payload handed to every instance
// at creation.
package userdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	header     = "#cloud-config\n"
	scriptPath = "/var/lib/inception/userdata.sh"
)

// DefaultPackages are installed on every node before the startup script runs.
var DefaultPackages = []string{"curl", "git"}

// Params describes one node's startup payload.
type Params struct {
	Hostname string
	Prefix   string
	Role     string
	// Script is an optional shell script run once at first boot. The
	// placeholders ${hostname}, ${prefix} and ${role} are substituted.
	Script   string
	Packages []string
}

type cloudConfig struct {
	Hostname       string      `yaml:"hostname"`
	ManageEtcHosts bool        `yaml:"manage_etc_hosts"`
	PackageUpdate  bool        `yaml:"package_update"`
	Packages       []string    `yaml:"packages,omitempty"`
	WriteFiles     []writeFile `yaml:"write_files,omitempty"`
	RunCmd         []string    `yaml:"runcmd,omitempty"`
}

type writeFile struct {
	Path        string `yaml:"path"`
	Permissions string `yaml:"permissions"`
	Content     string `yaml:"content"`
}

// Render returns the cloud-config document for p.
func Render(p Params) (string, error) {
	if p.Hostname == "" {
		return "", fmt.Errorf("hostname is required")
	}

	packages := p.Packages
	if packages == nil {
		packages = DefaultPackages
	}

	cfg := cloudConfig{
		Hostname:       p.Hostname,
		ManageEtcHosts: true,
		PackageUpdate:  true,
		Packages:       packages,
	}

	if p.Script != "" {
		script := strings.NewReplacer(
			"${hostname}", p.Hostname,
			"${prefix}", p.Prefix,
			"${role}", p.Role,
		).Replace(p.Script)

		cfg.WriteFiles = append(cfg.WriteFiles, writeFile{
			Path:        scriptPath,
			Permissions: "0755",
			Content:     script,
		})
		cfg.RunCmd = append(cfg.RunCmd, scriptPath)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cloud-config: %w", err)
	}
	return header + string(data), nil
}

// LoadScript reads a startup script template. An empty path yields no script.
func LoadScript(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read userdata file: %w", err)
	}
	return string(data), nil
}
