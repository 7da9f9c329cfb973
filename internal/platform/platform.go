// Package platform holds the contracts shared by the cloud and remote
// execution adapters and the provisioning core: instance and floating IP
// views, create options, remote targets and the two remote failure kinds.
package platform

import (
	"fmt"
	"net"
	"strconv"
)

// Instance is the provisioner-neutral view of a cloud server.
type Instance struct {
	ID     string
	Name   string
	Status string
	// IPAddress is the primary reachable address, empty until assigned.
	IPAddress string
	// Addresses lists every known address keyed by network name.
	Addresses map[string]string
	Labels    map[string]string
}

// FloatingIP is a publicly routable address that can move between instances.
type FloatingIP struct {
	ID         string
	IP         string
	InstanceID string
	Pool       string
}

// CreateOpts describes one instance to create.
type CreateOpts struct {
	Name           string
	Image          string
	Flavor         string
	KeyName        string
	SecurityGroups []string
	UserData       string
	Location       string
	Labels         map[string]string
}

// Target addresses a remote host for command execution.
type Target struct {
	Host string
	User string
	Port int
}

// Address returns host:port, defaulting the port to 22.
func (t Target) Address() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

func (t Target) String() string {
	if t.User == "" {
		return t.Host
	}
	return t.User + "@" + t.Host
}

// RunOptions controls how a command is executed.
type RunOptions struct {
	// ScreenOutput mirrors the command's output to the operator's terminal.
	ScreenOutput bool
	// Silent suppresses host-key prompts and verification, used while
	// polling freshly booted instances.
	Silent bool
	// AgentForwarding forwards the local SSH agent to the remote session.
	AgentForwarding bool
	// SingleAttempt disables connection retries.
	SingleAttempt bool
}

// Output captures both streams of a finished command.
type Output struct {
	Stdout string
	Stderr string
}

// ConnectionFailure reports that the remote host could not be reached.
type ConnectionFailure struct {
	Host   string
	Reason string
	Err    error
}

func (e *ConnectionFailure) Error() string {
	return fmt.Sprintf("connection to %s failed: %s", e.Host, e.Reason)
}

func (e *ConnectionFailure) Unwrap() error {
	return e.Err
}

// NonZeroExit reports that a command ran and exited unsuccessfully.
type NonZeroExit struct {
	Host       string
	Command    string
	ExitStatus int
	Output     Output
}

func (e *NonZeroExit) Error() string {
	host := e.Host
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("command on %s exited with status %d: %s", host, e.ExitStatus, e.Command)
}
