package naming

import (
	"fmt"
	"strings"
)

// Separator joins the cluster prefix and the node role.
const Separator = "-"

// Role names used in hostnames.
const (
	RoleGateway      = "gateway"
	RoleConfigServer = "chefserver"
	RoleController   = "controller"
	RoleWorker       = "worker"
)

// Gateway returns the gateway hostname.
func Gateway(prefix string) string {
	return prefix + Separator + RoleGateway
}

// ConfigServer returns the configuration-management server hostname.
func ConfigServer(prefix string) string {
	return prefix + Separator + RoleConfigServer
}

// Controller returns the hostname of controller i (1-based). A cluster with
// a single controller keeps the bare "controller" role name.
func Controller(prefix string, i, total int) string {
	if total <= 1 {
		return prefix + Separator + RoleController
	}
	return fmt.Sprintf("%s%s%s%d", prefix, Separator, RoleController, i)
}

// Worker returns the hostname of worker i (1-based).
func Worker(prefix string, i int) string {
	return fmt.Sprintf("%s%s%s%d", prefix, Separator, RoleWorker, i)
}

// ClusterPrefix returns the name prefix shared by every node of a cluster.
func ClusterPrefix(prefix string) string {
	return prefix + Separator
}

// BelongsTo reports whether an instance name belongs to the cluster prefix.
func BelongsTo(name, prefix string) bool {
	return strings.HasPrefix(name, ClusterPrefix(prefix))
}

// ParseHostname splits a node hostname into its prefix and role.
func ParseHostname(hostname string) (prefix, role string, ok bool) {
	prefix, role, ok = strings.Cut(hostname, Separator)
	if !ok || prefix == "" || role == "" {
		return "", "", false
	}
	return prefix, role, true
}
