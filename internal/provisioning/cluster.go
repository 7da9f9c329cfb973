package provisioning

import (
	"github.com/imamik/inception/internal/util/naming"
)

// Role identifies the function of a node in the cluster.
type Role string

// Node roles.
const (
	RoleGateway      Role = naming.RoleGateway
	RoleConfigServer Role = naming.RoleConfigServer
	RoleController   Role = naming.RoleController
	RoleWorker       Role = naming.RoleWorker
)

// Status is the coarse cluster status persisted by a StatusRecorder.
type Status string

// Cluster statuses.
const (
	StatusBuilding Status = "Building"
	StatusActive   Status = "Active"
	StatusError    Status = "Error"
	StatusDeleting Status = "Deleting"
)

// Node is one provisioned instance.
type Node struct {
	Role Role
	// Index is the 1-based position within the role, 0 for singletons.
	Index      int
	InstanceID string
	IPAddress  string
	Hostname   string
	Ready      bool
}

func (n *Node) String() string {
	return n.Hostname
}

// Cluster is the state of one orchestration run.
type Cluster struct {
	ID             string
	Prefix         string
	NumWorkers     int
	NumControllers int
	RepoURL        string
	RepoBranch     string
	Environment    string
	Status         Status
	State          State
	FloatingIP     string
	Nodes          []*Node
}

// Gateway returns the gateway node, or nil before it exists.
func (c *Cluster) Gateway() *Node {
	return c.first(RoleGateway)
}

// ConfigServer returns the configuration server node, or nil before it exists.
func (c *Cluster) ConfigServer() *Node {
	return c.first(RoleConfigServer)
}

// Controllers returns the controller nodes in index order.
func (c *Cluster) Controllers() []*Node {
	return c.ByRole(RoleController)
}

// Workers returns the worker nodes in index order.
func (c *Cluster) Workers() []*Node {
	return c.ByRole(RoleWorker)
}

// ByRole returns every node with the given role.
func (c *Cluster) ByRole(role Role) []*Node {
	var nodes []*Node
	for _, n := range c.Nodes {
		if n.Role == role {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Hostnames returns the hostnames of all nodes.
func (c *Cluster) Hostnames() []string {
	names := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		names = append(names, n.Hostname)
	}
	return names
}

// Clone returns a deep copy safe to hand out of the orchestrator.
func (c *Cluster) Clone() *Cluster {
	out := *c
	out.Nodes = make([]*Node, len(c.Nodes))
	for i, n := range c.Nodes {
		node := *n
		out.Nodes[i] = &node
	}
	return &out
}

func (c *Cluster) first(role Role) *Node {
	for _, n := range c.Nodes {
		if n.Role == role {
			return n
		}
	}
	return nil
}

// PlanNodes returns the nodes of a cluster in creation order: gateway,
// configuration server, controllers, workers. Instance IDs are empty.
func PlanNodes(prefix string, numControllers, numWorkers int) []*Node {
	nodes := []*Node{
		{Role: RoleGateway, Hostname: naming.Gateway(prefix)},
		{Role: RoleConfigServer, Hostname: naming.ConfigServer(prefix)},
	}
	for i := 1; i <= numControllers; i++ {
		index := i
		if numControllers == 1 {
			index = 0
		}
		nodes = append(nodes, &Node{
			Role:     RoleController,
			Index:    index,
			Hostname: naming.Controller(prefix, i, numControllers),
		})
	}
	for i := 1; i <= numWorkers; i++ {
		nodes = append(nodes, &Node{
			Role:     RoleWorker,
			Index:    i,
			Hostname: naming.Worker(prefix, i),
		})
	}
	return nodes
}

// Summary is returned by a successful Start.
type Summary struct {
	ClusterID  string
	Prefix     string
	FloatingIP string
	// Endpoints maps a service name to its address.
	Endpoints map[string]string
	Nodes     []*Node
}
