package store

import (
	"time"

	"github.com/imamik/inception/internal/provisioning"
)

// NodeRecord is the persisted form of a provisioning.Node.
type NodeRecord struct {
	Role       string `json:"role"`
	Index      int    `json:"index"`
	InstanceID string `json:"instance_id"`
	IPAddress  string `json:"ip_address"`
	Hostname   string `json:"hostname"`
	Ready      bool   `json:"ready"`
}

// ClusterRecord is one row of the clusters table.
type ClusterRecord struct {
	ID             string `gorm:"primaryKey"`
	Prefix         string `gorm:"uniqueIndex;not null"`
	NumWorkers     int
	NumControllers int
	RepoURL        string `gorm:"column:repo_url"`
	RepoBranch     string
	Environment    string
	Status         string `gorm:"index"`
	State          string
	FloatingIP     string       `gorm:"column:floating_ip"`
	GatewayID      string       `gorm:"column:gateway_id"`
	ConfigServerID string       `gorm:"column:config_server_id"`
	ConfigServerIP string       `gorm:"column:config_server_ip"`
	WorkerIDs      []string     `gorm:"column:worker_ids;serializer:json"`
	Nodes          []NodeRecord `gorm:"serializer:json"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the gorm default.
func (ClusterRecord) TableName() string {
	return "clusters"
}

func newRecord(c *provisioning.Cluster) *ClusterRecord {
	rec := &ClusterRecord{
		ID:             c.ID,
		Prefix:         c.Prefix,
		NumWorkers:     c.NumWorkers,
		NumControllers: c.NumControllers,
		RepoURL:        c.RepoURL,
		RepoBranch:     c.RepoBranch,
		Environment:    c.Environment,
		Status:         string(c.Status),
		State:          string(c.State),
		FloatingIP:     c.FloatingIP,
		WorkerIDs:      []string{},
		Nodes:          make([]NodeRecord, 0, len(c.Nodes)),
	}
	if gw := c.Gateway(); gw != nil {
		rec.GatewayID = gw.InstanceID
	}
	if cs := c.ConfigServer(); cs != nil {
		rec.ConfigServerID = cs.InstanceID
		rec.ConfigServerIP = cs.IPAddress
	}
	for _, w := range c.Workers() {
		if w.InstanceID != "" {
			rec.WorkerIDs = append(rec.WorkerIDs, w.InstanceID)
		}
	}
	for _, n := range c.Nodes {
		rec.Nodes = append(rec.Nodes, NodeRecord{
			Role:       string(n.Role),
			Index:      n.Index,
			InstanceID: n.InstanceID,
			IPAddress:  n.IPAddress,
			Hostname:   n.Hostname,
			Ready:      n.Ready,
		})
	}
	return rec
}

// Cluster converts the record back into the orchestrator's model.
func (r *ClusterRecord) Cluster() *provisioning.Cluster {
	c := &provisioning.Cluster{
		ID:             r.ID,
		Prefix:         r.Prefix,
		NumWorkers:     r.NumWorkers,
		NumControllers: r.NumControllers,
		RepoURL:        r.RepoURL,
		RepoBranch:     r.RepoBranch,
		Environment:    r.Environment,
		Status:         provisioning.Status(r.Status),
		State:          provisioning.State(r.State),
		FloatingIP:     r.FloatingIP,
		Nodes:          make([]*provisioning.Node, 0, len(r.Nodes)),
	}
	for _, n := range r.Nodes {
		c.Nodes = append(c.Nodes, &provisioning.Node{
			Role:       provisioning.Role(n.Role),
			Index:      n.Index,
			InstanceID: n.InstanceID,
			IPAddress:  n.IPAddress,
			Hostname:   n.Hostname,
			Ready:      n.Ready,
		})
	}
	return c
}
