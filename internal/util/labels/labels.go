package labels

import "maps"

// Standard label keys for Hetzner Cloud resources.
const (
	// KeyCluster identifies which cluster prefix a resource belongs to
	KeyCluster = "inception.io/cluster"

	// KeyClusterID carries the cluster record UUID
	KeyClusterID = "inception.io/cluster-id"

	// KeyRole identifies the role of a node (gateway, chefserver, controller, worker)
	KeyRole = "inception.io/role"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "inception.io/managed-by"
)

// ManagedByInception is the managed-by value for every resource this tool creates.
const ManagedByInception = "inception"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the cluster prefix pre-set.
func NewLabelBuilder(prefix string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   prefix,
			KeyManagedBy: ManagedByInception,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	if role != "" {
		lb.labels[KeyRole] = role
	}
	return lb
}

// WithClusterID adds the cluster ID label when id is non-empty.
func (lb *LabelBuilder) WithClusterID(id string) *LabelBuilder {
	if id != "" {
		lb.labels[KeyClusterID] = id
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	maps.Copy(lb.labels, extra)
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	return maps.Clone(lb.labels)
}

// SelectorForCluster returns a label selector string for all resources of a cluster prefix.
func SelectorForCluster(prefix string) string {
	return KeyCluster + "=" + prefix
}
