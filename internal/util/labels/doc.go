// Package labels provides consistent labeling for cloud resources created
// for an inception cluster.
//
// Labels use the inception.io domain prefix and are built with a fluent
// builder carrying the cluster prefix, node role and cluster ID.
package labels
