// Package naming provides the node naming scheme for a nested cluster.
//
// Every instance of a cluster is named {prefix}-{role}[{index}], where the
// separator is reserved and never appears inside the prefix. Hostnames
// parse back into (prefix, role) by splitting on the first separator, which
// is how teardown rediscovers a cluster without any local state.
package naming
