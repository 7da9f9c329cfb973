// Package hcloud implements the cloud provisioner on the Hetzner Cloud API.
//
// # Mapping
//
// Cluster concepts map onto Hetzner resources as follows:
//
//   - instance: server, created from an image and server type (flavor)
//   - key name: SSH key registered in the project
//   - security group: firewall applied at server creation
//   - floating IP pool: home location of a floating IPv4
//
// Identifiers returned to callers are decimal server IDs.
//
// # Reliability
//
// Creates are retried with exponential backoff unless the API rejects the
// parameters. Deletes go through [DeleteOperation], which is idempotent and
// retries while the resource is locked. Timeouts and retry parameters come
// from [config.LoadTimeouts].
package hcloud
