// Package config defines the configuration model for an inception run.
//
// A [Config] is loaded from YAML with [LoadFile], completed with
// [Config.ApplyDefaults] and checked with [Config.Validate] before any
// cloud resource is touched. Operational timeouts and retry parameters for
// the cloud adapter are read from the environment by [LoadTimeouts].
package config
