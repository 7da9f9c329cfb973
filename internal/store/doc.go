// Package store persists cluster records in a local sqlite database.
//
// A Store implements provisioning.StatusRecorder, so the orchestrator writes
// the record as the cluster moves through its states. The list and show
// commands read it back.
package store
