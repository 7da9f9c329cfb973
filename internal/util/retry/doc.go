// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. Errors wrapped with [Fatal], or rejected
// by a [WithRetryIf] predicate, stop the loop immediately. It is used for
// Hetzner Cloud API calls and for SSH dials against freshly booted hosts.
package retry
