// Package async provides a bounded worker pool for running independent
// operations concurrently with full error collection.
//
// [RunPool] feeds tasks to a fixed number of workers through a work queue
// and returns one [Result] per task, so callers can report every failure
// instead of only the first. [RunParallel] is the errors.Join convenience
// wrapper used by the cloud adapters.
package async
