package hcloud

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/inception/internal/util/retry"
)

// DeleteOperation encapsulates deletion logic for any hcloud resource.
// It provides consistent retry, timeout, and error handling across resource types.
//
// Usage example:
//
//	return (&DeleteOperation[*hcloud.Server]{
//	    Name:         id,
//	    ResourceType: "server",
//	    Lookup:       func(ctx context.Context) (*hcloud.Server, error) { ... },
//	    Delete:       func(ctx context.Context, s *hcloud.Server) error { ... },
//	}).Execute(ctx, p)
type DeleteOperation[T any] struct {
	Name         string
	ResourceType string

	// Lookup retrieves the resource, returning nil when it does not exist
	Lookup func(ctx context.Context) (T, error)

	// Delete removes the resource
	Delete func(ctx context.Context, resource T) error
}

// Execute performs the delete operation with retry logic and timeout handling.
// The operation is idempotent: it succeeds if the resource doesn't exist.
// Locked resources are retried with exponential backoff.
func (op *DeleteOperation[T]) Execute(ctx context.Context, p *Provisioner) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeouts.Delete)
	defer cancel()

	return retry.Do(ctx, func() error {
		resource, err := op.Lookup(ctx)
		if err != nil {
			return retry.Fatal(fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err))
		}

		if isNil(resource) {
			return nil
		}

		if err := op.Delete(ctx, resource); err != nil {
			if isResourceLocked(err) {
				return err
			}
			if IsNotFound(err) {
				return nil
			}
			return retry.Fatal(fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err))
		}
		return nil
	},
		retry.WithMaxRetries(p.timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(p.timeouts.RetryInitialDelay))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// waitForActions waits for one or more actions to complete.
func waitForActions(ctx context.Context, client *hcloud.Client, actions ...*hcloud.Action) error {
	var pending []*hcloud.Action
	for _, a := range actions {
		if a != nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	return client.Action.WaitFor(ctx, pending...)
}
