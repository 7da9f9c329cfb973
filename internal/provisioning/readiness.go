package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/inception/internal/platform"
)

// ProbeStatus classifies a readiness probe.
type ProbeStatus int

// Probe outcomes. Only ProbeFatal ends the readiness wait early.
const (
	ProbeNotReady ProbeStatus = iota
	ProbeReady
	ProbeFatal
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeReady:
		return "ready"
	case ProbeFatal:
		return "fatal"
	default:
		return "not_ready"
	}
}

// ProbeResult is the outcome of probing one node.
type ProbeResult struct {
	Status ProbeStatus
	// Reason explains a NotReady result.
	Reason string
	// Err is set for Fatal results.
	Err error
	// IPAddress is the address the node was probed on.
	IPAddress string
	// Hostname is the instance name reported by the cloud.
	Hostname string
}

// PollerOptions configures a ReadinessPoller.
type PollerOptions struct {
	User     string
	Marker   string
	Timeout  time.Duration
	Interval time.Duration
	Observer Observer

	// Now and Sleep replace the wall clock in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// ReadinessPoller waits until every node has an address and has finished
// booting.
type ReadinessPoller struct {
	cloud CloudProvisioner
	exec  RemoteExecutor
	opts  PollerOptions
}

// NewReadinessPoller creates a poller probing through cloud and exec.
func NewReadinessPoller(cloud CloudProvisioner, exec RemoteExecutor, opts PollerOptions) *ReadinessPoller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Observer == nil {
		opts.Observer = NewLogrObserver(discard)
	}
	return &ReadinessPoller{cloud: cloud, exec: exec, opts: opts}
}

// Wait probes all nodes each iteration until every probe reports Ready, a
// probe is Fatal, or the timeout elapses. On success every node's address
// and hostname are filled in and Ready is set.
func (p *ReadinessPoller) Wait(ctx context.Context, nodes []*Node) error {
	start := p.opts.Now()
	var pending []string

	for attempt := 1; p.opts.Now().Sub(start) < p.opts.Timeout; attempt++ {
		results := make([]ProbeResult, len(nodes))
		pending = pending[:0]

		for i, node := range nodes {
			res := p.Probe(ctx, node)
			recordReadinessProbeMetric(res.Status)

			switch res.Status {
			case ProbeFatal:
				return fmt.Errorf("readiness probe of %s: %w", node.Hostname, res.Err)
			case ProbeNotReady:
				pending = append(pending, node.Hostname)
			}
			results[i] = res
		}

		if len(pending) == 0 {
			for i, node := range nodes {
				node.IPAddress = results[i].IPAddress
				if results[i].Hostname != "" {
					node.Hostname = results[i].Hostname
				}
				node.Ready = true
				p.opts.Observer.Event(Event{
					Type:     EventNodeReady,
					Resource: node.Hostname,
					Message:  "ready",
					Fields:   map[string]string{"ip": node.IPAddress},
				})
			}
			return nil
		}

		p.opts.Observer.Progress("readiness", len(nodes)-len(pending), len(nodes))
		p.opts.Observer.Printf("[Readiness] Attempt %d: waiting for %d nodes", attempt, len(pending))

		if err := p.opts.Sleep(ctx, p.opts.Interval); err != nil {
			return err
		}
	}

	if pending == nil {
		for _, node := range nodes {
			pending = append(pending, node.Hostname)
		}
	}
	return &ReadinessTimeoutError{Pending: pending, Timeout: p.opts.Timeout}
}

// Probe checks one node: the instance must have an address and the ready
// marker must exist on it.
func (p *ReadinessPoller) Probe(ctx context.Context, node *Node) ProbeResult {
	inst, err := p.cloud.GetInstance(ctx, node.InstanceID)
	if err != nil {
		return ProbeResult{Status: ProbeFatal, Err: err}
	}
	if inst.IPAddress == "" {
		return ProbeResult{Status: ProbeNotReady, Reason: "no address assigned"}
	}

	target := platform.Target{Host: inst.IPAddress, User: p.opts.User}
	_, err = p.exec.Run(ctx, target, "test -f "+p.opts.Marker, platform.RunOptions{
		Silent:        true,
		SingleAttempt: true,
	})

	res := ProbeResult{IPAddress: inst.IPAddress, Hostname: inst.Name}
	var connErr *platform.ConnectionFailure
	var exitErr *platform.NonZeroExit
	switch {
	case err == nil:
		res.Status = ProbeReady
	case errors.As(err, &connErr):
		res.Status = ProbeNotReady
		res.Reason = connErr.Reason
	case errors.As(err, &exitErr):
		res.Status = ProbeNotReady
		res.Reason = "boot not finished"
	default:
		res.Status = ProbeFatal
		res.Err = err
	}
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
