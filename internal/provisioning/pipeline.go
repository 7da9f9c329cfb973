package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Phase is one step of the creation pipeline. A phase with a non-empty
// Target moves the orchestrator to that state when it succeeds.
type Phase interface {
	Name() string
	Target() State
	Provision(ctx context.Context) error
}

type phaseFunc struct {
	name   string
	target State
	fn     func(ctx context.Context) error
}

func (p *phaseFunc) Name() string                        { return p.name }
func (p *phaseFunc) Target() State                       { return p.target }
func (p *phaseFunc) Provision(ctx context.Context) error { return p.fn(ctx) }

// newPhase creates a Phase from a function.
func newPhase(name string, target State, fn func(ctx context.Context) error) Phase {
	return &phaseFunc{name: name, target: target, fn: fn}
}

// runPhases executes phases in order. The first failure stops the pipeline
// and is returned as a *PipelineError.
func (o *Orchestrator) runPhases(ctx context.Context, phases []Phase) error {
	start := time.Now()
	o.observer.Printf("Starting provisioning of %s with %d phases...", o.cfg.Prefix, len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		o.observer.Printf("[%s] starting", name)
		LogPhaseStart(o.observer, phase.Name())

		err := phase.Provision(ctx)
		recordPhaseMetric(o.cfg.Prefix, phase.Name(), err, time.Since(phaseStart).Seconds())
		if err != nil {
			o.observer.Printf("[%s] failed: %v", name, err)
			LogPhaseFailed(o.observer, phase.Name(), err)
			return o.pipelineError(phase.Name(), err)
		}

		o.observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
		LogPhaseComplete(o.observer, phase.Name(), time.Since(phaseStart))

		if phase.Target() != "" {
			if err := o.transition(ctx, phase.Target()); err != nil {
				return err
			}
		}
	}

	o.observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func (o *Orchestrator) pipelineError(stage string, err error) *PipelineError {
	var pe *PipelineError
	if !errors.As(err, &pe) {
		pe = &PipelineError{Stage: stage, Err: err}
	}
	pe.State = o.states.state()
	pe.Nodes = failedNodes(pe.Err)
	return pe
}

// runStages runs the stages through the Runner, naming the failed stage.
func (o *Orchestrator) runStages(ctx context.Context, stages ...Stage) error {
	for _, stage := range stages {
		if err := o.runner.RunStage(ctx, stage); err != nil {
			return &PipelineError{Stage: stage.Name, Err: err}
		}
	}
	return nil
}
