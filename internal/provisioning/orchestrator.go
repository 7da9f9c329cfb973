package provisioning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imamik/inception/internal/chef"
	"github.com/imamik/inception/internal/config"
	"github.com/imamik/inception/internal/platform"
	"github.com/imamik/inception/internal/userdata"
	"github.com/imamik/inception/internal/util/async"
	"github.com/imamik/inception/internal/util/labels"
	"github.com/imamik/inception/internal/util/naming"
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the observer receiving pipeline events.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

// WithRecorder persists the cluster on every state transition.
func WithRecorder(r StatusRecorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithClock replaces the readiness poller's clock and sleep.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.sleep = sleep
	}
}

// WithUserDataScript sets the first-boot script embedded in every node's
// cloud-config.
func WithUserDataScript(script string) Option {
	return func(o *Orchestrator) {
		o.script = script
	}
}

// WithClusterID overrides the generated cluster ID.
func WithClusterID(id string) Option {
	return func(o *Orchestrator) {
		o.clusterID = id
	}
}

// WithFloatingIP records a gateway floating IP allocated by an earlier run,
// so Cleanup releases it even when it is no longer associated.
func WithFloatingIP(ip string) Option {
	return func(o *Orchestrator) {
		o.floatingIP = ip
	}
}

// Orchestrator creates and destroys one cluster.
type Orchestrator struct {
	cfg        *config.Config
	cloud      CloudProvisioner
	exec       RemoteExecutor
	observer   Observer
	recorder   StatusRecorder
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	script     string
	clusterID  string
	floatingIP string

	chef     *chef.Commands
	runner   *Runner
	poller   *ReadinessPoller
	rollback *RollbackManager

	states  *stateMachine
	cluster *Cluster
	cleanup *CleanupReport
}

// New creates an Orchestrator for cfg. The config is used as given; call
// cfg.ApplyDefaults first when it was not produced by config.Parse.
func New(cfg *config.Config, cloud CloudProvisioner, exec RemoteExecutor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		cloud:    cloud,
		exec:     exec,
		observer: NewLogrObserver(discard),
		now:      time.Now,
		sleep:    sleepContext,
		states:   newStateMachine(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.clusterID == "" {
		o.clusterID = uuid.NewString()
	}
	o.observer = o.observer.WithFields(map[string]string{"cluster": cfg.Prefix})

	o.cluster = &Cluster{
		ID:             o.clusterID,
		Prefix:         cfg.Prefix,
		NumWorkers:     cfg.NumWorkers,
		NumControllers: cfg.NumControllers,
		RepoURL:        cfg.ConfigRepoURL,
		RepoBranch:     cfg.ConfigRepoBranch,
		Environment:    cfg.Prefix,
		Status:         StatusBuilding,
		State:          StateCreated,
		FloatingIP:     o.floatingIP,
	}

	o.chef = chef.New(naming.ConfigServer(cfg.Prefix), cfg.User, uuid.NewString())
	o.chef.StrictHostKeys = cfg.StrictHostKeys

	o.runner = NewRunner(exec, RunnerOptions{
		User:           cfg.User,
		Parallel:       cfg.ParallelEnabled(),
		MaxParallel:    cfg.MaxParallel,
		CommandTimeout: cfg.CommandTimeoutDuration(),
		Observer:       o.observer,
	})
	o.poller = NewReadinessPoller(cloud, exec, PollerOptions{
		User:     cfg.User,
		Marker:   cfg.ReadyMarker,
		Timeout:  cfg.TimeoutDuration(),
		Interval: cfg.PollIntervalDuration(),
		Observer: o.observer,
		Now:      o.now,
		Sleep:    o.sleep,
	})
	o.rollback = NewRollbackManager(cloud, exec, o.observer)
	o.rollback.PruneHostKeys = cfg.StrictHostKeys

	return o
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	return o.states.state()
}

// History returns every state visited, in order.
func (o *Orchestrator) History() []State {
	return o.states.visited()
}

// Cluster returns a snapshot of the cluster.
func (o *Orchestrator) Cluster() *Cluster {
	return o.cluster.Clone()
}

// Start creates and configures the cluster. Validation failures are
// returned before any resource exists. Later failures are returned as a
// *PipelineError; with atomic runs the cluster is torn down first and the
// teardown outcome is attached as Rollback.
func (o *Orchestrator) Start(ctx context.Context) (*Summary, error) {
	if s := o.states.state(); s != StateCreated {
		return nil, fmt.Errorf("cluster %s already started (state %s)", o.cfg.Prefix, s)
	}
	if err := o.validate(ctx); err != nil {
		return nil, err
	}

	if err := o.transition(ctx, StateServersLaunching); err != nil {
		return nil, err
	}
	if err := o.runPhases(ctx, o.phases()); err != nil {
		var pe *PipelineError
		if !errors.As(err, &pe) {
			pe = o.pipelineError("pipeline", err)
		}
		return nil, o.fail(ctx, pe)
	}
	if err := o.transition(ctx, StateActive); err != nil {
		return nil, err
	}

	o.observer.Printf("Cluster %s is active, gateway floating IP %s", o.cfg.Prefix, o.cluster.FloatingIP)
	return o.summary(), nil
}

// Cleanup tears down every resource named after the cluster prefix. It
// does not depend on a prior Start.
func (o *Orchestrator) Cleanup(ctx context.Context) (*CleanupReport, error) {
	if o.cfg.Prefix == "" || strings.Contains(o.cfg.Prefix, naming.Separator) {
		return nil, &ValidationError{
			Field:    "prefix",
			Message:  fmt.Sprintf("cannot clean up invalid prefix %q", o.cfg.Prefix),
			Severity: config.SeverityError,
		}
	}

	report := o.rollback.Cleanup(ctx, o.cfg.Prefix, o.cluster.FloatingIP)
	return report, report.Err()
}

func (o *Orchestrator) phases() []Phase {
	return []Phase{
		newPhase("create servers", "", o.createServers),
		newPhase("wait for servers", StateServersReady, func(ctx context.Context) error {
			return o.poller.Wait(ctx, o.cluster.Nodes)
		}),
		newPhase("assign floating IP", "", o.assignFloatingIP),
		newPhase("bootstrap config server", StateConfigServerBootstrapped, func(ctx context.Context) error {
			return o.runStages(ctx, o.bootstrapStage())
		}),
		newPhase("check in nodes", StateNodesCheckedIn, func(ctx context.Context) error {
			return o.runStages(ctx, o.checkInStage())
		}),
		newPhase("deploy network overlay", "", func(ctx context.Context) error {
			return o.runStages(ctx, o.recipeStage("deploy network overlay", o.cfg.Recipes.Network, o.cluster.Nodes))
		}),
		newPhase("deploy name resolution", StateNetworkDeployed, func(ctx context.Context) error {
			return o.runStages(ctx, o.recipeStage("deploy name resolution", o.cfg.Recipes.DNS, o.cluster.Nodes))
		}),
		newPhase("configure controllers", StateControllerConfigured, func(ctx context.Context) error {
			return o.runStages(ctx, o.recipeStage("configure controllers", o.cfg.Recipes.Controller, o.cluster.Controllers()))
		}),
		newPhase("configure workers", StateWorkersConfigured, func(ctx context.Context) error {
			return o.runStages(ctx, o.recipeStage("configure workers", o.cfg.Recipes.Worker, o.cluster.Workers()))
		}),
	}
}

// validate checks the configuration and that no instance already uses the
// prefix. It must not create anything.
func (o *Orchestrator) validate(ctx context.Context) error {
	for _, w := range o.cfg.Warnings() {
		o.observer.Printf("[Validation] WARNING: %s: %s", w.Field, w.Message)
		o.observer.Event(Event{Type: EventValidationWarning, Resource: w.Field, Message: w.Message})
	}

	if err := o.cfg.Validate(); err != nil {
		o.observer.Event(Event{Type: EventValidationError, Message: err.Error()})
		return err
	}

	instances, err := o.cloud.ListInstances(ctx)
	if err != nil {
		return &ProvisioningError{Op: "list", Resource: "instances", Err: err}
	}
	var existing []string
	for _, inst := range instances {
		if naming.BelongsTo(inst.Name, o.cfg.Prefix) {
			existing = append(existing, inst.Name)
		}
	}
	if len(existing) > 0 {
		ve := &ValidationError{
			Field:    "prefix",
			Message:  fmt.Sprintf("instances named %q* already exist: %s", naming.ClusterPrefix(o.cfg.Prefix), strings.Join(existing, ", ")),
			Severity: config.SeverityError,
		}
		o.observer.Event(Event{Type: EventValidationError, Resource: ve.Field, Message: ve.Message})
		return ve
	}
	return nil
}

// createServers creates every planned node. Nodes whose creation returned
// an ID join the cluster even when others failed, so a rollback finds them.
func (o *Orchestrator) createServers(ctx context.Context) error {
	planned := PlanNodes(o.cfg.Prefix, o.cfg.NumControllers, o.cfg.NumWorkers)

	tasks := make([]async.Task, len(planned))
	for i, node := range planned {
		tasks[i] = async.Task{
			Name: node.Hostname,
			Func: func(ctx context.Context) error { return o.createServer(ctx, node) },
		}
	}

	var err error
	if o.cfg.ParallelEnabled() {
		err = async.RunParallel(ctx, tasks, o.cfg.MaxParallel)
	} else {
		for _, task := range tasks {
			if err = task.Func(ctx); err != nil {
				break
			}
		}
	}

	for _, node := range planned {
		if node.InstanceID != "" {
			o.cluster.Nodes = append(o.cluster.Nodes, node)
		}
	}
	recordNodeCountsMetric(o.cfg.Prefix, o.cluster.Nodes)
	o.save(ctx)
	return err
}

func (o *Orchestrator) createServer(ctx context.Context, node *Node) error {
	payload, err := userdata.Render(userdata.Params{
		Hostname: node.Hostname,
		Prefix:   o.cfg.Prefix,
		Role:     string(node.Role),
		Script:   o.script,
	})
	if err != nil {
		return &ProvisioningError{Op: "render user data for", Resource: node.Hostname, Err: err}
	}

	image := o.cfg.Image
	if node.Role == RoleConfigServer {
		image = o.cfg.ServerImage()
	}

	LogResourceCreating(o.observer, "servers", "instance", node.Hostname)
	id, err := o.cloud.CreateInstance(ctx, platform.CreateOpts{
		Name:           node.Hostname,
		Image:          image,
		Flavor:         o.cfg.NodeFlavor(node.Role == RoleGateway),
		KeyName:        o.cfg.KeyName,
		SecurityGroups: o.cfg.SecurityGroups,
		UserData:       payload,
		Location:       o.cfg.Location,
		Labels: labels.NewLabelBuilder(o.cfg.Prefix).
			WithRole(string(node.Role)).
			WithClusterID(o.cluster.ID).
			Build(),
	})
	if err != nil {
		LogResourceFailed(o.observer, "servers", "instance", node.Hostname, err)
		return &ProvisioningError{Op: "create", Resource: "instance " + node.Hostname, Err: err}
	}

	node.InstanceID = id
	LogResourceCreated(o.observer, "servers", "instance", node.Hostname, id)
	return nil
}

func (o *Orchestrator) assignFloatingIP(ctx context.Context) error {
	gateway := o.cluster.Gateway()
	if gateway == nil {
		return &ProvisioningError{Op: "assign", Resource: "floating IP", Err: errors.New("no gateway node")}
	}

	LogResourceCreating(o.observer, "floating-ip", "floating_ip", o.cfg.FloatingIPPool)
	ip, err := o.cloud.CreateFloatingIP(ctx, o.cfg.FloatingIPPool)
	if err != nil {
		return &ProvisioningError{Op: "create", Resource: "floating IP", Err: err}
	}
	o.cluster.FloatingIP = ip
	o.save(ctx)
	LogResourceCreated(o.observer, "floating-ip", "floating_ip", ip, ip)

	if err := o.cloud.AssociateFloatingIP(ctx, gateway.InstanceID, ip); err != nil {
		return &ProvisioningError{Op: "associate", Resource: "floating IP " + ip, Err: err}
	}
	o.observer.Printf("[Floating IP] %s assigned to %s", ip, gateway.Hostname)
	return nil
}

// fail moves the cluster to Error and, for atomic runs, rolls it back.
func (o *Orchestrator) fail(ctx context.Context, pe *PipelineError) error {
	if err := o.transition(ctx, StateError); err != nil {
		o.observer.Printf("[State] Warning: %v", err)
	}

	if !o.cfg.Atomic {
		o.observer.Printf("Cluster %s left in place for inspection, run destroy to remove it", o.cfg.Prefix)
		return pe
	}

	// Roll back even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := o.transition(ctx, StateRollingBack); err != nil {
		o.observer.Printf("[State] Warning: %v", err)
	}

	o.cleanup = o.rollback.Cleanup(ctx, o.cfg.Prefix, o.cluster.FloatingIP)
	pe.Rollback = o.cleanup
	if err := o.cleanup.Err(); err != nil {
		o.observer.Printf("[Cleanup] Rollback incomplete: %v", err)
	}

	if err := o.transition(ctx, StateDeleted); err != nil {
		o.observer.Printf("[State] Warning: %v", err)
	}
	return pe
}

func (o *Orchestrator) transition(ctx context.Context, to State) error {
	from, err := o.states.transition(to)
	if err != nil {
		return err
	}
	o.cluster.State = to
	o.cluster.Status = to.Status()

	LogStateChanged(o.observer, from, to)
	recordStateTransitionMetric(o.cfg.Prefix, to)

	if to == StateDeleted && o.cleanup.Err() == nil {
		o.remove(ctx)
		return nil
	}
	if to == StateDeleted {
		// Resources are left behind, keep the record for a later destroy.
		o.cluster.Status = StatusError
	}
	o.save(ctx)
	return nil
}

func (o *Orchestrator) save(ctx context.Context) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Save(ctx, o.cluster.Clone()); err != nil {
		o.observer.Printf("[State] Warning: failed to record cluster %s: %v", o.cfg.Prefix, err)
	}
}

func (o *Orchestrator) remove(ctx context.Context) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Remove(ctx, o.cfg.Prefix); err != nil {
		o.observer.Printf("[State] Warning: failed to remove cluster record %s: %v", o.cfg.Prefix, err)
	}
}

func (o *Orchestrator) summary() *Summary {
	snapshot := o.cluster.Clone()
	endpoints := map[string]string{
		"gateway": snapshot.FloatingIP,
	}
	if cs := snapshot.ConfigServer(); cs != nil {
		endpoints["chefserver"] = "https://" + cs.IPAddress
	}
	for _, c := range snapshot.Controllers() {
		endpoints[c.Hostname] = c.IPAddress
	}

	return &Summary{
		ClusterID:  snapshot.ID,
		Prefix:     snapshot.Prefix,
		FloatingIP: snapshot.FloatingIP,
		Endpoints:  endpoints,
		Nodes:      snapshot.Nodes,
	}
}
