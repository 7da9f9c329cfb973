package testing

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/imamik/inception/internal/platform"
)

// FakeCloud is an in-memory CloudProvisioner. Instances get an address
// after AddressDelay GetInstance calls. The Fail* hooks inject errors.
type FakeCloud struct {
	mu          sync.Mutex
	nextID      int
	instances   map[string]*platform.Instance
	addresses   map[string]string
	gets        map[string]int
	floatingIPs map[string]*platform.FloatingIP
	calls       []string

	// AddressDelay is the number of GetInstance calls per instance that
	// report no address.
	AddressDelay int

	FailCreate           func(opts platform.CreateOpts) error
	FailGet              func(id string) error
	FailList             func() error
	FailDeleteInstance   func(inst *platform.Instance) error
	FailCreateFloatingIP func(pool string) error
	FailDeleteFloatingIP func(ip string) error
}

// NewFakeCloud returns an empty cloud.
func NewFakeCloud() *FakeCloud {
	return &FakeCloud{
		instances:   map[string]*platform.Instance{},
		addresses:   map[string]string{},
		gets:        map[string]int{},
		floatingIPs: map[string]*platform.FloatingIP{},
	}
}

// AddInstance registers an existing instance with an address.
func (f *FakeCloud) AddInstance(name, ip string) *platform.Instance {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst := f.newInstance(name, nil)
	inst.IPAddress = ip
	inst.Addresses["public"] = ip
	return inst
}

// AddFloatingIP registers an existing floating IP assigned to instanceID.
func (f *FakeCloud) AddFloatingIP(ip, instanceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.floatingIPs[ip] = &platform.FloatingIP{ID: ip, IP: ip, InstanceID: instanceID}
}

// CreateInstance implements provisioning.CloudProvisioner.
func (f *FakeCloud) CreateInstance(_ context.Context, opts platform.CreateOpts) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateInstance "+opts.Name)

	if f.FailCreate != nil {
		if err := f.FailCreate(opts); err != nil {
			return "", err
		}
	}
	inst := f.newInstance(opts.Name, opts.Labels)
	f.addresses[inst.ID] = fmt.Sprintf("10.0.0.%d", f.nextID)
	return inst.ID, nil
}

// GetInstance implements provisioning.CloudProvisioner.
func (f *FakeCloud) GetInstance(_ context.Context, id string) (*platform.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "GetInstance "+id)

	if f.FailGet != nil {
		if err := f.FailGet(id); err != nil {
			return nil, err
		}
	}
	inst, ok := f.instances[id]
	if !ok {
		return nil, fmt.Errorf("server not found: %s", id)
	}

	f.gets[id]++
	if addr, pending := f.addresses[id]; pending && f.gets[id] > f.AddressDelay {
		inst.IPAddress = addr
		inst.Addresses["public"] = addr
		inst.Status = "running"
		delete(f.addresses, id)
	}
	out := *inst
	return &out, nil
}

// ListInstances implements provisioning.CloudProvisioner.
func (f *FakeCloud) ListInstances(_ context.Context) ([]*platform.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListInstances")

	if f.FailList != nil {
		if err := f.FailList(); err != nil {
			return nil, err
		}
	}
	out := make([]*platform.Instance, 0, len(f.instances))
	for _, inst := range f.instances {
		c := *inst
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *platform.Instance) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// DeleteInstance implements provisioning.CloudProvisioner.
func (f *FakeCloud) DeleteInstance(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DeleteInstance "+id)

	inst, ok := f.instances[id]
	if !ok {
		return nil
	}
	if f.FailDeleteInstance != nil {
		if err := f.FailDeleteInstance(inst); err != nil {
			return err
		}
	}
	delete(f.instances, id)
	return nil
}

// CreateFloatingIP implements provisioning.CloudProvisioner.
func (f *FakeCloud) CreateFloatingIP(_ context.Context, pool string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "CreateFloatingIP")

	if f.FailCreateFloatingIP != nil {
		if err := f.FailCreateFloatingIP(pool); err != nil {
			return "", err
		}
	}
	ip := fmt.Sprintf("203.0.113.%d", len(f.floatingIPs)+1)
	f.floatingIPs[ip] = &platform.FloatingIP{ID: ip, IP: ip, Pool: pool}
	return ip, nil
}

// AssociateFloatingIP implements provisioning.CloudProvisioner.
func (f *FakeCloud) AssociateFloatingIP(_ context.Context, instanceID, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "AssociateFloatingIP "+ip)

	fip, ok := f.floatingIPs[ip]
	if !ok {
		return fmt.Errorf("floating IP not found: %s", ip)
	}
	inst, ok := f.instances[instanceID]
	if !ok {
		return fmt.Errorf("server not found: %s", instanceID)
	}
	fip.InstanceID = instanceID
	inst.Addresses["floating"] = ip
	return nil
}

// ListFloatingIPs implements provisioning.CloudProvisioner.
func (f *FakeCloud) ListFloatingIPs(_ context.Context) ([]*platform.FloatingIP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "ListFloatingIPs")

	out := make([]*platform.FloatingIP, 0, len(f.floatingIPs))
	for _, fip := range f.floatingIPs {
		c := *fip
		out = append(out, &c)
	}
	slices.SortFunc(out, func(a, b *platform.FloatingIP) int { return strings.Compare(a.IP, b.IP) })
	return out, nil
}

// DeleteFloatingIP implements provisioning.CloudProvisioner.
func (f *FakeCloud) DeleteFloatingIP(_ context.Context, ip string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "DeleteFloatingIP "+ip)

	if f.FailDeleteFloatingIP != nil {
		if err := f.FailDeleteFloatingIP(ip); err != nil {
			return err
		}
	}
	delete(f.floatingIPs, ip)
	return nil
}

// InstanceNames returns the names of all live instances, sorted.
func (f *FakeCloud) InstanceNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.instances))
	for _, inst := range f.instances {
		names = append(names, inst.Name)
	}
	slices.Sort(names)
	return names
}

// FloatingIPs returns the addresses of all live floating IPs, sorted.
func (f *FakeCloud) FloatingIPs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ips := make([]string, 0, len(f.floatingIPs))
	for ip := range f.floatingIPs {
		ips = append(ips, ip)
	}
	slices.Sort(ips)
	return ips
}

// Calls returns every recorded call, in order.
func (f *FakeCloud) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many calls start with method.
func (f *FakeCloud) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method || strings.HasPrefix(c, method+" ") {
			n++
		}
	}
	return n
}

func (f *FakeCloud) newInstance(name string, labels map[string]string) *platform.Instance {
	f.nextID++
	inst := &platform.Instance{
		ID:        strconv.Itoa(f.nextID),
		Name:      name,
		Status:    "initializing",
		Addresses: map[string]string{},
		Labels:    labels,
	}
	f.instances[inst.ID] = inst
	return inst
}

// ExecCall is one command seen by FakeExecutor.
type ExecCall struct {
	Host    string
	Command string
	Options platform.RunOptions
}

// FakeExecutor is a RemoteExecutor that records commands and answers them
// through optional handlers. Commands succeed when no handler is set.
type FakeExecutor struct {
	mu    sync.Mutex
	calls []ExecCall
	local []string

	Handler      func(target platform.Target, command string) error
	LocalHandler func(command string) error
}

// NewFakeExecutor returns an executor on which every command succeeds.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{}
}

// Run implements provisioning.RemoteExecutor.
func (f *FakeExecutor) Run(ctx context.Context, target platform.Target, command string, opts platform.RunOptions) (platform.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ExecCall{Host: target.Host, Command: command, Options: opts})
	handler := f.Handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return platform.Output{}, err
	}
	if handler != nil {
		if err := handler(target, command); err != nil {
			return platform.Output{}, err
		}
	}
	return platform.Output{}, nil
}

// RunLocal implements provisioning.RemoteExecutor.
func (f *FakeExecutor) RunLocal(_ context.Context, command string, _ platform.RunOptions) (platform.Output, error) {
	f.mu.Lock()
	f.local = append(f.local, command)
	handler := f.LocalHandler
	f.mu.Unlock()

	if handler != nil {
		if err := handler(command); err != nil {
			return platform.Output{}, err
		}
	}
	return platform.Output{}, nil
}

// Calls returns every remote command, in order.
func (f *FakeExecutor) Calls() []ExecCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Matching returns the remote commands containing substr.
func (f *FakeExecutor) Matching(substr string) []ExecCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ExecCall
	for _, c := range f.calls {
		if strings.Contains(c.Command, substr) {
			out = append(out, c)
		}
	}
	return out
}

// LocalCommands returns every local command, in order.
func (f *FakeExecutor) LocalCommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.local)
}
