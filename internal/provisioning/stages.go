package provisioning

import (
	"fmt"

	"github.com/imamik/inception/internal/platform"
)

// bootstrapStage installs and configures the configuration server. Its
// steps depend on each other and always run sequentially.
func (o *Orchestrator) bootstrapStage() Stage {
	cs := o.cluster.ConfigServer()
	return Stage{
		Name: "bootstrap config server",
		Batches: []Batch{{
			Name:       "config server setup",
			Sequential: true,
			Tasks: []Task{
				{
					Name:    "install chef-server",
					Target:  cs,
					Command: o.chef.InstallServer(),
					Options: platform.RunOptions{ScreenOutput: true},
				},
				{
					Name:    "configure knife",
					Target:  cs,
					Command: o.chef.ConfigureClient(),
				},
				{
					Name:    "fetch repository",
					Target:  cs,
					Command: o.chef.FetchRepository(o.cfg.ConfigRepoURL, o.cfg.ConfigRepoBranch, o.cluster.Environment),
				},
			},
		}},
	}
}

// checkInStage registers every node with the configuration server. The
// commands run on the configuration server and reach the nodes through the
// forwarded agent.
func (o *Orchestrator) checkInStage() Stage {
	cs := o.cluster.ConfigServer()
	batch := Batch{Name: "knife bootstrap"}
	for _, n := range o.cluster.Nodes {
		batch.Tasks = append(batch.Tasks, Task{
			Name:    "check in " + n.Hostname,
			Target:  cs,
			Command: o.chef.Bootstrap(n.IPAddress, n.Hostname, o.cluster.Environment, cs.IPAddress),
			Options: platform.RunOptions{AgentForwarding: true},
		})
	}
	return Stage{Name: "check in nodes", Batches: []Batch{batch}}
}

// recipeStage assigns item to the run-list of every node, then runs the
// configuration client on each of them.
func (o *Orchestrator) recipeStage(name, item string, nodes []*Node) Stage {
	cs := o.cluster.ConfigServer()
	assign := Batch{Name: name + ": run_list"}
	converge := Batch{Name: name + ": chef-client"}

	for _, n := range nodes {
		assign.Tasks = append(assign.Tasks, Task{
			Name:    fmt.Sprintf("add %s to %s", item, n.Hostname),
			Target:  cs,
			Command: o.chef.RunListAdd(n.Hostname, item),
		})
		converge.Tasks = append(converge.Tasks, Task{
			Name:    "chef-client",
			Target:  n,
			Command: o.chef.RunClient(),
			Options: platform.RunOptions{ScreenOutput: true},
		})
	}
	return Stage{Name: name, Batches: []Batch{assign, converge}}
}
