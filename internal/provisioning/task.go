package provisioning

import "github.com/imamik/inception/internal/platform"

// Task is one remote command run against a node.
type Task struct {
	Name    string
	Target  *Node
	Command string
	Options platform.RunOptions
}

// Batch is a group of independent tasks sharing one concurrency policy.
// Sequential batches always run one task at a time regardless of the
// runner's parallel setting.
type Batch struct {
	Name       string
	Tasks      []Task
	Sequential bool
}

// Stage is an ordered list of batches. Each batch starts only after the
// previous one completed.
type Stage struct {
	Name    string
	Batches []Batch
}
