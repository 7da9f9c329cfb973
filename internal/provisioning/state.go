package provisioning

import (
	"fmt"
	"slices"
	"sync"
)

// State is a step of the orchestration pipeline.
type State string

// Pipeline states.
const (
	StateCreated                  State = "Created"
	StateServersLaunching         State = "ServersLaunching"
	StateServersReady             State = "ServersReady"
	StateConfigServerBootstrapped State = "ConfigServerBootstrapped"
	StateNodesCheckedIn           State = "NodesCheckedIn"
	StateNetworkDeployed          State = "NetworkDeployed"
	StateControllerConfigured     State = "ControllerConfigured"
	StateWorkersConfigured        State = "WorkersConfigured"
	StateActive                   State = "Active"
	StateError                    State = "Error"
	StateRollingBack              State = "RollingBack"
	StateDeleted                  State = "Deleted"
)

var pipelineStates = []State{
	StateCreated,
	StateServersLaunching,
	StateServersReady,
	StateConfigServerBootstrapped,
	StateNodesCheckedIn,
	StateNetworkDeployed,
	StateControllerConfigured,
	StateWorkersConfigured,
	StateActive,
}

// Status maps the state to the coarse cluster status.
func (s State) Status() Status {
	switch s {
	case StateActive:
		return StatusActive
	case StateError:
		return StatusError
	case StateRollingBack, StateDeleted:
		return StatusDeleting
	default:
		return StatusBuilding
	}
}

// CanTransition reports whether the pipeline may move from one state to
// another. Pipeline states advance one step at a time; any state before
// Active may fail into Error, and only Error may roll back.
func CanTransition(from, to State) bool {
	switch to {
	case StateError:
		return from != StateActive && slices.Contains(pipelineStates, from)
	case StateRollingBack:
		return from == StateError
	case StateDeleted:
		return from == StateRollingBack
	}

	i := slices.Index(pipelineStates, from)
	return i >= 0 && i+1 < len(pipelineStates) && pipelineStates[i+1] == to
}

// stateMachine tracks the current state and every state visited.
type stateMachine struct {
	mu      sync.Mutex
	current State
	history []State
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateCreated, history: []State{StateCreated}}
}

func (m *stateMachine) transition(to State) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current
	if !CanTransition(from, to) {
		return from, fmt.Errorf("invalid state transition %s -> %s", from, to)
	}
	m.current = to
	m.history = append(m.history, to)
	return from, nil
}

func (m *stateMachine) state() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *stateMachine) visited() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.history)
}
