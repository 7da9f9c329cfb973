package provisioning

import (
	"fmt"
	"sync"

	"github.com/imamik/inception/internal/platform"
)

// recordingObserver records events and messages. WithFields returns the
// same recorder so events from derived observers are kept together.
type recordingObserver struct {
	mu       sync.Mutex
	events   []Event
	messages []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{}
}

func (r *recordingObserver) Printf(format string, v ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf(format, v...))
}

func (r *recordingObserver) Event(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) Progress(phase string, current, total int) {
	r.Event(Event{
		Type:    EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

func (r *recordingObserver) WithFields(map[string]string) Observer {
	return r
}

func (r *recordingObserver) eventsOf(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// batches returns the started batch names in order.
func (r *recordingObserver) batches() []string {
	var names []string
	for _, e := range r.eventsOf(EventBatchStarted) {
		names = append(names, e.Resource)
	}
	return names
}

func readyNode(hostname, ip string) *Node {
	return &Node{Role: RoleWorker, Hostname: hostname, IPAddress: ip, Ready: true}
}

func nonZero(host, command string) error {
	return &platform.NonZeroExit{Host: host, Command: command, ExitStatus: 1}
}
