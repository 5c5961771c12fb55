// Package registry maintains the authoritative table of live agents for one
// runtime. A Registry is an explicitly constructed instance passed to every
// component that needs it (never a process-wide singleton), enforcing global
// name uniqueness on registration and cascading subtree removal on
// unregistration.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/XinyueZ/tinyagent/core"
	"github.com/XinyueZ/tinyagent/logging"
)

// ErrNameCollision is returned by Register when an agent with the same name
// is already present anywhere in the registry, independent of tree position.
var ErrNameCollision = errors.New("agent name already registered")

// Registry is the single table of live agents. All operations are serialized
// by one mutex so readers never observe a half-updated tree during a subtree
// removal.
type Registry struct {
	mu     sync.Mutex
	agents map[string]core.Agent // keyed by agent id
	logger logging.Logger
}

// New creates an empty registry. A nil logger disables logging.
func New(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{
		agents: make(map[string]core.Agent),
		logger: logger,
	}
}

// Register inserts the agent keyed by its id. Names are unique across the
// whole registry: when any live agent already carries the same name the call
// fails with an error wrapping ErrNameCollision and the existing agent is
// left untouched.
func (r *Registry) Register(a core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.agents {
		if existing.Name() == a.Name() {
			return fmt.Errorf(
				"%w: %q (agent_id: %s)", ErrNameCollision, a.Name(), existing.ID(),
			)
		}
	}

	r.agents[a.ID()] = a
	r.logger.Debug("registry.register", "agent", a.Name(), "agent_id", a.ID())

	return nil
}

// GetByName returns the agent with the given name. Uniqueness makes the
// linear scan deterministic in steady state.
func (r *Registry) GetByName(name string) (core.Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.agents {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Unregister removes the agent with the given id together with its entire
// descendant subtree. Removal is depth-first post-order: every child is fully
// removed (recursively) before its parent. Unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(id)
}

func (r *Registry) unregisterLocked(id string) {
	a, ok := r.agents[id]
	if !ok {
		return
	}
	for _, sub := range a.Subagents() {
		r.unregisterLocked(sub.ID())
	}
	delete(r.agents, id)
	r.logger.Debug("registry.unregister", "agent", a.Name(), "agent_id", id)
}

// Len returns the number of live agents.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.agents)
}
